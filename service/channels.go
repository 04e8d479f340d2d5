package service

import (
	"context"
	"fmt"

	"salon_workflow/config"
	"salon_workflow/model"

	"github.com/slack-go/slack"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// Channel is one delivery mechanism for a rendered message. New channel
// kinds plug in without touching the dispatcher.
type Channel interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, message string, meta map[string]string) error
}

// EmailChannel delivers rendered messages over SMTP to the manager mailbox.
type EmailChannel struct {
	cfg    config.Config
	dialer *gomail.Dialer
}

func NewEmailChannel(cfg *config.Config) *EmailChannel {
	return &EmailChannel{
		cfg:    *cfg,
		dialer: gomail.NewDialer(cfg.Email.Host, cfg.Email.Port, cfg.Email.Username, cfg.Email.Password),
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Enabled() bool { return c.cfg.Email.Enabled }

func (c *EmailChannel) Send(ctx context.Context, message string, meta map[string]string) error {
	to := meta["recipient_email"]
	if to == "" {
		to = c.cfg.Email.ManagerTo
	}
	if to == "" {
		return fmt.Errorf("email channel: no recipient configured")
	}

	subject := meta["subject"]
	if subject == "" {
		subject = "【欠勤管理】通知"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.cfg.Email.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", message)

	if err := c.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email channel: %w", err)
	}
	return nil
}

// ChatChannel posts rendered messages to an incoming-webhook chat endpoint.
type ChatChannel struct {
	cfg config.Config
}

func NewChatChannel(cfg *config.Config) *ChatChannel {
	return &ChatChannel{cfg: *cfg}
}

func (c *ChatChannel) Name() string { return "chat" }

func (c *ChatChannel) Enabled() bool { return c.cfg.Chat.Enabled }

func (c *ChatChannel) Send(ctx context.Context, message string, meta map[string]string) error {
	err := slack.PostWebhookContext(ctx, c.cfg.Chat.WebhookURL, &slack.WebhookMessage{
		Channel:   c.cfg.Chat.Channel,
		Username:  c.cfg.Chat.Username,
		IconEmoji: ":hospital:",
		Text:      message,
	})
	if err != nil {
		return fmt.Errorf("chat channel: %w", err)
	}
	return nil
}

// RecordChannel writes a structured audit row per notification, the local
// stand-in for an external record database.
type RecordChannel struct {
	db      *gorm.DB
	enabled bool
}

func NewRecordChannel(db *gorm.DB, enabled bool) *RecordChannel {
	return &RecordChannel{db: db, enabled: enabled}
}

func (c *RecordChannel) Name() string { return "record" }

func (c *RecordChannel) Enabled() bool { return c.enabled }

func (c *RecordChannel) Send(ctx context.Context, message string, meta map[string]string) error {
	record := &model.WorkflowRecord{
		StaffName:   meta["staff_name"],
		AbsenceDate: meta["absence_date"],
		AbsenceTime: meta["absence_time"],
		Reason:      meta["absence_reason"],
		Message:     message,
		Status:      "処理中",
	}
	if err := c.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("record channel: %w", err)
	}
	return nil
}
