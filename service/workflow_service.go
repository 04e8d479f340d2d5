package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"salon_workflow/model"

	"github.com/google/uuid"
)

// Collaborator contracts, defined here so tests can inject fixture stores.

// IntentClassifier classifies one inbound message.
type IntentClassifier interface {
	Classify(message string) Classification
}

// TemplateSource supplies message templates by their fixed id.
type TemplateSource interface {
	GetTemplate(templateID string) (*model.MessageTemplate, error)
}

// StaffDirectory resolves chat user ids to staff members.
type StaffDirectory interface {
	FindByChatUserID(chatUserID string) (*model.Staff, error)
	ListColleagues(excludeID uuid.UUID) ([]model.Staff, error)
}

// SettingsSource supplies the static render context and feature flags.
type SettingsSource interface {
	GetSettingDefault(key, defaultValue string) string
	IsFeatureEnabled(featureKey string) bool
}

// EventRecorder persists workflow events.
type EventRecorder interface {
	SaveEvent(event *model.WorkflowEvent) error
	UpdateEvent(event *model.WorkflowEvent) error
}

// MessageDispatcher fans a rendered message out to channels.
type MessageDispatcher interface {
	Dispatch(ctx context.Context, message string, channels []Channel, meta map[string]string) []model.DispatchResult
}

// EventNotifier pushes finished events to the admin live feed.
type EventNotifier interface {
	NotifyEvent(event *model.WorkflowEvent)
}

// DeliveryDeduper suppresses webhook redeliveries.
type DeliveryDeduper interface {
	FirstDelivery(ctx context.Context, messageID string) bool
}

// Inbound is one staff message as delivered by the webhook handler. The
// handler owns envelope parsing and the reply channel; the workflow only
// sees the sender, the text and an opaque reply handle.
type Inbound struct {
	SenderID   string
	Text       string
	ReplyToken string
	MessageID  string // platform message id, used for dedup
}

// Outcome is the result of one workflow execution. Reply is the staff-facing
// acknowledgment text; sending it back through the platform is the caller's
// job.
type Outcome struct {
	Event     *model.WorkflowEvent
	Reply     string
	Duplicate bool
}

// dispatchPlan pairs a template with the channel set it fans out to.
type dispatchPlan struct {
	templateID string
	channels   []string
}

// intentPlans is the fixed intent -> template/channel mapping. An absence
// report produces two renders: the staff-facing record copy and the manager
// escalation. Substitute responses carry no store template, only an internal
// acknowledgment.
var intentPlans = map[string][]dispatchPlan{
	model.IntentAbsenceReport: {
		{templateID: "absence_notification", channels: []string{"record"}},
		{templateID: "emergency_notification", channels: []string{"email", "chat"}},
	},
	model.IntentSubstituteAccept: {
		{templateID: "", channels: []string{"chat", "record"}},
	},
	model.IntentSubstituteDecline: {
		{templateID: "", channels: []string{"chat", "record"}},
	},
}

// WorkflowService sequences classification, template selection, rendering,
// dispatch and result aggregation for one inbound event.
type WorkflowService struct {
	classifier IntentClassifier
	templates  TemplateSource
	staff      StaffDirectory
	settings   SettingsSource
	events     EventRecorder
	dispatcher MessageDispatcher
	channels   map[string]Channel
	notifier   EventNotifier
	deduper    DeliveryDeduper
	now        func() time.Time
}

func NewWorkflowService(
	classifier IntentClassifier,
	templates TemplateSource,
	staff StaffDirectory,
	settings SettingsSource,
	events EventRecorder,
	dispatcher MessageDispatcher,
	channels []Channel,
) *WorkflowService {
	byName := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &WorkflowService{
		classifier: classifier,
		templates:  templates,
		staff:      staff,
		settings:   settings,
		events:     events,
		dispatcher: dispatcher,
		channels:   byName,
		now:        time.Now,
	}
}

// SetEventNotifier wires the admin live feed.
func (s *WorkflowService) SetEventNotifier(notifier EventNotifier) {
	s.notifier = notifier
}

// SetDeduper wires redelivery suppression.
func (s *WorkflowService) SetDeduper(deduper DeliveryDeduper) {
	s.deduper = deduper
}

// Execute runs one inbound staff message through the whole workflow. It
// always drives the event to a terminal state: per-channel failures end in
// completed with OK=false, while an unknown sender or a missing template end
// in failed.
func (s *WorkflowService) Execute(ctx context.Context, in Inbound) *Outcome {
	if s.deduper != nil && !s.deduper.FirstDelivery(ctx, in.MessageID) {
		log.Printf("[Workflow] duplicate delivery suppressed: %s", in.MessageID)
		return &Outcome{Duplicate: true}
	}

	event := &model.WorkflowEvent{
		ChatUserID: in.SenderID,
		RawText:    in.Text,
		Status:     model.EventReceived,
	}
	s.saveEvent(event)

	staff, err := s.staff.FindByChatUserID(in.SenderID)
	if err != nil {
		s.fail(event, fmt.Sprintf("unknown sender %s: %v", in.SenderID, err))
		return s.finish(event, "スタッフ情報が見つかりません。管理者にお問い合わせください。")
	}
	event.StaffID = &staff.ID
	event.StaffName = staff.Name

	classification := s.classifier.Classify(in.Text)
	event.Advance(model.EventClassified)
	event.Intent = classification.Intent
	event.SetFields(classification.Extracted)

	switch classification.Intent {
	case model.IntentAbsenceReport:
		return s.handleAbsence(ctx, event, staff, classification.Extracted)
	case model.IntentSubstituteAccept, model.IntentSubstituteDecline:
		return s.handleSubstituteResponse(ctx, event, staff)
	default:
		return s.handleUnknown(event)
	}
}

// handleUnknown records the event for operator review and dispatches
// nothing: unrecognized chatter must not spam the channels.
func (s *WorkflowService) handleUnknown(event *model.WorkflowEvent) *Outcome {
	event.Advance(model.EventRendered)
	event.Advance(model.EventDispatched)
	s.complete(event, true)

	reply := ""
	if s.settings.IsFeatureEnabled("unknown_reply_enabled") {
		reply = "申し訳ございません。メッセージを理解できませんでした。"
	}
	return s.finish(event, reply)
}

func (s *WorkflowService) handleAbsence(ctx context.Context, event *model.WorkflowEvent, staff *model.Staff, extracted map[string]string) *Outcome {
	meta := s.renderContext(staff)
	meta["absence_date"] = extracted["date"]
	meta["absence_time"] = extracted["time"]
	meta["absence_reason"] = extracted["reason"]
	meta["subject"] = fmt.Sprintf("【緊急】%sさん欠勤報告", staff.Name)

	var results []model.DispatchResult
	for _, plan := range intentPlans[model.IntentAbsenceReport] {
		template, err := s.templates.GetTemplate(plan.templateID)
		if err != nil {
			// configuration error, not transient: fail the whole event
			s.fail(event, fmt.Sprintf("template %s: %v", plan.templateID, err))
			return s.finish(event, "エラーが発生しました。管理者にお問い合わせください。")
		}

		rendered := RenderTemplate(template.Body, meta)
		event.Advance(model.EventRendered)

		results = append(results, s.dispatcher.Dispatch(ctx, rendered, s.resolveChannels(plan.channels), meta)...)
	}

	event.Advance(model.EventDispatched)
	event.SetResults(results)

	if s.settings.IsFeatureEnabled("substitute_recruitment_enabled") {
		event.SetRecruitment(s.recruitSubstitutes(ctx, staff, meta))
	}

	s.complete(event, allOK(results))

	reply := fmt.Sprintf(`【欠勤報告受付完了】

👤 スタッフ: %s
📅 欠勤日: %s
🕒 時間: %s
💊 理由: %s

代替スタッフの手配を開始いたします。
ご連絡をお待ちください。`, staff.Name, meta["absence_date"], meta["absence_time"], meta["absence_reason"])

	return s.finish(event, reply)
}

func (s *WorkflowService) handleSubstituteResponse(ctx context.Context, event *model.WorkflowEvent, staff *model.Staff) *Outcome {
	answer := "出勤可能"
	reply := fmt.Sprintf(`【代替出勤受諾完了】

%sさん、代替出勤ありがとうございます！

詳細は後ほどご連絡いたします。`, staff.Name)

	if event.Intent == model.IntentSubstituteDecline {
		answer = "出勤不可"
		reply = fmt.Sprintf(`【代替出勤拒否受付】

%sさん、ご回答ありがとうございます。

他のスタッフに依頼いたします。`, staff.Name)
	}

	meta := s.renderContext(staff)
	message := fmt.Sprintf(`【代替出勤回答】

👤 スタッフ: %s
📋 回答: %s
⏰ 回答時刻: %s`, staff.Name, answer, meta["report_time"])

	event.Advance(model.EventRendered)

	plan := intentPlans[event.Intent][0]
	results := s.dispatcher.Dispatch(ctx, message, s.resolveChannels(plan.channels), meta)

	event.Advance(model.EventDispatched)
	event.SetResults(results)
	s.complete(event, allOK(results))

	return s.finish(event, reply)
}

// recruitSubstitutes renders the substitute-request template and pushes it
// through the chat channel once per colleague. Recruitment is best effort:
// errors are recorded but never fail the absence event.
func (s *WorkflowService) recruitSubstitutes(ctx context.Context, absent *model.Staff, meta map[string]string) []model.DispatchResult {
	chat, ok := s.channels["chat"]
	if !ok {
		return nil
	}

	template, err := s.templates.GetTemplate("substitute_request")
	if err != nil {
		log.Printf("[Workflow] substitute recruitment skipped: %v", err)
		return nil
	}

	colleagues, err := s.staff.ListColleagues(absent.ID)
	if err != nil {
		log.Printf("[Workflow] substitute recruitment skipped: %v", err)
		return nil
	}

	message := RenderTemplate(template.Body, meta)

	var results []model.DispatchResult
	for _, colleague := range colleagues {
		recipientMeta := map[string]string{"recipient": colleague.Name, "recipient_email": colleague.Email}
		for k, v := range meta {
			recipientMeta[k] = v
		}
		results = append(results, s.dispatcher.Dispatch(ctx, message, []Channel{chat}, recipientMeta)...)
	}
	if len(colleagues) > 0 {
		log.Printf("[Workflow] substitute recruitment: %d staff asked", len(colleagues))
	}
	return results
}

// renderContext builds the static portion of the template context from the
// salon settings and the reporting staff member.
func (s *WorkflowService) renderContext(staff *model.Staff) map[string]string {
	return map[string]string{
		"staff_name":     staff.Name,
		"staff_phone":    staff.Phone,
		"salon_name":     s.settings.GetSettingDefault("salon_name", "カルサクサロン"),
		"salon_phone":    s.settings.GetSettingDefault("salon_phone", ""),
		"business_hours": s.settings.GetSettingDefault("business_hours", ""),
		"management_url": s.settings.GetSettingDefault("management_url", ""),
		"report_time":    s.now().Format("15:04:05"),
	}
}

func (s *WorkflowService) resolveChannels(names []string) []Channel {
	var channels []Channel
	for _, name := range names {
		if ch, ok := s.channels[name]; ok {
			channels = append(channels, ch)
		}
	}
	return channels
}

func (s *WorkflowService) complete(event *model.WorkflowEvent, ok bool) {
	event.OK = ok
	event.Advance(model.EventCompleted)
	now := s.now()
	event.CompletedAt = &now
}

func (s *WorkflowService) fail(event *model.WorkflowEvent, reason string) {
	event.FailReason = reason
	event.Advance(model.EventFailed)
	now := s.now()
	event.CompletedAt = &now
	log.Printf("[Workflow] event failed: %s", reason)
}

func (s *WorkflowService) finish(event *model.WorkflowEvent, reply string) *Outcome {
	s.updateEvent(event)
	if s.notifier != nil {
		s.notifier.NotifyEvent(event)
	}
	return &Outcome{Event: event, Reply: reply}
}

func (s *WorkflowService) saveEvent(event *model.WorkflowEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.SaveEvent(event); err != nil {
		log.Printf("[Workflow] failed to save event: %v", err)
	}
}

func (s *WorkflowService) updateEvent(event *model.WorkflowEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.UpdateEvent(event); err != nil {
		log.Printf("[Workflow] failed to update event: %v", err)
	}
}

func allOK(results []model.DispatchResult) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}
