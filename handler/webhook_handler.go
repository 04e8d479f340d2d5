package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"

	"salon_workflow/service"
	"salon_workflow/utils"

	"github.com/gin-gonic/gin"
)

// WorkflowExecutor runs one inbound message through the workflow.
type WorkflowExecutor interface {
	Execute(ctx context.Context, in service.Inbound) *service.Outcome
}

// WebhookEnvelope is the chat-platform delivery format: a batch of events,
// each carrying the sender and message text.
type WebhookEnvelope struct {
	Events []WebhookEvent `json:"events"`
}

type WebhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type WebhookHandler struct {
	workflowSvc   WorkflowExecutor
	channelSecret string
}

func NewWebhookHandler(workflowSvc WorkflowExecutor, channelSecret string) *WebhookHandler {
	return &WebhookHandler{
		workflowSvc:   workflowSvc,
		channelSecret: channelSecret,
	}
}

// HandleStaffWebhook receives staff-bot messages.
// POST /webhook/staff-bot
//
// Text messages run through the workflow; every other event type is
// acknowledged and ignored. Replies are returned in the response body: the
// platform-facing reply delivery belongs to the gateway in front of this
// service, not here.
func (h *WebhookHandler) HandleStaffWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequest(c, "failed to read body")
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		utils.Unauthorized(c, "invalid signature")
		return
	}

	var envelope WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		utils.BadRequest(c, "invalid envelope")
		return
	}

	type replyEntry struct {
		ReplyToken string `json:"reply_token"`
		Text       string `json:"text"`
	}
	var replies []replyEntry

	for _, event := range envelope.Events {
		if event.Type != "message" || event.Message.Type != "text" {
			continue
		}

		outcome := h.workflowSvc.Execute(c.Request.Context(), service.Inbound{
			SenderID:   event.Source.UserID,
			Text:       event.Message.Text,
			ReplyToken: event.ReplyToken,
			MessageID:  event.Message.ID,
		})
		if outcome.Duplicate || outcome.Reply == "" {
			continue
		}
		replies = append(replies, replyEntry{ReplyToken: event.ReplyToken, Text: outcome.Reply})
	}

	utils.SuccessResponse(c, gin.H{"replies": replies})
}

// verifySignature checks the HMAC-SHA256 signature the platform attaches to
// each delivery. An empty configured secret disables the check (local
// development).
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.channelSecret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(h.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// TestWorkflow runs a canned absence report through the workflow so an
// operator can verify channel wiring without a real staff message.
// POST /api/admin/workflow/test
func (h *WebhookHandler) TestWorkflow(c *gin.Context) {
	var req struct {
		SenderID string `json:"sender_id" binding:"required"`
		Text     string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request")
		return
	}

	if req.Text == "" {
		req.Text = "テスト用欠勤報告のため、本日体調不良で欠勤します"
	}

	log.Printf("[Webhook] test workflow triggered for sender %s", req.SenderID)

	outcome := h.workflowSvc.Execute(c.Request.Context(), service.Inbound{
		SenderID: req.SenderID,
		Text:     req.Text,
	})

	utils.SuccessResponse(c, gin.H{
		"event": outcome.Event,
		"reply": outcome.Reply,
	})
}
