package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"salon_workflow/model"
	"salon_workflow/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	inbound  []service.Inbound
	outcomes map[string]*service.Outcome
}

func (s *stubExecutor) Execute(ctx context.Context, in service.Inbound) *service.Outcome {
	s.inbound = append(s.inbound, in)
	if out, ok := s.outcomes[in.Text]; ok {
		return out
	}
	return &service.Outcome{
		Event: &model.WorkflowEvent{Status: model.EventCompleted, RawText: in.Text},
		Reply: "受付完了",
	}
}

func newWebhookRouter(executor *stubExecutor, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewWebhookHandler(executor, secret)
	r.POST("/webhook/staff-bot", h.HandleStaffWebhook)
	return r
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func envelopeBody(t *testing.T, events ...WebhookEvent) []byte {
	t.Helper()
	data, err := json.Marshal(WebhookEnvelope{Events: events})
	require.NoError(t, err)
	return data
}

func textEvent(userID, messageID, text string) WebhookEvent {
	e := WebhookEvent{Type: "message", ReplyToken: "rt-" + messageID}
	e.Source.UserID = userID
	e.Message.ID = messageID
	e.Message.Type = "text"
	e.Message.Text = text
	return e
}

func TestHandleStaffWebhook_RepliesForTextMessages(t *testing.T) {
	executor := &stubExecutor{}
	router := newWebhookRouter(executor, "")

	body := envelopeBody(t, textEvent("U123", "m1", "体調不良で欠勤します"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/staff-bot", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Replies []struct {
				ReplyToken string `json:"reply_token"`
				Text       string `json:"text"`
			} `json:"replies"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	require.Len(t, resp.Data.Replies, 1)
	assert.Equal(t, "rt-m1", resp.Data.Replies[0].ReplyToken)
	assert.Equal(t, "受付完了", resp.Data.Replies[0].Text)

	require.Len(t, executor.inbound, 1)
	assert.Equal(t, "U123", executor.inbound[0].SenderID)
	assert.Equal(t, "m1", executor.inbound[0].MessageID)
}

func TestHandleStaffWebhook_SkipsNonTextEvents(t *testing.T) {
	executor := &stubExecutor{}
	router := newWebhookRouter(executor, "")

	sticker := WebhookEvent{Type: "message"}
	sticker.Message.Type = "sticker"
	follow := WebhookEvent{Type: "follow"}

	body := envelopeBody(t, sticker, follow, textEvent("U123", "m2", "こんにちは"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/staff-bot", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, executor.inbound, 1, "only the text message reaches the workflow")
}

func TestHandleStaffWebhook_SignatureRequired(t *testing.T) {
	executor := &stubExecutor{}
	router := newWebhookRouter(executor, "secret-key")

	body := envelopeBody(t, textEvent("U123", "m3", "欠勤します"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/staff-bot", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", "not-a-signature")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, executor.inbound)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/webhook/staff-bot", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", signBody("secret-key", body))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, executor.inbound, 1)
}

func TestHandleStaffWebhook_SuppressedAndEmptyRepliesOmitted(t *testing.T) {
	executor := &stubExecutor{outcomes: map[string]*service.Outcome{
		"dup":    {Duplicate: true},
		"silent": {Event: &model.WorkflowEvent{Status: model.EventCompleted}},
	}}
	router := newWebhookRouter(executor, "")

	body := envelopeBody(t,
		textEvent("U123", "m4", "dup"),
		textEvent("U123", "m5", "silent"),
		textEvent("U123", "m6", "欠勤します"),
	)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/staff-bot", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Replies []struct {
				ReplyToken string `json:"reply_token"`
			} `json:"replies"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Replies, 1)
	assert.Equal(t, "rt-m6", resp.Data.Replies[0].ReplyToken)
}

func TestHandleStaffWebhook_InvalidEnvelope(t *testing.T) {
	executor := &stubExecutor{}
	router := newWebhookRouter(executor, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/staff-bot", bytes.NewReader([]byte("not json")))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, executor.inbound)
}
