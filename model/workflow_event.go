package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Intent is the classified purpose of an inbound staff message.
const (
	IntentAbsenceReport     = "absence_report"
	IntentSubstituteAccept  = "substitute_accept"
	IntentSubstituteDecline = "substitute_decline"
	IntentUnknown           = "unknown"
)

// Workflow event states. An event moves strictly forward and terminates in
// exactly one of completed / failed.
const (
	EventReceived   = "received"
	EventClassified = "classified"
	EventRendered   = "rendered"
	EventDispatched = "dispatched"
	EventCompleted  = "completed"
	EventFailed     = "failed"
)

var eventStateRank = map[string]int{
	EventReceived:   0,
	EventClassified: 1,
	EventRendered:   2,
	EventDispatched: 3,
	EventCompleted:  4,
	EventFailed:     4,
}

// DispatchResult is the outcome of sending one rendered message through one
// channel.
type DispatchResult struct {
	Channel   string    `json:"channel"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkflowEvent is one end-to-end processing of an inbound staff message,
// from classification through aggregated dispatch outcome.
type WorkflowEvent struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StaffID     *uuid.UUID      `json:"staff_id,omitempty" gorm:"type:uuid;index"`
	StaffName   string          `json:"staff_name" gorm:"type:varchar(100)"`
	ChatUserID  string          `json:"chat_user_id" gorm:"type:varchar(64);index"`
	Intent      string          `json:"intent" gorm:"type:varchar(30);index"`
	RawText     string          `json:"raw_text" gorm:"type:text"`
	Fields      json.RawMessage `json:"fields,omitempty" gorm:"type:jsonb"`      // extracted key/value fields
	Results     json.RawMessage `json:"results,omitempty" gorm:"type:jsonb"`     // []DispatchResult for the intent's channel set
	Recruitment json.RawMessage `json:"recruitment,omitempty" gorm:"type:jsonb"` // []DispatchResult for substitute-request sends
	Status      string          `json:"status" gorm:"type:varchar(20);not null;index"`
	OK          bool            `json:"ok" gorm:"default:false"` // true iff every attempted channel succeeded
	FailReason  string          `json:"fail_reason,omitempty" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func (WorkflowEvent) TableName() string {
	return "workflow_events"
}

// Advance moves the event to the next state. A state never regresses: moving
// to an earlier or equal-rank state is ignored.
func (e *WorkflowEvent) Advance(next string) {
	if eventStateRank[next] > eventStateRank[e.Status] {
		e.Status = next
	}
}

// Terminal reports whether the event has reached completed or failed.
func (e *WorkflowEvent) Terminal() bool {
	return e.Status == EventCompleted || e.Status == EventFailed
}

// SetFields stores the extracted key/value map as jsonb.
func (e *WorkflowEvent) SetFields(fields map[string]string) {
	if len(fields) == 0 {
		return
	}
	if data, err := json.Marshal(fields); err == nil {
		e.Fields = data
	}
}

// SetResults stores the per-channel dispatch results as jsonb.
func (e *WorkflowEvent) SetResults(results []DispatchResult) {
	if data, err := json.Marshal(results); err == nil {
		e.Results = data
	}
}

// SetRecruitment stores the substitute-request dispatch results as jsonb.
func (e *WorkflowEvent) SetRecruitment(results []DispatchResult) {
	if len(results) == 0 {
		return
	}
	if data, err := json.Marshal(results); err == nil {
		e.Recruitment = data
	}
}

// DispatchResults decodes the stored result list.
func (e *WorkflowEvent) DispatchResults() []DispatchResult {
	var results []DispatchResult
	if len(e.Results) > 0 {
		_ = json.Unmarshal(e.Results, &results)
	}
	return results
}

// ExtractedFields decodes the stored field map.
func (e *WorkflowEvent) ExtractedFields() map[string]string {
	fields := make(map[string]string)
	if len(e.Fields) > 0 {
		_ = json.Unmarshal(e.Fields, &fields)
	}
	return fields
}
