package service

import (
	"fmt"

	"salon_workflow/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventService persists workflow events for the audit list.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// SaveEvent inserts a new workflow event.
func (s *EventService) SaveEvent(event *model.WorkflowEvent) error {
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

// UpdateEvent writes back the current state of an event.
func (s *EventService) UpdateEvent(event *model.WorkflowEvent) error {
	if err := s.db.Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// GetEvent loads one event by id.
func (s *EventService) GetEvent(id uuid.UUID) (*model.WorkflowEvent, error) {
	var event model.WorkflowEvent
	if err := s.db.Where("id = ?", id).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// ListEvents returns events newest first, optionally filtered by intent and
// status.
func (s *EventService) ListEvents(intent, status string, limit, offset int) ([]model.WorkflowEvent, error) {
	query := s.db.Model(&model.WorkflowEvent{})
	if intent != "" {
		query = query.Where("intent = ?", intent)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var events []model.WorkflowEvent
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// EventStats summarizes the audit trail for the admin dashboard.
type EventStats struct {
	Total               int64 `json:"total"`
	AbsenceReports      int64 `json:"absence_reports"`
	AcceptedSubstitutes int64 `json:"accepted_substitutes"`
	DeclinedSubstitutes int64 `json:"declined_substitutes"`
	Unknown             int64 `json:"unknown"`
	Completed           int64 `json:"completed"`
	Failed              int64 `json:"failed"`
	DispatchFailures    int64 `json:"dispatch_failures"` // completed but not every channel succeeded
}

// GetStats counts events per intent and terminal state.
func (s *EventService) GetStats() (*EventStats, error) {
	stats := &EventStats{}

	counts := []struct {
		dest  *int64
		where string
		args  []interface{}
	}{
		{&stats.Total, "", nil},
		{&stats.AbsenceReports, "intent = ?", []interface{}{model.IntentAbsenceReport}},
		{&stats.AcceptedSubstitutes, "intent = ?", []interface{}{model.IntentSubstituteAccept}},
		{&stats.DeclinedSubstitutes, "intent = ?", []interface{}{model.IntentSubstituteDecline}},
		{&stats.Unknown, "intent = ?", []interface{}{model.IntentUnknown}},
		{&stats.Completed, "status = ?", []interface{}{model.EventCompleted}},
		{&stats.Failed, "status = ?", []interface{}{model.EventFailed}},
		{&stats.DispatchFailures, "status = ? AND ok = ?", []interface{}{model.EventCompleted, false}},
	}

	for _, c := range counts {
		query := s.db.Model(&model.WorkflowEvent{})
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count events: %w", err)
		}
	}

	return stats, nil
}
