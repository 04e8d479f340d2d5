package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowEvent_AdvanceNeverRegresses(t *testing.T) {
	e := &WorkflowEvent{Status: EventReceived}

	e.Advance(EventClassified)
	assert.Equal(t, EventClassified, e.Status)

	e.Advance(EventDispatched)
	assert.Equal(t, EventDispatched, e.Status)

	e.Advance(EventClassified)
	assert.Equal(t, EventDispatched, e.Status, "moving backwards is ignored")

	e.Advance(EventDispatched)
	assert.Equal(t, EventDispatched, e.Status, "same-rank transition is ignored")
}

func TestWorkflowEvent_TerminalStatesAreFinal(t *testing.T) {
	completed := &WorkflowEvent{Status: EventReceived}
	completed.Advance(EventCompleted)
	assert.True(t, completed.Terminal())

	completed.Advance(EventFailed)
	assert.Equal(t, EventCompleted, completed.Status, "completed and failed rank equal; neither overwrites the other")

	failed := &WorkflowEvent{Status: EventClassified}
	failed.Advance(EventFailed)
	assert.True(t, failed.Terminal())

	failed.Advance(EventRendered)
	assert.Equal(t, EventFailed, failed.Status)
}

func TestWorkflowEvent_FieldsRoundTrip(t *testing.T) {
	e := &WorkflowEvent{}
	assert.Empty(t, e.ExtractedFields())
	assert.Empty(t, e.DispatchResults())

	e.SetFields(map[string]string{"reason": "体調不良", "date": "2025-06-10"})
	fields := e.ExtractedFields()
	assert.Equal(t, "体調不良", fields["reason"])
	assert.Equal(t, "2025-06-10", fields["date"])

	e.SetFields(nil)
	assert.NotEmpty(t, e.Fields, "an empty map never clears stored fields")
}
