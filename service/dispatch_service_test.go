package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salon_workflow/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel is an in-memory Channel for dispatcher and workflow tests.
type fakeChannel struct {
	name     string
	enabled  bool
	err      error
	panics   bool
	delay    time.Duration
	mu       sync.Mutex
	messages []string
}

func (f *fakeChannel) Name() string  { return f.name }
func (f *fakeChannel) Enabled() bool { return f.enabled }

func (f *fakeChannel) Send(ctx context.Context, message string, meta map[string]string) error {
	if f.panics {
		panic("channel blew up")
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.messages = append(f.messages, message)
	f.mu.Unlock()
	return nil
}

func (f *fakeChannel) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.messages))
	copy(out, f.messages)
	return out
}

func TestDispatch_PartialFailure(t *testing.T) {
	svc := NewDispatchService(time.Second)
	channels := []Channel{
		&fakeChannel{name: "email", enabled: true},
		&fakeChannel{name: "chat", enabled: true, err: errors.New("webhook 500")},
		&fakeChannel{name: "record", enabled: true},
	}

	results := svc.Dispatch(context.Background(), "hello", channels, nil)

	require.Len(t, results, 3, "one result per attempted channel")
	assert.Equal(t, "email", results[0].Channel)
	assert.True(t, results[0].OK)
	assert.Equal(t, "chat", results[1].Channel)
	assert.False(t, results[1].OK)
	assert.Contains(t, results[1].Error, "webhook 500")
	assert.Equal(t, "record", results[2].Channel)
	assert.True(t, results[2].OK)
}

func TestDispatch_SkipsDisabledChannels(t *testing.T) {
	svc := NewDispatchService(time.Second)
	disabled := &fakeChannel{name: "email", enabled: false}
	enabled := &fakeChannel{name: "chat", enabled: true}

	results := svc.Dispatch(context.Background(), "hello", []Channel{disabled, enabled}, nil)

	require.Len(t, results, 1, "disabled channels do not appear in the results")
	assert.Equal(t, "chat", results[0].Channel)
	assert.Empty(t, disabled.sent())
	assert.Equal(t, []string{"hello"}, enabled.sent())
}

func TestDispatch_PanicBecomesFailedResult(t *testing.T) {
	svc := NewDispatchService(time.Second)

	var results []model.DispatchResult
	require.NotPanics(t, func() {
		results = svc.Dispatch(context.Background(), "hello", []Channel{
			&fakeChannel{name: "chat", enabled: true, panics: true},
			&fakeChannel{name: "record", enabled: true},
		}, nil)
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "panicked")
	assert.True(t, results[1].OK)
}

func TestDispatch_TimeoutRecordedAsFailure(t *testing.T) {
	svc := NewDispatchService(50 * time.Millisecond)
	slow := &fakeChannel{name: "email", enabled: true, delay: 2 * time.Second}
	fast := &fakeChannel{name: "record", enabled: true}

	start := time.Now()
	results := svc.Dispatch(context.Background(), "hello", []Channel{slow, fast}, nil)
	elapsed := time.Since(start)

	require.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "timed out")
	assert.True(t, results[1].OK)
	assert.Less(t, elapsed, time.Second, "a slow channel must not hang the dispatch")
}

func TestDispatch_NoEnabledChannels(t *testing.T) {
	svc := NewDispatchService(time.Second)
	results := svc.Dispatch(context.Background(), "hello", nil, nil)
	assert.Empty(t, results)
}
