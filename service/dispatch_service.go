package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"salon_workflow/model"
)

// DispatchService fans a rendered message out to the enabled channels. Each
// channel is attempted independently: one failure never blocks the others,
// and the returned slice always matches the attempted channels in length
// and order. Dispatch itself never returns an error.
type DispatchService struct {
	timeout time.Duration
}

func NewDispatchService(timeout time.Duration) *DispatchService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DispatchService{timeout: timeout}
}

// Dispatch sends message through every enabled channel concurrently and
// waits for all of them to settle. Disabled channels are skipped entirely
// and do not appear in the results.
func (s *DispatchService) Dispatch(ctx context.Context, message string, channels []Channel, meta map[string]string) []model.DispatchResult {
	var attempted []Channel
	for _, ch := range channels {
		if ch.Enabled() {
			attempted = append(attempted, ch)
		}
	}

	results := make([]model.DispatchResult, len(attempted))
	var wg sync.WaitGroup

	for i, ch := range attempted {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			err := s.sendWithTimeout(ctx, ch, message, meta)
			result := model.DispatchResult{
				Channel:   ch.Name(),
				OK:        err == nil,
				Timestamp: time.Now(),
			}
			if err != nil {
				result.Error = err.Error()
				log.Printf("[Dispatch] channel %s failed: %v", ch.Name(), err)
			}
			results[i] = result
		}(i, ch)
	}

	wg.Wait()
	return results
}

// sendWithTimeout bounds one channel call. A send that overruns the deadline
// is recorded as a failure instead of hanging the event; the in-flight call
// is left to finish on its own (no cancel-in-flight support).
func (s *DispatchService) sendWithTimeout(ctx context.Context, ch Channel, message string, meta map[string]string) error {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- safeSend(cctx, ch, message, meta)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cctx.Done():
		return fmt.Errorf("channel %s timed out after %v", ch.Name(), s.timeout)
	}
}

// safeSend converts a panicking channel adapter into an ordinary error.
func safeSend(ctx context.Context, ch Channel, message string, meta map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel %s panicked: %v", ch.Name(), r)
		}
	}()
	return ch.Send(ctx, message, meta)
}
