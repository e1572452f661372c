package infra

import (
	"fmt"
	"math/rand"
	"time"
)

// RetryExhaustedError is returned once every attempt of a RetryPolicy has
// failed. It is terminal: callers must not wrap another retry around it.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// RetryPolicy retries a call with exponential backoff and jitter.
// The wait before re-attempt i (0-indexed over sleeps) is
// BaseDelay*2^i plus a uniform jitter in [0, 0.1*delay), so expected
// delays strictly increase across attempts.
//
// Sleeps are blocking waits on the calling goroutine — callers must treat
// a wrapped call as potentially slow (up to the sum of all delays).
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether an error consumes retry budget. Errors it
	// rejects propagate immediately.
	Retryable func(error) bool
	// Sleep defaults to time.Sleep; tests inject a recorder.
	Sleep func(time.Duration)
	// Jitter returns a uniform float in [0, 1); defaults to rand.Float64.
	Jitter func() float64
}

// Do runs fn until it succeeds, fails non-retryably, or the attempt budget
// runs out, in which case it returns *RetryExhaustedError carrying the
// attempt count and the last underlying error.
func (p RetryPolicy) Do(fn func() error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << uint(attempt-1)
			delay += time.Duration(jitter() * 0.1 * float64(delay))
			sleep(delay)
		}

		err := fn()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		lastErr = err
	}
	return &RetryExhaustedError{Attempts: maxAttempts, Last: lastErr}
}
