package stream

import (
	"context"
	"math"
	"time"
)

// RetryPolicy bounds how failed loads are retried.
type RetryPolicy struct {
	// MaxAttempts is the number of retries after the first load.
	MaxAttempts int

	// Base is the delay before the first retry; it doubles each time.
	Base time.Duration

	// MaxDelay caps the delay. Zero means no cap.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns 3 retries starting at 10s, capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Base:        10 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

// NextBackoff returns min(Base·2^attempt, MaxDelay) for a 0-based attempt.
func (p RetryPolicy) NextBackoff(attempt int) time.Duration {
	d := p.Base
	for i := 0; i < max(attempt, 0) && d > 0; i++ {
		if d > math.MaxInt64/2 {
			d = math.MaxInt64
			break
		}
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			break
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Start returns the retry state for a fresh stream.
func (p RetryPolicy) Start() *RetryState {
	return &RetryState{policy: p}
}

// RetryState counts the retries of one stream.
type RetryState struct {
	policy  RetryPolicy
	attempt int
}

// Attempt returns how many retries have been granted so far.
func (s *RetryState) Attempt() int {
	return s.attempt
}

// Next is called after a failed load. It returns the delay to wait and
// true, or false once MaxAttempts retries have been used.
func (s *RetryState) Next() (time.Duration, bool) {
	if s.attempt >= s.policy.MaxAttempts {
		return 0, false
	}
	d := s.policy.NextBackoff(s.attempt)
	s.attempt++
	return d, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
