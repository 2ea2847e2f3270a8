package ratelimit

import (
	"context"
	"time"
)

// Throttle is a fixed-delay pause between two outbound reads. It does not track
// request weight or share state between callers; each worker pays its own delay.
type Throttle struct {
	delay time.Duration
}

func NewThrottle(delay time.Duration) *Throttle {
	if delay < 0 {
		delay = 0
	}
	return &Throttle{delay: delay}
}

// Delay returns the configured pause.
func (t *Throttle) Delay() time.Duration {
	if t == nil {
		return 0
	}
	return t.delay
}

// Wait blocks for the configured delay or until ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
