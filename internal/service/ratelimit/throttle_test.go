package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestThrottleWaitsFixedDelay(t *testing.T) {
	th := NewThrottle(20 * time.Millisecond)
	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if el := time.Since(start); el < 20*time.Millisecond {
		t.Fatalf("waited %v, want >= 20ms", el)
	}
}

func TestThrottleZeroDelay(t *testing.T) {
	th := NewThrottle(0)
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var nilThrottle *Throttle
	if nilThrottle.Delay() != 0 {
		t.Fatalf("nil throttle must have no delay")
	}
}

func TestThrottleHonoursCancel(t *testing.T) {
	th := NewThrottle(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := th.Wait(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
