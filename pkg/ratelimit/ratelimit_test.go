package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacer_ZeroIntervalNeverBlocks(t *testing.T) {
	p := NewPacer(0, 0.5)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Millisecond {
		t.Error("zero-interval pacer should not block")
	}
}

func TestPacer_Wait(t *testing.T) {
	p := NewPacer(100*time.Millisecond, 0)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	elapsed := time.Since(start)
	if elapsed < 80*time.Millisecond || elapsed > 250*time.Millisecond {
		t.Errorf("expected wait around 100ms, took %v", elapsed)
	}
}

func TestPacer_Jitter(t *testing.T) {
	p := NewPacer(100*time.Millisecond, 0.5)

	start := time.Now()
	_ = p.Wait(context.Background())
	elapsed := time.Since(start)

	// Interval 100ms with +/- 50ms jitter; allow scheduling slack.
	if elapsed < 30*time.Millisecond || elapsed > 300*time.Millisecond {
		t.Errorf("expected jittered wait between 50ms and 150ms, took %v", elapsed)
	}
}

func TestPacer_ContextCancellation(t *testing.T) {
	p := NewPacer(time.Second, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Wait(ctx); err == nil {
		t.Fatal("expected context canceled error")
	}
}
