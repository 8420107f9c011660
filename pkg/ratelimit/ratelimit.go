// Package ratelimit paces successive operations with a fixed interval and
// optional random jitter.
package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Pacer enforces a pause between operations. The zero interval never blocks.
// It is safe for concurrent use.
type Pacer struct {
	interval time.Duration
	jitter   float64 // 0.0 to 1.0 fraction of interval
}

// NewPacer creates a pacer that waits interval between operations, stretched
// or shrunk by up to jitter*interval each time. Jitter is clamped to [0, 1].
func NewPacer(interval time.Duration, jitter float64) *Pacer {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	return &Pacer{interval: interval, jitter: jitter}
}

// Wait blocks for one jittered interval or until the context is done. A pacer
// with a non-positive interval returns immediately.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	d := p.interval
	if p.jitter > 0 {
		// random factor in [-jitter, +jitter]
		factor := (rand.Float64()*2 - 1) * p.jitter
		d += time.Duration(float64(p.interval) * factor)
		if d < 0 {
			d = 0
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
