package enrich

import (
	"context"
	"math/rand"
	"time"

	"PostingsCleaner/internal/ports"
)

// RandomPause sleeps a uniformly random duration in [Min, Max].
type RandomPause struct {
	Min time.Duration
	Max time.Duration
}

var _ ports.Pauser = RandomPause{}

// Pause waits or returns early with the context's error.
func (r RandomPause) Pause(ctx context.Context) error {
	d := r.Min
	if span := r.Max - r.Min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span + 1)))
	}
	if d <= 0 {
		return ctx.Err()
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
