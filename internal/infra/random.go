package infra

import (
	"context"
	"math/rand/v2"
	"time"
)

// RandomSource draws from math/rand/v2's PCG generator.
// Each worker owns one; it is not safe for concurrent use.
type RandomSource struct {
	r *rand.Rand
}

// NewRandomSource seeds a source. seed 0 picks a time based seed.
// Workers pass seed+id so a seeded run is reproducible per worker.
func NewRandomSource(seed uint64) *RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSource) Float64() float64 {
	return s.r.Float64()
}

func (s *RandomSource) IntN(n int) int {
	return s.r.IntN(n)
}

// ContextSleeper sleeps on a timer and wakes early when ctx is cancelled.
type ContextSleeper struct{}

// Sleep blocks for d or until ctx is done, whichever comes first.
func (ContextSleeper) Sleep(ctx context.Context, d time.Duration) error {
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
