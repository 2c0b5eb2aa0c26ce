package infra

import (
	"math"
	"time"
)

// CalculateBackoff returns base * 2^attempt, capped at max.
func CalculateBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	delay := base * time.Duration(math.Pow(2, float64(attempt)))
	if delay > max || delay <= 0 {
		delay = max
	}
	return delay
}

// PollBackoff paces a polling loop: each empty poll doubles the wait up to
// the ceiling, a productive poll resets it. Not safe for concurrent use.
type PollBackoff struct {
	base    time.Duration
	max     time.Duration
	attempt int
}

// NewPollBackoff creates a PollBackoff starting at base.
func NewPollBackoff(base, max time.Duration) *PollBackoff {
	if max < base {
		max = base
	}
	return &PollBackoff{base: base, max: max}
}

// Next returns the wait for the current empty poll and advances the attempt.
func (b *PollBackoff) Next() time.Duration {
	delay := CalculateBackoff(b.attempt, b.base, b.max)
	if delay < b.max {
		b.attempt++
	}
	return delay
}

// Reset returns the backoff to its base delay.
func (b *PollBackoff) Reset() {
	b.attempt = 0
}
