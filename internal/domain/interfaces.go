package domain

import (
	"context"
	"time"
)

// OrderChannel is the named-queue transport between traders and the broker.
type OrderChannel interface {
	// Send enqueues a payload on the named queue.
	Send(ctx context.Context, payload, queue string) error
	// Consume returns the next payload without blocking, or "" when nothing is queued.
	Consume(ctx context.Context, queue string) (string, error)
	Close() error
}

// QueuePurger is implemented by channels whose queues outlive a run.
// Purge drops every payload waiting on queue.
type QueuePurger interface {
	Purge(ctx context.Context, queue string) error
}

// RandomSource isolates randomness so tests can supply deterministic sequences.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// Sleeper pauses a worker between iterations.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// MarketObserver receives market events from the traders and the broker.
// Implementations must be safe for concurrent use.
type MarketObserver interface {
	OnFactors(traderID int, factors MarketFactors, news MarketNews)
	OnOrderSubmitted(traderID int, activity Activity, stock Stock)
	OnOrderApplied(stock Stock)
	OnTraderDone(traderID int, orders int)
}

// OrderJournal records orders the broker applied.
type OrderJournal interface {
	RecordApplied(ctx context.Context, runID string, stock Stock) error
}
