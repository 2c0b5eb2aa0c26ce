package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability of a run.
// Uses atomic operations for thread-safety; one instance is shared by all workers.
type Metrics struct {
	// Trader side
	ordersSubmitted atomic.Uint64
	sendFailures    atomic.Uint64
	factorUpdates   atomic.Uint64

	// Broker side
	ordersApplied  atomic.Uint64
	decodeFailures atomic.Uint64
	unknownStocks  atomic.Uint64
	emptyPolls     atomic.Uint64

	// Send latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	feedClients atomic.Int32
}

// NewMetrics creates an empty Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordOrderSubmitted records a successful send with its latency.
func (m *Metrics) RecordOrderSubmitted(latency time.Duration) {
	m.ordersSubmitted.Add(1)
	m.latencySumNs.Add(latency.Nanoseconds())
	m.latencyCount.Add(1)
}

// RecordSendFailure records an order lost to a serialization or send failure.
func (m *Metrics) RecordSendFailure() {
	m.sendFailures.Add(1)
}

// RecordFactorUpdate records a committed market factor change.
func (m *Metrics) RecordFactorUpdate() {
	m.factorUpdates.Add(1)
}

// RecordOrderApplied records an order applied to the broker ledger.
func (m *Metrics) RecordOrderApplied() {
	m.ordersApplied.Add(1)
}

// RecordDecodeFailure records a payload the broker could not decode.
func (m *Metrics) RecordDecodeFailure() {
	m.decodeFailures.Add(1)
}

// RecordUnknownStock records an order naming a stock the broker does not hold.
func (m *Metrics) RecordUnknownStock() {
	m.unknownStocks.Add(1)
}

// RecordEmptyPoll records a poll that found nothing queued.
func (m *Metrics) RecordEmptyPoll() {
	m.emptyPolls.Add(1)
}

// IncrementFeedClients increments connected feed clients by 1.
func (m *Metrics) IncrementFeedClients() {
	m.feedClients.Add(1)
}

// DecrementFeedClients decrements connected feed clients by 1.
func (m *Metrics) DecrementFeedClients() {
	m.feedClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersSubmitted uint64    `json:"orders_submitted"`
	SendFailures    uint64    `json:"send_failures"`
	FactorUpdates   uint64    `json:"factor_updates"`
	OrdersApplied   uint64    `json:"orders_applied"`
	DecodeFailures  uint64    `json:"decode_failures"`
	UnknownStocks   uint64    `json:"unknown_stocks"`
	EmptyPolls      uint64    `json:"empty_polls"`
	AvgSendLatency  int64     `json:"avg_send_latency_ns"`
	FeedClients     int32     `json:"feed_clients"`
	Timestamp       time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		OrdersSubmitted: m.ordersSubmitted.Load(),
		SendFailures:    m.sendFailures.Load(),
		FactorUpdates:   m.factorUpdates.Load(),
		OrdersApplied:   m.ordersApplied.Load(),
		DecodeFailures:  m.decodeFailures.Load(),
		UnknownStocks:   m.unknownStocks.Load(),
		EmptyPolls:      m.emptyPolls.Load(),
		AvgSendLatency:  avgLatency,
		FeedClients:     m.feedClients.Load(),
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersSubmitted.Store(0)
	m.sendFailures.Store(0)
	m.factorUpdates.Store(0)
	m.ordersApplied.Store(0)
	m.decodeFailures.Store(0)
	m.unknownStocks.Store(0)
	m.emptyPolls.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.feedClients.Store(0)
}
