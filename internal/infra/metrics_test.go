package infra

import (
	"sync"
	"testing"
	"time"
)

func TestMetrics_RecordOrderSubmitted(t *testing.T) {
	m := NewMetrics()

	m.RecordOrderSubmitted(1000 * time.Nanosecond)
	m.RecordOrderSubmitted(2000 * time.Nanosecond)
	m.RecordOrderSubmitted(3000 * time.Nanosecond)

	snap := m.Snapshot()

	if snap.OrdersSubmitted != 3 {
		t.Errorf("Expected 3 orders, got %d", snap.OrdersSubmitted)
	}

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if snap.AvgSendLatency != 2000 {
		t.Errorf("Expected avg latency 2000, got %d", snap.AvgSendLatency)
	}
}

func TestMetrics_BrokerCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordOrderApplied()
	m.RecordOrderApplied()
	m.RecordDecodeFailure()
	m.RecordUnknownStock()
	m.RecordEmptyPoll()
	m.RecordEmptyPoll()
	m.RecordEmptyPoll()

	snap := m.Snapshot()
	if snap.OrdersApplied != 2 {
		t.Errorf("Expected 2 applied, got %d", snap.OrdersApplied)
	}
	if snap.DecodeFailures != 1 {
		t.Errorf("Expected 1 decode failure, got %d", snap.DecodeFailures)
	}
	if snap.UnknownStocks != 1 {
		t.Errorf("Expected 1 unknown stock, got %d", snap.UnknownStocks)
	}
	if snap.EmptyPolls != 3 {
		t.Errorf("Expected 3 empty polls, got %d", snap.EmptyPolls)
	}
}

func TestMetrics_FeedClients(t *testing.T) {
	m := NewMetrics()

	m.IncrementFeedClients()
	m.IncrementFeedClients()
	m.IncrementFeedClients()

	snap := m.Snapshot()
	if snap.FeedClients != 3 {
		t.Errorf("Expected 3 clients, got %d", snap.FeedClients)
	}

	m.DecrementFeedClients()
	snap = m.Snapshot()
	if snap.FeedClients != 2 {
		t.Errorf("Expected 2 clients, got %d", snap.FeedClients)
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordFactorUpdate()
				m.RecordSendFailure()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.FactorUpdates != 800 || snap.SendFailures != 800 {
		t.Errorf("Expected 800/800, got %d/%d", snap.FactorUpdates, snap.SendFailures)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()

	m.RecordOrderSubmitted(time.Microsecond)
	m.RecordSendFailure()
	m.IncrementFeedClients()

	m.Reset()
	snap := m.Snapshot()

	if snap.OrdersSubmitted != 0 {
		t.Error("Expected 0 orders after reset")
	}
	if snap.SendFailures != 0 {
		t.Error("Expected 0 failures after reset")
	}
	if snap.FeedClients != 0 {
		t.Error("Expected 0 clients after reset")
	}
	if snap.AvgSendLatency != 0 {
		t.Error("Expected 0 latency after reset")
	}
}
