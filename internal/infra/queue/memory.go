package queue

import (
	"context"
	"sync"

	"stock_sim/internal/domain"
)

// Memory is an in-process FIFO per queue name.
// It never blocks: Consume returns "" when the queue is empty.
type Memory struct {
	mu     sync.Mutex
	queues map[string][]string
	closed bool
}

// NewMemory creates an empty in-memory channel.
func NewMemory() *Memory {
	return &Memory{queues: make(map[string][]string)}
}

func (m *Memory) Send(_ context.Context, payload, queue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.NewFatalQueueError("send", queue, domain.ErrChannelClosed)
	}
	m.queues[queue] = append(m.queues[queue], payload)
	return nil
}

func (m *Memory) Consume(_ context.Context, queue string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[queue]
	if len(q) == 0 {
		return "", nil
	}
	payload := q[0]
	q[0] = ""
	m.queues[queue] = q[1:]
	return payload, nil
}

// Len reports how many payloads are waiting on queue.
func (m *Memory) Len(queue string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[queue])
}

// Purge drops every payload waiting on queue.
func (m *Memory) Purge(_ context.Context, queue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queues, queue)
	return nil
}

// Close rejects further sends. Queued payloads can still be consumed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
