// Package queue provides the order channel transports.
package queue

import (
	"context"
	"fmt"
	"time"

	"stock_sim/internal/domain"
	"stock_sim/internal/infra"
)

// New opens the order channel selected by cfg.Queue.Backend.
func New(ctx context.Context, cfg *infra.Config) (domain.OrderChannel, error) {
	q := cfg.Queue
	switch q.Backend {
	case infra.QueueMemory:
		return NewMemory(), nil
	case infra.QueueRedis:
		r, err := DialRedis(ctx, q.Redis.Addr, q.Redis.Password, q.Redis.DB)
		if err != nil {
			return nil, err
		}
		return r, nil
	case infra.QueueKafka:
		timeout := time.Duration(q.Kafka.PollTimeoutMS) * time.Millisecond
		if timeout <= 0 {
			timeout = 50 * time.Millisecond
		}
		return DialKafka(q.Kafka.Brokers, q.Kafka.GroupID, q.Name, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, q.Backend)
	}
}
