package queue

import (
	"context"
	"errors"

	"stock_sim/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Redis carries payloads on a redis list per queue: LPUSH to send, RPOP to consume.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, domain.NewFatalQueueError("dial", addr, err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Send(ctx context.Context, payload, queue string) error {
	if err := r.client.LPush(ctx, queue, payload).Err(); err != nil {
		return domain.NewQueueError("send", queue, err)
	}
	return nil
}

func (r *Redis) Consume(ctx context.Context, queue string) (string, error) {
	payload, err := r.client.RPop(ctx, queue).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", domain.NewQueueError("consume", queue, err)
	}
	return payload, nil
}

// Purge deletes the list behind queue, so orders left by an earlier run
// are not applied to this one.
func (r *Redis) Purge(ctx context.Context, queue string) error {
	if err := r.client.Del(ctx, queue).Err(); err != nil {
		return domain.NewQueueError("purge", queue, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
