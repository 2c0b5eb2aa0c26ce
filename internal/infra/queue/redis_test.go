package queue

import (
	"context"
	"testing"

	"stock_sim/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client), mr
}

func TestRedis_SendConsume(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Send(ctx, `{"stock_name":"NIKE","current_price":1500}`, domain.OrderQueue))
	require.NoError(t, r.Send(ctx, `{"stock_name":"PUMA","current_price":3300}`, domain.OrderQueue))

	// LPUSH + RPOP keeps send order
	list, err := mr.List(domain.OrderQueue)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	first, err := r.Consume(ctx, domain.OrderQueue)
	require.NoError(t, err)
	assert.Contains(t, first, "NIKE")

	second, err := r.Consume(ctx, domain.OrderQueue)
	require.NoError(t, err)
	assert.Contains(t, second, "PUMA")

	empty, err := r.Consume(ctx, domain.OrderQueue)
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestRedis_Purge(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Send(ctx, `{"stock_name":"NIKE","current_price":1}`, domain.OrderQueue))
	require.NoError(t, r.Send(ctx, "other", "audit"))

	require.NoError(t, r.Purge(ctx, domain.OrderQueue))
	assert.False(t, mr.Exists(domain.OrderQueue))
	assert.True(t, mr.Exists("audit"))

	got, err := r.Consume(ctx, domain.OrderQueue)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// missing key is not an error
	assert.NoError(t, r.Purge(ctx, domain.OrderQueue))
}

func TestRedis_ServerDown(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	mr.Close()

	err := r.Send(ctx, "x", domain.OrderQueue)
	require.Error(t, err)
	assert.True(t, domain.IsRetriable(err))

	_, err = r.Consume(ctx, domain.OrderQueue)
	require.Error(t, err)
}

func TestDialRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	r, err := DialRedis(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Send(ctx, "hello", "q"))
	got, err := r.Consume(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}
