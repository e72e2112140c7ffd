package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client, time.Minute, zap.NewNop()), mr
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var v decimal.Decimal
	err := c.Get(context.Background(), "fx:missing", &v)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_SetThenGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "fx:usd:eur", decimal.RequireFromString("0.9134")))

	var v decimal.Decimal
	require.NoError(t, c.Get(ctx, "fx:usd:eur", &v))
	assert.True(t, v.Equal(decimal.RequireFromString("0.9134")), "got %s", v)
}

func TestRedisCache_SetWithTTLExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "short", "value", 10*time.Second))
	mr.FastForward(11 * time.Second)

	var v string
	assert.ErrorIs(t, c.Get(ctx, "short", &v), ErrCacheMiss)
}

func TestRedisCache_HealthCheck(t *testing.T) {
	c, mr := newTestCache(t)

	assert.NoError(t, c.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
}
