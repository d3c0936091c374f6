package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warungpos/backend/internal/domain"
)

func newIntegrationCache(t *testing.T) *RedisAnalyticsCache {
	t.Helper()
	addr := os.Getenv("POS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set POS_TEST_REDIS_ADDR to run redis integration test")
	}

	c := NewRedisAnalyticsCache(addr, "", 0)
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisAnalyticsCacheRoundTrip(t *testing.T) {
	c := newIntegrationCache(t)
	ctx := context.Background()
	key := "pos:analytics:test-roundtrip"
	t.Cleanup(func() { _ = c.client.Del(ctx, key).Err() })

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	report := &domain.AnalyticsReport{
		Analytics:        []domain.ProductAnalytics{{ProductID: 1, Name: "Kopi", Quantity: 2, TotalRevenue: 1000}},
		TotalSalesAmount: 900,
	}
	require.NoError(t, c.Set(ctx, key, report, time.Minute))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, report, got)
}

func TestRedisAnalyticsCacheDropsCorruptEntry(t *testing.T) {
	c := newIntegrationCache(t)
	ctx := context.Background()
	key := "pos:analytics:test-corrupt"
	require.NoError(t, c.client.Set(ctx, key, "{not json", time.Minute).Err())

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	exists, err := c.client.Exists(ctx, key).Result()
	require.NoError(t, err)
	require.Zero(t, exists)
}

func TestNoopAnalyticsCacheAlwaysMisses(t *testing.T) {
	var c AnalyticsCache = NoopAnalyticsCache{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", &domain.AnalyticsReport{TotalSalesAmount: 1}, time.Minute))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}
