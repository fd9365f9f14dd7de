package redis_test

import (
	"context"
	"testing"
	"time"

	cache "orders/internal/adapters/out/redis"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*cache.ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewReportCache(client, ttl), mr
}

func TestReportCache_RoundTrip(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()
	report := services.Report{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Currencies: []services.CurrencyReport{{
			Currency:   "USD",
			OrderCount: 2,
			TotalValue: decimal.RequireFromString("54.00"),
		}},
	}

	require.NoError(t, c.Set(ctx, "all:2026-01-01:2026-03-31", report))
	assert.True(t, mr.Exists("orders:analytics:all:2026-01-01:2026-03-31"))

	got, err := c.Get(ctx, "all:2026-01-01:2026-03-31")
	require.NoError(t, err)
	require.Len(t, got.Currencies, 1)
	assert.Equal(t, 2, got.Currencies[0].OrderCount)
	assert.True(t, got.Currencies[0].TotalValue.Equal(decimal.RequireFromString("54")))
}

func TestReportCache_MissAndExpiry(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "absent")
	require.ErrorIs(t, err, ports.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", services.Report{}))
	mr.FastForward(2 * time.Minute)

	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "orders:analytics:a:b", cache.GenerateKey("a", "b"))
}
