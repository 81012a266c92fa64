package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "", 0, ttl)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(context.Background()))
	return c, mr
}

func testSnapshot() *domain.BookSnapshot {
	return &domain.BookSnapshot{
		Symbol:    "BTC-USD",
		Bids:      []domain.Level{{Price: 102, Quantity: 180, Orders: 1}, {Price: 101, Quantity: 220, Orders: 2}},
		Asks:      []domain.Level{{Price: 103, Quantity: 150, Orders: 1}},
		Timestamp: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.SetBook(ctx, "BTC-USD", testSnapshot()))
	require.True(t, mr.Exists("ob:BTC-USD"))

	got, err := c.GetBook(ctx, "BTC-USD")
	require.NoError(t, err)
	require.Equal(t, testSnapshot(), got)
}

func TestRedisCache_MissIsNil(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	got, err := c.GetBook(context.Background(), "ETH-USD")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisCache_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, 30*time.Second)

	require.NoError(t, c.SetBook(ctx, "BTC-USD", testSnapshot()))
	require.Equal(t, 30*time.Second, mr.TTL("ob:BTC-USD"))

	mr.FastForward(31 * time.Second)
	got, err := c.GetBook(ctx, "BTC-USD")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, c.SetBook(ctx, "BTC-USD", testSnapshot()))
	require.NoError(t, c.Invalidate(ctx, "BTC-USD"))
	require.False(t, mr.Exists("ob:BTC-USD"))

	got, err := c.GetBook(ctx, "BTC-USD")
	require.NoError(t, err)
	require.Nil(t, got)

	// invalidating a missing key is not an error
	require.NoError(t, c.Invalidate(ctx, "BTC-USD"))
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("ob:BTC-USD", "{not json"))

	_, err := c.GetBook(context.Background(), "BTC-USD")
	require.ErrorContains(t, err, "decode ob:BTC-USD")
}
