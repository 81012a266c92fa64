package core_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/olyamironova/orderbook/internal/adapter/in_memory"
	"github.com/olyamironova/orderbook/internal/core"
	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/olyamironova/orderbook/internal/idgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const symbol = "BTC-USD"

type recordingPublisher struct {
	mu     sync.Mutex
	trades []domain.Trade
	err    error
}

func (p *recordingPublisher) PublishTrades(ctx context.Context, symbol string, trades []domain.Trade) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.trades = append(p.trades, trades...)
	return nil
}

type failingCache struct {
	*in_memory.Cache
	invalidated int
}

func (c *failingCache) SetBook(ctx context.Context, symbol string, snap *domain.BookSnapshot) error {
	return errors.New("cache down")
}

func (c *failingCache) Invalidate(ctx context.Context, symbol string) error {
	c.invalidated++
	return c.Cache.Invalidate(ctx, symbol)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T) (*core.Engine, *in_memory.MemoryRepo, *in_memory.Cache, *recordingPublisher) {
	t.Helper()
	repo := in_memory.NewMemoryRepo()
	cache := in_memory.NewCache()
	pub := &recordingPublisher{}
	book := core.NewOrderBook(core.WithIDGenerator(idgen.NewSequence("o-")))
	return core.NewEngine(book, symbol, repo, cache, pub, quietLogger()), repo, cache, pub
}

func TestEngine_PlaceOrderSideEffects(t *testing.T) {
	ctx := context.Background()
	eng, _, cache, pub := newEngine(t)

	maker, err := eng.PlaceOrder(ctx, domain.Sell, 100, 10)
	require.NoError(t, err)
	require.Empty(t, maker.Trades)
	require.Equal(t, domain.Open, maker.Status())

	taker, err := eng.PlaceOrder(ctx, domain.Buy, 101, 4)
	require.NoError(t, err)
	require.Len(t, taker.Trades, 1)
	require.Equal(t, domain.Filled, taker.Status())
	require.Equal(t, symbol, taker.Symbol)
	require.Equal(t, domain.Quantity(4), taker.Requested)

	// repository
	rec, err := eng.GetOrder(ctx, maker.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Quantity(6), rec.Remaining)
	assert.Equal(t, domain.PartiallyFilled, rec.Status)

	trades, err := eng.GetTradesForOrder(ctx, maker.Order.ID)
	require.NoError(t, err)
	require.Equal(t, taker.Trades, trades)

	// publisher
	require.Equal(t, taker.Trades, pub.trades)

	// cache
	snap, err := cache.GetBook(ctx, symbol)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Empty(t, snap.Bids)
	require.Equal(t, []domain.Level{{Price: 100, Quantity: 6, Orders: 1}}, snap.Asks)
}

func TestEngine_RejectsInvalidOrder(t *testing.T) {
	ctx := context.Background()
	eng, _, cache, pub := newEngine(t)

	_, err := eng.PlaceOrder(ctx, domain.Buy, 100, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	snap, err := cache.GetBook(ctx, symbol)
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Empty(t, pub.trades)
}

func TestEngine_SideEffectFailuresKeepMatch(t *testing.T) {
	ctx := context.Background()
	cache := &failingCache{Cache: in_memory.NewCache()}
	pub := &recordingPublisher{err: errors.New("broker down")}
	eng := core.NewEngine(core.NewOrderBook(), symbol, nil, cache, pub, quietLogger())

	_, err := eng.PlaceOrder(ctx, domain.Sell, 100, 5)
	require.NoError(t, err)
	exec, err := eng.PlaceOrder(ctx, domain.Buy, 100, 5)
	require.NoError(t, err)
	require.Len(t, exec.Trades, 1)
	require.Equal(t, 2, cache.invalidated)

	_, ok := eng.BestSell(ctx)
	require.False(t, ok)

	// no repository configured
	_, err = eng.GetOrder(ctx, exec.Order.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	_, err = eng.GetTradesForOrder(ctx, exec.Order.ID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestEngine_Depth(t *testing.T) {
	ctx := context.Background()
	eng, _, _, _ := newEngine(t)

	for _, p := range []domain.Price{100, 101, 102} {
		_, err := eng.PlaceOrder(ctx, domain.Buy, p, 1)
		require.NoError(t, err)
		_, err = eng.PlaceOrder(ctx, domain.Sell, p+10, 2)
		require.NoError(t, err)
	}

	live := eng.Depth(ctx, 2)
	require.Equal(t, symbol, live.Symbol)
	require.Len(t, live.Bids, 2)
	require.Equal(t, domain.Price(102), live.Bids[0].Price)
	require.Equal(t, domain.Price(110), live.Asks[0].Price)

	cached := eng.CachedDepth(ctx, 2)
	require.Equal(t, live.Bids, cached.Bids)
	require.Equal(t, live.Asks, cached.Asks)

	best, ok := eng.BestBuy(ctx)
	require.True(t, ok)
	require.Equal(t, domain.Price(102), best.Price)
}

func TestEngine_ConcurrentPlacementsConserveQuantity(t *testing.T) {
	ctx := context.Background()
	eng, _, _, pub := newEngine(t)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		side := domain.Buy
		if w%2 == 1 {
			side = domain.Sell
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := eng.PlaceOrder(ctx, side, 100, 1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// equal buy and sell flow at one price nets out completely
	_, okBuy := eng.BestBuy(ctx)
	_, okSell := eng.BestSell(ctx)
	require.False(t, okBuy)
	require.False(t, okSell)
	require.Len(t, pub.trades, workers*perWorker/2)
}

func TestEngine_RestartedSequenceDoesNotOverwriteOrders(t *testing.T) {
	ctx := context.Background()
	repo := in_memory.NewMemoryRepo()

	boot := func() *core.Engine {
		ids, err := idgen.New(idgen.SchemeSequence)
		require.NoError(t, err)
		return core.NewEngine(core.NewOrderBook(core.WithIDGenerator(ids)), symbol, repo, nil, nil, quietLogger())
	}

	first, err := boot().PlaceOrder(ctx, domain.Sell, 100, 10)
	require.NoError(t, err)
	second, err := boot().PlaceOrder(ctx, domain.Buy, 50, 3)
	require.NoError(t, err)
	require.Equal(t, first.Order.ID, second.Order.ID)

	stored, err := repo.LoadOrder(ctx, first.Order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Sell, stored.Side)
	require.Equal(t, domain.Price(100), stored.Price)
}
