package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/olyamironova/orderbook/internal/port"
)

// Engine serialises access to one OrderBook and fans each placement out to
// the repository, the trade publisher and the snapshot cache. Any of the
// three may be nil.
type Engine struct {
	symbol string
	repo   port.Repository
	cache  port.Cache
	pub    port.TradePublisher
	log    *slog.Logger

	mu   sync.Mutex
	book *OrderBook
}

func NewEngine(book *OrderBook, symbol string, repo port.Repository, cache port.Cache, pub port.TradePublisher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		symbol: symbol,
		repo:   repo,
		cache:  cache,
		pub:    pub,
		log:    logger.With("component", "engine", "symbol", symbol),
		book:   book,
	}
}

func (e *Engine) Symbol() string { return e.symbol }

// PlaceOrder matches the order and runs every side effect before the next
// placement can start. Side-effect failures are logged; the match stands.
func (e *Engine) PlaceOrder(ctx context.Context, side domain.Side, price domain.Price, qty domain.Quantity) (*domain.Execution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	placedAt := time.Now()
	order, trades, err := e.book.PlaceOrder(side, price, qty)
	if err != nil {
		return nil, err
	}
	exec := &domain.Execution{
		Symbol:    e.symbol,
		Order:     order,
		Requested: qty,
		Trades:    trades,
		PlacedAt:  placedAt,
	}

	e.log.Info("order placed",
		"order_id", order.ID,
		"side", side,
		"price", price,
		"quantity", qty,
		"filled", exec.Filled(),
		"trades", len(trades),
	)

	if e.repo != nil {
		if err := e.repo.SaveExecution(ctx, exec); err != nil {
			e.log.Warn("persist execution failed", "order_id", order.ID, "err", err)
		}
	}
	if e.pub != nil && len(trades) > 0 {
		if err := e.pub.PublishTrades(ctx, e.symbol, trades); err != nil {
			e.log.Warn("publish trades failed", "order_id", order.ID, "err", err)
		}
	}
	e.updateCache(ctx)

	return exec, nil
}

func (e *Engine) BestBuy(ctx context.Context) (domain.Level, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestBuy()
}

func (e *Engine) BestSell(ctx context.Context) (domain.Level, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestSell()
}

// Depth returns a live snapshot, at most limit levels per side.
func (e *Engine) Depth(ctx context.Context, limit int) *domain.BookSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(limit)
}

// CachedDepth serves the snapshot from the cache when one is present and
// falls back to the live book otherwise.
func (e *Engine) CachedDepth(ctx context.Context, limit int) *domain.BookSnapshot {
	if snap := e.cachedSnapshot(ctx); snap != nil {
		return snap.Truncate(limit)
	}
	return e.Depth(ctx, limit)
}

func (e *Engine) GetOrder(ctx context.Context, orderID string) (*domain.OrderRecord, error) {
	if e.repo == nil {
		return nil, domain.ErrOrderNotFound
	}
	return e.repo.LoadOrder(ctx, orderID)
}

// GetTradesForOrder lists the trades an order took part in, as maker or taker.
func (e *Engine) GetTradesForOrder(ctx context.Context, orderID string) ([]domain.Trade, error) {
	if _, err := e.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return e.repo.LoadTradesForOrder(ctx, orderID)
}
