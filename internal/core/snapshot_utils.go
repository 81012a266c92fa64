package core

import (
	"context"
	"time"

	"github.com/olyamironova/orderbook/internal/domain"
)

// snapshot must be called with e.mu held.
func (e *Engine) snapshot(limit int) *domain.BookSnapshot {
	bids, asks := e.book.Depth(limit)
	return &domain.BookSnapshot{
		Symbol:    e.symbol,
		Bids:      bids,
		Asks:      asks,
		Timestamp: time.Now().UTC(),
	}
}

// updateCache stores the full book. A failed write drops the cached copy so
// readers fall back to the live book instead of a stale one.
func (e *Engine) updateCache(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.SetBook(ctx, e.symbol, e.snapshot(0)); err != nil {
		e.log.Warn("cache book failed", "err", err)
		if err := e.cache.Invalidate(ctx, e.symbol); err != nil {
			e.log.Warn("cache invalidate failed", "err", err)
		}
	}
}

func (e *Engine) cachedSnapshot(ctx context.Context) *domain.BookSnapshot {
	if e.cache == nil {
		return nil
	}
	snap, err := e.cache.GetBook(ctx, e.symbol)
	if err != nil {
		e.log.Warn("cache read failed", "err", err)
		return nil
	}
	return snap
}
