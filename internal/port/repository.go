package port

import (
	"context"

	"github.com/olyamironova/orderbook/internal/domain"
)

// Repository persists the outcome of every placement.
type Repository interface {
	// SaveExecution stores the taker order, its trades and the maker fills
	// atomically.
	SaveExecution(ctx context.Context, exec *domain.Execution) error
	LoadOrder(ctx context.Context, orderID string) (*domain.OrderRecord, error)
	LoadTradesForOrder(ctx context.Context, orderID string) ([]domain.Trade, error)
	Close(ctx context.Context)
}
