package port

import (
	"context"

	"github.com/olyamironova/orderbook/internal/domain"
)

// Cache holds the latest book snapshot per symbol.
// GetBook returns nil, nil on a miss.
type Cache interface {
	SetBook(ctx context.Context, symbol string, snap *domain.BookSnapshot) error
	GetBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error)
	Invalidate(ctx context.Context, symbol string) error
}
