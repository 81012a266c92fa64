package port

import (
	"context"

	"github.com/olyamironova/orderbook/internal/domain"
)

type TradePublisher interface {
	PublishTrades(ctx context.Context, symbol string, trades []domain.Trade) error
}
