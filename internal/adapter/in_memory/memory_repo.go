package in_memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/olyamironova/orderbook/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo keeps order records and trades for the lifetime of the process.
type MemoryRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.OrderRecord
	trades map[string][]domain.Trade
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders: make(map[string]*domain.OrderRecord),
		trades: make(map[string][]domain.Trade),
	}
}

func (r *MemoryRepo) SaveExecution(ctx context.Context, exec *domain.Execution) error {
	if exec == nil {
		return errors.New("nil execution")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	o := exec.Order
	if _, exists := r.orders[o.ID]; exists {
		return fmt.Errorf("save order %s: %w", o.ID, domain.ErrDuplicateOrder)
	}
	r.orders[o.ID] = &domain.OrderRecord{
		ID:        o.ID,
		Symbol:    exec.Symbol,
		Side:      o.Side,
		Price:     o.Price,
		Quantity:  exec.Requested,
		Remaining: o.Quantity,
		Status:    exec.Status(),
		CreatedAt: exec.PlacedAt,
		UpdatedAt: exec.PlacedAt,
	}

	for _, t := range exec.Trades {
		r.trades[t.TakerID] = append(r.trades[t.TakerID], t)
		r.trades[t.MakerID] = append(r.trades[t.MakerID], t)

		maker, ok := r.orders[t.MakerID]
		if !ok {
			continue
		}
		maker.Remaining -= t.Quantity
		maker.Status = domain.StatusFor(maker.Quantity, maker.Remaining)
		maker.UpdatedAt = t.ExecutedAt
	}
	return nil
}

func (r *MemoryRepo) LoadOrder(ctx context.Context, orderID string) (*domain.OrderRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryRepo) LoadTradesForOrder(ctx context.Context, orderID string) ([]domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Trade{}, r.trades[orderID]...), nil
}

func (r *MemoryRepo) Close(ctx context.Context) {}
