package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/olyamironova/orderbook/internal/port"
)

var _ port.Repository = (*PgRepo)(nil)

type PgRepo struct {
	pool *pgxpool.Pool
}

// call Close when finish to work with database.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func (p *PgRepo) Close(ctx context.Context) {
	if p.pool != nil {
		p.pool.Close()
	}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// SaveExecution writes the taker, its trades and the maker fills in one
// transaction.
func (p *PgRepo) SaveExecution(ctx context.Context, exec *domain.Execution) error {
	if exec == nil {
		return errors.New("nil execution")
	}
	return withTx(ctx, p.pool, func(tx pgx.Tx) error {
		o := exec.Order
		_, err := tx.Exec(ctx, `
INSERT INTO orders(id, symbol, side, price, quantity, remaining, status, created_at, updated_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$8)
`, o.ID, exec.Symbol, string(o.Side), int64(o.Price), int64(exec.Requested),
			int64(o.Quantity), string(exec.Status()), exec.PlacedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("pg: save order %s: %w", o.ID, domain.ErrDuplicateOrder)
		}
		if err != nil {
			return fmt.Errorf("pg: save order %s: %w", o.ID, err)
		}

		for _, t := range exec.Trades {
			_, err := tx.Exec(ctx, `
INSERT INTO trades(id, symbol, price, quantity, maker_order, taker_order, taker_side, executed_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8)
`, t.ID, exec.Symbol, int64(t.Price), int64(t.Quantity), t.MakerID, t.TakerID,
				string(t.TakerSide), t.ExecutedAt)
			if err != nil {
				return fmt.Errorf("pg: save trade %s: %w", t.ID, err)
			}

			// SET sees the pre-update row, so both expressions use the old remaining
			_, err = tx.Exec(ctx, `
UPDATE orders
SET remaining = remaining - $1,
    status = CASE WHEN remaining - $1 = 0 THEN 'FILLED' ELSE 'PARTIALLY_FILLED' END,
    updated_at = $2
WHERE id = $3
`, int64(t.Quantity), t.ExecutedAt, t.MakerID)
			if err != nil {
				return fmt.Errorf("pg: fill maker %s: %w", t.MakerID, err)
			}
		}
		return nil
	})
}

func (p *PgRepo) LoadOrder(ctx context.Context, orderID string) (*domain.OrderRecord, error) {
	var (
		o                          domain.OrderRecord
		side, status               string
		price, quantity, remaining int64
	)
	err := p.pool.QueryRow(ctx, `
SELECT id, symbol, side, price, quantity, remaining, status, created_at, updated_at
FROM orders
WHERE id = $1
`, orderID).Scan(&o.ID, &o.Symbol, &side, &price, &quantity, &remaining, &status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: load order %s: %w", orderID, err)
	}
	o.Side = domain.Side(side)
	o.Status = domain.OrderStatus(status)
	o.Price = domain.Price(price)
	o.Quantity = domain.Quantity(quantity)
	o.Remaining = domain.Quantity(remaining)
	return &o, nil
}

// LoadTradesForOrder returns the order's trades as maker or taker, oldest first.
func (p *PgRepo) LoadTradesForOrder(ctx context.Context, orderID string) ([]domain.Trade, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, price, quantity, maker_order, taker_order, taker_side, executed_at
FROM trades
WHERE maker_order = $1 OR taker_order = $1
ORDER BY seq ASC
`, orderID)
	if err != nil {
		return nil, fmt.Errorf("pg: load trades for %s: %w", orderID, err)
	}
	defer rows.Close()

	res := []domain.Trade{}
	for rows.Next() {
		var (
			t               domain.Trade
			price, quantity int64
			side            string
			executedAt      time.Time
		)
		if err := rows.Scan(&t.ID, &price, &quantity, &t.MakerID, &t.TakerID, &side, &executedAt); err != nil {
			return nil, err
		}
		t.Price = domain.Price(price)
		t.Quantity = domain.Quantity(quantity)
		t.TakerSide = domain.Side(side)
		t.ExecutedAt = executedAt.UTC()
		res = append(res, t)
	}
	return res, rows.Err()
}
