package pg

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
  id         TEXT PRIMARY KEY,
  symbol     TEXT NOT NULL,
  side       TEXT NOT NULL,
  price      BIGINT NOT NULL,
  quantity   BIGINT NOT NULL,
  remaining  BIGINT NOT NULL,
  status     TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
  seq         BIGSERIAL,
  id          TEXT PRIMARY KEY,
  symbol      TEXT NOT NULL,
  price       BIGINT NOT NULL,
  quantity    BIGINT NOT NULL,
  maker_order TEXT NOT NULL,
  taker_order TEXT NOT NULL,
  taker_side  TEXT NOT NULL,
  executed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS trades_maker_idx ON trades (maker_order);
CREATE INDEX IF NOT EXISTS trades_taker_idx ON trades (taker_order);
`

// Migrate creates the tables if they do not exist yet.
func (p *PgRepo) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("pg: migrate: %w", err)
	}
	return nil
}
