package core

import (
	"math"
	"time"

	"github.com/google/btree"
	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/olyamironova/orderbook/internal/idgen"
)

const treeDegree = 32

// Option configures an OrderBook.
type Option func(*OrderBook)

// WithIDGenerator sets the source of order and trade identifiers.
func WithIDGenerator(g idgen.Generator) Option {
	return func(ob *OrderBook) {
		ob.ids = g
	}
}

// WithClock sets the time source used to stamp trades.
func WithClock(now func() time.Time) Option {
	return func(ob *OrderBook) {
		ob.now = now
	}
}

// OrderBook is a single-instrument limit order book with price-time priority.
// It is not safe for concurrent use; Engine serialises access to it.
//
// Both sides are kept in ascending price order: asks are read from the
// lowest level up and bids from the highest level down.
type OrderBook struct {
	bids *btree.BTreeG[*priceLevel]
	asks *btree.BTreeG[*priceLevel]
	ids  idgen.Generator
	now  func() time.Time
}

func NewOrderBook(opts ...Option) *OrderBook {
	ob := &OrderBook{
		bids: btree.NewG(treeDegree, byPrice),
		asks: btree.NewG(treeDegree, byPrice),
		ids:  idgen.UUID{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(ob)
	}
	return ob
}

// Place matches a new order against the opposite side and rests whatever is
// left. Trades are returned in the order they happened.
func (ob *OrderBook) Place(side domain.Side, price domain.Price, qty domain.Quantity) ([]domain.Trade, error) {
	_, trades, err := ob.PlaceOrder(side, price, qty)
	return trades, err
}

// PlaceOrder is Place that also reports the incoming order after matching.
// The returned order's Quantity is the amount left resting (0 if filled).
func (ob *OrderBook) PlaceOrder(side domain.Side, price domain.Price, qty domain.Quantity) (domain.Order, []domain.Trade, error) {
	if !side.Valid() {
		return domain.Order{}, nil, domain.ErrInvalidSide
	}
	if qty <= 0 {
		return domain.Order{}, nil, domain.ErrInvalidQuantity
	}
	if price <= 0 {
		return domain.Order{}, nil, domain.ErrInvalidPrice
	}
	// checked against the full quantity since the remainder is not known yet
	if lvl, ok := ob.sideOf(side).Get(&priceLevel{price: price}); ok && lvl.total > math.MaxInt64-qty {
		return domain.Order{}, nil, domain.ErrQuantityOverflow
	}

	o := &domain.Order{
		ID:       ob.ids.NewID(),
		Side:     side,
		Price:    price,
		Quantity: qty,
	}

	trades := ob.match(o)
	if o.Quantity > 0 {
		ob.rest(o)
	}
	return *o, trades, nil
}

func (ob *OrderBook) sideOf(s domain.Side) *btree.BTreeG[*priceLevel] {
	if s == domain.Buy {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) match(in *domain.Order) []domain.Trade {
	opposite := ob.sideOf(in.Side.Opposite())
	walk := opposite.Ascend
	crosses := func(p domain.Price) bool { return in.Price >= p }
	if in.Side == domain.Sell {
		walk = opposite.Descend
		crosses = func(p domain.Price) bool { return in.Price <= p }
	}

	var (
		trades  []domain.Trade
		emptied []*priceLevel
	)
	walk(func(lvl *priceLevel) bool {
		// levels get worse from here on, so the first miss ends the scan
		if !crosses(lvl.price) {
			return false
		}
		for in.Quantity > 0 && !lvl.empty() {
			maker := lvl.front()
			qty := min(in.Quantity, maker.Quantity)
			trades = append(trades, domain.Trade{
				ID:         ob.ids.NewID(),
				Price:      lvl.price,
				Quantity:   qty,
				MakerID:    maker.ID,
				TakerID:    in.ID,
				TakerSide:  in.Side,
				ExecutedAt: ob.now(),
			})
			in.Quantity -= qty
			lvl.fill(qty)
		}
		if lvl.empty() {
			emptied = append(emptied, lvl)
		}
		return in.Quantity > 0
	})

	// the tree cannot change shape while it is being walked
	for _, lvl := range emptied {
		opposite.Delete(lvl)
	}
	return trades
}

func (ob *OrderBook) rest(o *domain.Order) {
	side := ob.sideOf(o.Side)
	lvl, ok := side.Get(&priceLevel{price: o.Price})
	if !ok {
		lvl = &priceLevel{price: o.Price}
		side.ReplaceOrInsert(lvl)
	}
	lvl.push(o)
}

// BestBuy returns the highest bid level, or false when there are no bids.
func (ob *OrderBook) BestBuy() (domain.Level, bool) {
	lvl, ok := ob.bids.Max()
	if !ok {
		return domain.Level{}, false
	}
	return lvl.level(), true
}

// BestSell returns the lowest ask level, or false when there are no asks.
func (ob *OrderBook) BestSell() (domain.Level, bool) {
	lvl, ok := ob.asks.Min()
	if !ok {
		return domain.Level{}, false
	}
	return lvl.level(), true
}

// Depth lists aggregated levels best first, at most limit per side.
// limit <= 0 returns every level.
func (ob *OrderBook) Depth(limit int) (bids, asks []domain.Level) {
	collect := func(out *[]domain.Level) btree.ItemIteratorG[*priceLevel] {
		return func(lvl *priceLevel) bool {
			*out = append(*out, lvl.level())
			return limit <= 0 || len(*out) < limit
		}
	}
	bids = []domain.Level{}
	asks = []domain.Level{}
	ob.bids.Descend(collect(&bids))
	ob.asks.Ascend(collect(&asks))
	return bids, asks
}

// Len reports the number of price levels on each side.
func (ob *OrderBook) Len() (bidLevels, askLevels int) {
	return ob.bids.Len(), ob.asks.Len()
}
