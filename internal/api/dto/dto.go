package dto

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotWholeNumber is returned for fractional or out-of-range prices and
// quantities. The book only trades whole units, so nothing is rounded.
var ErrNotWholeNumber = errors.New("must be a whole number within int64 range")

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

type PlaceOrderRequest struct {
	Side     string          `json:"side" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type PlaceOrderResponse struct {
	OrderID   string          `json:"order_id"`
	Symbol    string          `json:"symbol"`
	Side      domain.Side     `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Requested decimal.Decimal `json:"requested"`
	Filled    decimal.Decimal `json:"filled"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    string          `json:"status"`
	Trades    []Trade         `json:"trades"`
}

type Order struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      domain.Side     `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type GetOrderResponse struct {
	Order Order `json:"order"`
}

type GetTradesResponse struct {
	Trades []Trade `json:"trades"`
}

type Trade struct {
	ID         string          `json:"id"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	MakerOrder string          `json:"maker_order"`
	TakerOrder string          `json:"taker_order"`
	TakerSide  domain.Side     `json:"taker_side"`
	ExecutedAt time.Time       `json:"executed_at"`
}

type Level struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   int             `json:"orders"`
}

type GetOrderbookResponse struct {
	Symbol    string    `json:"symbol"`
	Bids      []Level   `json:"bids"`
	Asks      []Level   `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}

// ToPrice converts a request price. Sign is left to the book to check.
func ToPrice(d decimal.Decimal) (domain.Price, error) {
	v, err := toInt64(d)
	if err != nil {
		return 0, fmt.Errorf("price %s: %w", d, err)
	}
	return domain.Price(v), nil
}

func ToQuantity(d decimal.Decimal) (domain.Quantity, error) {
	v, err := toInt64(d)
	if err != nil {
		return 0, fmt.Errorf("quantity %s: %w", d, err)
	}
	return domain.Quantity(v), nil
}

func toInt64(d decimal.Decimal) (int64, error) {
	if !d.IsInteger() || d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return 0, ErrNotWholeNumber
	}
	return d.IntPart(), nil
}

func FromExecution(exec *domain.Execution) PlaceOrderResponse {
	return PlaceOrderResponse{
		OrderID:   exec.Order.ID,
		Symbol:    exec.Symbol,
		Side:      exec.Order.Side,
		Price:     decimal.NewFromInt(int64(exec.Order.Price)),
		Requested: decimal.NewFromInt(int64(exec.Requested)),
		Filled:    decimal.NewFromInt(int64(exec.Filled())),
		Remaining: decimal.NewFromInt(int64(exec.Order.Quantity)),
		Status:    string(exec.Status()),
		Trades:    FromTrades(exec.Trades),
	}
}

func FromOrderRecord(o *domain.OrderRecord) Order {
	return Order{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Price:     decimal.NewFromInt(int64(o.Price)),
		Quantity:  decimal.NewFromInt(int64(o.Quantity)),
		Remaining: decimal.NewFromInt(int64(o.Remaining)),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func FromTrades(trades []domain.Trade) []Trade {
	res := make([]Trade, len(trades))
	for i, t := range trades {
		res[i] = Trade{
			ID:         t.ID,
			Price:      decimal.NewFromInt(int64(t.Price)),
			Quantity:   decimal.NewFromInt(int64(t.Quantity)),
			MakerOrder: t.MakerID,
			TakerOrder: t.TakerID,
			TakerSide:  t.TakerSide,
			ExecutedAt: t.ExecutedAt,
		}
	}
	return res
}

func FromLevel(l domain.Level) Level {
	return Level{
		Price:    decimal.NewFromInt(int64(l.Price)),
		Quantity: decimal.NewFromInt(int64(l.Quantity)),
		Orders:   l.Orders,
	}
}

func FromSnapshot(snap *domain.BookSnapshot) GetOrderbookResponse {
	return GetOrderbookResponse{
		Symbol:    snap.Symbol,
		Bids:      fromLevels(snap.Bids),
		Asks:      fromLevels(snap.Asks),
		Timestamp: snap.Timestamp,
	}
}

func fromLevels(levels []domain.Level) []Level {
	res := make([]Level, len(levels))
	for i, l := range levels {
		res[i] = FromLevel(l)
	}
	return res
}
