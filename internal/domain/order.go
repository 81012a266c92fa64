package domain

import (
	"errors"
	"strings"
	"time"
)

type Side string
type OrderStatus string

// Price identifies a price level. Comparison is exact.
type Price int64

// Quantity is an order size. Stored quantities are never negative.
type Quantity int64

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	Open            OrderStatus = "OPEN"
	PartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	Filled          OrderStatus = "FILLED"
)

var (
	ErrInvalidSide     = errors.New("side must be BUY or SELL")
	ErrInvalidPrice    = errors.New("price must be > 0")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrOrderNotFound   = errors.New("order not found")
	ErrDuplicateOrder  = errors.New("order id already exists")

	// ErrQuantityOverflow rejects an order that could push its price level's
	// resting total past the int64 range.
	ErrQuantityOverflow = errors.New("quantity would overflow the price level total")
)

func ParseSide(s string) (Side, error) {
	side := Side(strings.ToUpper(strings.TrimSpace(s)))
	if !side.Valid() {
		return "", ErrInvalidSide
	}
	return side, nil
}

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Order is a live order. Quantity is what is left to fill.
type Order struct {
	ID       string   `json:"id"`
	Side     Side     `json:"side"`
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
}

// OrderRecord is the persisted view of an order kept by a repository.
type OrderRecord struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Price     Price       `json:"price"`
	Quantity  Quantity    `json:"quantity"`
	Remaining Quantity    `json:"remaining"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// StatusFor derives the status of an order of size total with remaining left.
func StatusFor(total, remaining Quantity) OrderStatus {
	switch {
	case remaining == 0:
		return Filled
	case remaining < total:
		return PartiallyFilled
	default:
		return Open
	}
}
