package domain

import "time"

// Trade is one match between a resting maker and an incoming taker.
// Price is always the maker's price.
type Trade struct {
	ID         string    `json:"id"`
	Price      Price     `json:"price"`
	Quantity   Quantity  `json:"quantity"`
	MakerID    string    `json:"maker_id"`
	TakerID    string    `json:"taker_id"`
	TakerSide  Side      `json:"taker_side"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Execution is the outcome of placing one order.
type Execution struct {
	Symbol    string
	Order     Order // after matching; Quantity is what rests in the book
	Requested Quantity
	Trades    []Trade
	PlacedAt  time.Time
}

func (e *Execution) Filled() Quantity {
	var q Quantity
	for _, t := range e.Trades {
		q += t.Quantity
	}
	return q
}

func (e *Execution) Status() OrderStatus {
	return StatusFor(e.Requested, e.Order.Quantity)
}
