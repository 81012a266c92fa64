package domain

import "time"

// Level aggregates the resting orders at one price.
type Level struct {
	Price    Price    `json:"price"`
	Quantity Quantity `json:"quantity"`
	Orders   int      `json:"orders"`
}

type BookSnapshot struct {
	Symbol    string    `json:"symbol"`
	Bids      []Level   `json:"bids"`
	Asks      []Level   `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *BookSnapshot) DeepCopy() *BookSnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Bids = append([]Level(nil), s.Bids...)
	cp.Asks = append([]Level(nil), s.Asks...)
	return &cp
}

// Truncate returns a copy keeping at most limit levels per side.
// limit <= 0 keeps everything.
func (s *BookSnapshot) Truncate(limit int) *BookSnapshot {
	cp := s.DeepCopy()
	if cp == nil || limit <= 0 {
		return cp
	}
	if len(cp.Bids) > limit {
		cp.Bids = cp.Bids[:limit]
	}
	if len(cp.Asks) > limit {
		cp.Asks = cp.Asks[:limit]
	}
	return cp
}
