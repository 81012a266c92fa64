package core

import "github.com/olyamironova/orderbook/internal/domain"

// priceLevel is the FIFO queue of orders resting at one price.
type priceLevel struct {
	price  domain.Price
	orders []*domain.Order
	total  domain.Quantity
}

func byPrice(a, b *priceLevel) bool {
	return a.price < b.price
}

func (l *priceLevel) push(o *domain.Order) {
	l.orders = append(l.orders, o)
	l.total += o.Quantity
}

func (l *priceLevel) front() *domain.Order {
	return l.orders[0]
}

// fill takes qty from the oldest order and drops it once nothing is left.
func (l *priceLevel) fill(qty domain.Quantity) {
	head := l.orders[0]
	head.Quantity -= qty
	l.total -= qty
	if head.Quantity == 0 {
		l.orders[0] = nil
		l.orders = l.orders[1:]
	}
}

func (l *priceLevel) empty() bool {
	return len(l.orders) == 0
}

func (l *priceLevel) level() domain.Level {
	return domain.Level{Price: l.price, Quantity: l.total, Orders: len(l.orders)}
}
