// Package kafka publishes executed trades to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/olyamironova/orderbook/internal/domain"
	"github.com/olyamironova/orderbook/internal/port"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

var _ port.TradePublisher = (*Publisher)(nil)

// TradeEvent is the message value written for every trade.
type TradeEvent struct {
	Symbol string `json:"symbol"`
	domain.Trade
}

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// PublishTrades sends one message per trade, keyed by symbol so a symbol's
// trades stay on one partition in execution order.
func (p *Publisher) PublishTrades(ctx context.Context, symbol string, trades []domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msgs := make([]*sarama.ProducerMessage, 0, len(trades))
	for _, t := range trades {
		b, err := json.Marshal(TradeEvent{Symbol: symbol, Trade: t})
		if err != nil {
			return fmt.Errorf("kafka: encode trade %s: %w", t.ID, err)
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(symbol),
			Value: sarama.ByteEncoder(b),
		})
	}
	if err := p.producer.SendMessages(msgs); err != nil {
		return fmt.Errorf("kafka: publish %d trades: %w", len(msgs), err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// NewSyncProducer connects a SyncProducer that waits for all in-sync
// replicas, retrying the connection until ctx is done.
func NewSyncProducer(ctx context.Context, brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	var err error
	for i := 0; i < connectAttempts; i++ {
		var prod sarama.SyncProducer
		prod, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			return prod, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	return nil, fmt.Errorf("kafka: start producer after %d attempts: %w", connectAttempts, err)
}
