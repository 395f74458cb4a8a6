// Package events publishes committed ledger movements to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	TypePurchaseRecorded = "purchase.recorded"
	TypeSaleRecorded     = "sale.recorded"
)

// StockDelta is the signed stock change of one product.
type StockDelta struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	Created   bool   `json:"created,omitempty"`
}

type LedgerEvent struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Total      decimal.Decimal `json:"total"`
	SaleType   string          `json:"sale_type,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	Deltas     []StockDelta    `json:"deltas"`
}

type Publisher interface {
	Publish(ctx context.Context, ev LedgerEvent) error
	Close() error
}

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct{ w Writer }

func NewKafkaPublisher(w Writer) *KafkaPublisher { return &KafkaPublisher{w: w} }

// NewKafkaWriter builds a synchronous writer for the ledger topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
	}
}

// Publish keys the message by transaction id so all events of one
// transaction land on the same partition.
func (p *KafkaPublisher) Publish(ctx context.Context, ev LedgerEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ID),
		Value: b,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// Nop drops every event; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, LedgerEvent) error { return nil }
func (Nop) Close() error                               { return nil }
