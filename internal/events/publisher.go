package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const OrderCompletedType = "order.completed"

type OrderCompleted struct {
	Type        string    `json:"type"`
	OrderID     uint      `json:"order_id"`
	PublicID    string    `json:"public_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uint      `json:"user_id"`
	Total       string    `json:"total"`
	ItemCount   int       `json:"item_count"`
	Failures    int       `json:"failures"`
	CompletedAt time.Time `json:"completed_at"`
}

type Publisher interface {
	PublishOrderCompleted(ctx context.Context, event OrderCompleted) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) PublishOrderCompleted(ctx context.Context, event OrderCompleted) error {
	event.Type = OrderCompletedType
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// keyed by order so every event for one order lands on one partition
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PublicID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(OrderCompletedType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCompleted(context.Context, OrderCompleted) error { return nil }

func (NoopPublisher) Close() error { return nil }
