package cartevent

import (
	"context"
	"encoding/json"
	"log"

	"carts/internal/domain/cart"
	"carts/internal/kafka"
)

// Handler reacts to decoded cart activity events.
type Handler interface {
	HandleActivity(ctx context.Context, event cart.ActivityEvent) error
}

// HandlerFunc makes ordinary functions usable as activity handlers.
type HandlerFunc func(ctx context.Context, event cart.ActivityEvent) error

// HandleActivity implements Handler.
func (f HandlerFunc) HandleActivity(ctx context.Context, event cart.ActivityEvent) error {
	return f(ctx, event)
}

// decodeHandler adapts raw Kafka payloads to typed activity events.
// Malformed payloads are logged and dropped rather than retried forever.
func decodeHandler(handler Handler) kafka.MessageHandler {
	return kafka.HandlerFunc(func(ctx context.Context, value []byte) error {
		var event cart.ActivityEvent
		if err := json.Unmarshal(value, &event); err != nil {
			log.Printf("cart event consumer: decode error: %v", err)
			return nil
		}
		return handler.HandleActivity(ctx, event)
	})
}

// Consumer wraps the low-level Kafka consumer and decodes cart events.
type Consumer struct {
	consumer *kafka.Consumer
}

// NewConsumer wires the handler through the low-level consumer.
func NewConsumer(brokers []string, groupID, topic string, handler Handler) (*Consumer, error) {
	cons, err := kafka.NewConsumer(brokers, groupID, topic, decodeHandler(handler))
	if err != nil {
		return nil, err
	}
	return &Consumer{consumer: cons}, nil
}

// Start begins consuming events.
func (c *Consumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close cleans up resources.
func (c *Consumer) Close() error {
	return c.consumer.Close()
}
