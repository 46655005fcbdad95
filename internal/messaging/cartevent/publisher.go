package cartevent

import (
	"context"
	"encoding/json"

	"carts/internal/domain/cart"
)

// Sender abstracts the Kafka producer so the publisher can be exercised
// without a broker.
type Sender interface {
	Send(ctx context.Context, key string, payload []byte) error
}

// Publisher converts cart activity events into Kafka messages.
type Publisher struct {
	sender Sender
}

// NewPublisher constructs a Publisher.
func NewPublisher(sender Sender) *Publisher {
	return &Publisher{sender: sender}
}

// Publish pushes a cart activity event onto Kafka, keyed by customer so a
// customer's events stay ordered.
func (p *Publisher) Publish(ctx context.Context, event cart.ActivityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.sender.Send(ctx, event.CustomerID, payload)
}
