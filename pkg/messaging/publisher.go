package messaging

import (
	"context"
)

// OrdersCreatedSubject is the subject new order events are published on.
const OrdersCreatedSubject = "orders.created"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards every event. Wired when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
