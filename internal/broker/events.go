package broker

import (
	"context"

	"github.com/Rrens/storefront/internal/domain"
)

// Publisher is the write side of a message broker
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event any) error
}

// EventPublisher publishes order integration events
type EventPublisher struct {
	publisher Publisher
	observe   func(error)
}

// NewEventPublisher creates a new event publisher. observe, when set, is
// called with the outcome of every publish.
func NewEventPublisher(publisher Publisher, observe func(error)) *EventPublisher {
	return &EventPublisher{publisher: publisher, observe: observe}
}

// PublishOrderEvent publishes an order event keyed by order, so every event
// of one order lands on the same partition.
func (ep *EventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	err := ep.publisher.PublishEvent(ctx, orderKey(event), event)
	if ep.observe != nil {
		ep.observe(err)
	}
	return err
}

func orderKey(event domain.OrderEvent) string {
	return "order-" + event.OrderID.String()
}

// Noop drops every event; used when Kafka is disabled
type Noop struct{}

func (Noop) PublishOrderEvent(context.Context, domain.OrderEvent) error {
	return nil
}
