package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Rrens/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	key   string
	event any
	err   error
}

func (c *capturePublisher) PublishEvent(_ context.Context, key string, event any) error {
	c.key = key
	c.event = event
	return c.err
}

func TestEventPublisher_KeysByOrder(t *testing.T) {
	capture := &capturePublisher{}
	var observed []error
	ep := NewEventPublisher(capture, func(err error) { observed = append(observed, err) })

	order := &domain.Order{ID: uuid.New(), WorkspaceID: uuid.New(), Status: domain.OrderPending, TotalAmount: decimal.NewFromInt(25)}
	event := domain.NewOrderEvent(domain.OrderEventCreated, order)

	require.NoError(t, ep.PublishOrderEvent(context.Background(), event))
	assert.Equal(t, "order-"+order.ID.String(), capture.key)
	assert.Equal(t, event, capture.event)
	assert.Equal(t, []error{nil}, observed)
}

func TestEventPublisher_ReportsFailure(t *testing.T) {
	capture := &capturePublisher{err: errors.New("leader not available")}
	var observed []error
	ep := NewEventPublisher(capture, func(err error) { observed = append(observed, err) })

	err := ep.PublishOrderEvent(context.Background(), domain.OrderEvent{OrderID: uuid.New()})
	assert.Error(t, err)
	require.Len(t, observed, 1)
	assert.Error(t, observed[0])
}

func TestNewMessage(t *testing.T) {
	event := domain.OrderEvent{OrderID: uuid.New(), EventType: domain.OrderEventStatusChanged, Status: domain.OrderShipped}

	msg, err := newMessage("order-1", event)
	require.NoError(t, err)
	assert.Equal(t, []byte("order-1"), msg.Key)

	var decoded domain.OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.OrderID, decoded.OrderID)
	assert.Equal(t, domain.OrderShipped, decoded.Status)

	_, err = newMessage("bad", make(chan int))
	assert.Error(t, err)
}
