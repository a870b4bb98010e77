package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rrens/storefront/internal/realtime"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// envelope is the wire form of a realtime event on the pub/sub channel
type envelope struct {
	UserID uuid.UUID       `json:"user_id"`
	Name   string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	At     time.Time       `json:"at"`
}

// EventBus relays realtime events between server instances. Publish writes
// to a Redis channel; Run delivers every received event to the local hub.
type EventBus struct {
	client  *Client
	channel string
	hub     *realtime.Hub
}

// NewEventBus creates a new Redis event bus
func NewEventBus(client *Client, channel string, hub *realtime.Hub) *EventBus {
	return &EventBus{client: client, channel: channel, hub: hub}
}

// Publish implements realtime.Publisher. A failed publish is logged and the
// event is lost.
func (b *EventBus) Publish(ctx context.Context, userID uuid.UUID, event realtime.Event) {
	payload, err := encodeEnvelope(userID, event)
	if err != nil {
		log.Warn().Err(err).Str("event", event.Name).Msg("failed to encode realtime event")
		return
	}

	if err := b.client.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", b.channel).Str("event", event.Name).Msg("failed to publish realtime event")
	}
}

// Run subscribes to the channel and blocks until ctx is cancelled
func (b *EventBus) Run(ctx context.Context) error {
	sub := b.client.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	log.Info().Str("channel", b.channel).Msg("realtime relay subscribed")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			userID, event, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				log.Warn().Err(err).Msg("discarding malformed realtime event")
				continue
			}
			b.hub.Deliver(userID, event)
		}
	}
}

func encodeEnvelope(userID uuid.UUID, event realtime.Event) ([]byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return json.Marshal(envelope{UserID: userID, Name: event.Name, Data: data, At: event.At})
}

func decodeEnvelope(payload []byte) (uuid.UUID, realtime.Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return uuid.Nil, realtime.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if env.UserID == uuid.Nil || env.Name == "" {
		return uuid.Nil, realtime.Event{}, fmt.Errorf("event missing user or name")
	}
	return env.UserID, realtime.Event{Name: env.Name, Data: env.Data, At: env.At}, nil
}
