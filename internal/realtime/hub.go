// Package realtime delivers push events to the open streams of a user.
// Delivery is best-effort: events for users with no open stream are dropped
// and a stream whose buffer is full skips the event.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event names pushed to clients
const (
	EventOrderNew           = "order:new"
	EventOrderStatusChanged = "order:status:changed"
	EventNotificationNew    = "notification:new"
)

// Event is a named payload pushed to a user
type Event struct {
	Name string    `json:"event"`
	Data any       `json:"data"`
	At   time.Time `json:"at"`
}

// NewEvent stamps an event with the current time
func NewEvent(name string, data any) Event {
	return Event{Name: name, Data: data, At: time.Now().UTC()}
}

// Publisher sends an event to every open stream of a user
type Publisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event Event)
}

// Recorder observes delivery outcomes
type Recorder interface {
	EventDelivered()
	EventDropped()
	StreamOpened()
	StreamClosed()
}

// Stream is one open client connection
type Stream struct {
	id     uint64
	userID uuid.UUID
	events chan Event
}

// Events yields pushed events until the stream is disconnected
func (s *Stream) Events() <-chan Event {
	return s.events
}

// UserID returns the stream owner
func (s *Stream) UserID() uuid.UUID {
	return s.userID
}

// Hub is the in-process registry of open streams keyed by user
type Hub struct {
	mu       sync.RWMutex
	streams  map[uuid.UUID]map[uint64]*Stream
	nextID   uint64
	buffer   int
	recorder Recorder
}

// NewHub creates a hub whose streams buffer up to buffer events
func NewHub(buffer int, recorder Recorder) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		streams:  make(map[uuid.UUID]map[uint64]*Stream),
		buffer:   buffer,
		recorder: recorder,
	}
}

// Connect registers a new stream for userID
func (h *Hub) Connect(userID uuid.UUID) *Stream {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Stream{id: h.nextID, userID: userID, events: make(chan Event, h.buffer)}
	if h.streams[userID] == nil {
		h.streams[userID] = make(map[uint64]*Stream)
	}
	h.streams[userID][s.id] = s

	if h.recorder != nil {
		h.recorder.StreamOpened()
	}
	return s
}

// Disconnect unregisters a stream and closes its channel. Safe to call twice.
func (h *Hub) Disconnect(s *Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()

	byID, ok := h.streams[s.userID]
	if !ok {
		return
	}
	if _, ok := byID[s.id]; !ok {
		return
	}
	delete(byID, s.id)
	if len(byID) == 0 {
		delete(h.streams, s.userID)
	}
	close(s.events)

	if h.recorder != nil {
		h.recorder.StreamClosed()
	}
}

// Publish implements Publisher for a single process
func (h *Hub) Publish(_ context.Context, userID uuid.UUID, event Event) {
	h.Deliver(userID, event)
}

// Deliver pushes event to every local stream of userID without blocking and
// returns how many streams accepted it.
func (h *Hub) Deliver(userID uuid.UUID, event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, s := range h.streams[userID] {
		select {
		case s.events <- event:
			delivered++
			if h.recorder != nil {
				h.recorder.EventDelivered()
			}
		default:
			log.Warn().Str("user_id", userID.String()).Str("event", event.Name).Msg("realtime stream buffer full, event dropped")
			if h.recorder != nil {
				h.recorder.EventDropped()
			}
		}
	}
	if len(h.streams[userID]) == 0 && h.recorder != nil {
		h.recorder.EventDropped()
	}
	return delivered
}

// Connections returns the number of open streams of userID
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[userID])
}

// PublishAll sends the same event to several users
func PublishAll(ctx context.Context, p Publisher, userIDs []uuid.UUID, event Event) {
	for _, id := range userIDs {
		p.Publish(ctx, id, event)
	}
}

// Discard is a Publisher that drops every event
type Discard struct{}

func (Discard) Publish(context.Context, uuid.UUID, Event) {}
