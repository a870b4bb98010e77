package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Rrens/storefront/internal/realtime"
	"github.com/gin-contrib/sse"
	"github.com/rs/zerolog/log"
)

const defaultHeartbeat = 25 * time.Second

// StreamHandler serves the Server-Sent Events channel
type StreamHandler struct {
	hub       *realtime.Hub
	heartbeat time.Duration
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *realtime.Hub, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &StreamHandler{hub: hub, heartbeat: heartbeat}
}

// Stream holds the connection open and writes every event pushed to the
// caller until the client goes away. Must not run behind a write timeout.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// the server WriteTimeout would cut the stream
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Debug().Err(err).Msg("failed to clear write deadline")
	}

	stream := h.hub.Connect(userID)
	defer h.hub.Disconnect(stream)

	w.Header().Set("Content-Type", sse.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, rc, sse.Event{Event: "connected", Data: map[string]string{"user_id": userID.String()}}); err != nil {
		return
	}

	log.Debug().Str("user_id", userID.String()).Msg("stream opened")
	defer log.Debug().Str("user_id", userID.String()).Msg("stream closed")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-stream.Events():
			if !ok {
				return
			}
			if err := writeEvent(w, rc, sse.Event{Event: event.Name, Data: event}); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w io.Writer, rc *http.ResponseController, event sse.Event) error {
	if err := sse.Encode(w, event); err != nil {
		log.Warn().Err(err).Str("event", event.Event).Msg("failed to encode stream event")
		return err
	}
	return rc.Flush()
}
