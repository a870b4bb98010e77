package realtime_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Rrens/storefront/internal/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToEveryStreamOfUser(t *testing.T) {
	hub := realtime.NewHub(4, nil)
	user, other := uuid.New(), uuid.New()

	first := hub.Connect(user)
	second := hub.Connect(user)
	stranger := hub.Connect(other)

	n := hub.Deliver(user, realtime.NewEvent(realtime.EventOrderNew, map[string]string{"id": "o-1"}))
	assert.Equal(t, 2, n)

	for _, s := range []*realtime.Stream{first, second} {
		select {
		case ev := <-s.Events():
			assert.Equal(t, realtime.EventOrderNew, ev.Name)
		default:
			t.Fatal("expected an event")
		}
	}

	select {
	case <-stranger.Events():
		t.Fatal("other user must not receive the event")
	default:
	}
}

func TestHub_NoStreamsDropsEvent(t *testing.T) {
	hub := realtime.NewHub(4, nil)

	assert.Equal(t, 0, hub.Deliver(uuid.New(), realtime.NewEvent(realtime.EventNotificationNew, nil)))
}

func TestHub_FullBufferDoesNotBlock(t *testing.T) {
	hub := realtime.NewHub(1, nil)
	user := uuid.New()
	s := hub.Connect(user)

	assert.Equal(t, 1, hub.Deliver(user, realtime.NewEvent("a", nil)))
	assert.Equal(t, 0, hub.Deliver(user, realtime.NewEvent("b", nil)))

	ev := <-s.Events()
	assert.Equal(t, "a", ev.Name)
}

func TestHub_Disconnect(t *testing.T) {
	hub := realtime.NewHub(2, nil)
	user := uuid.New()
	s := hub.Connect(user)
	require.Equal(t, 1, hub.Connections(user))

	hub.Disconnect(s)
	hub.Disconnect(s)

	assert.Equal(t, 0, hub.Connections(user))
	_, open := <-s.Events()
	assert.False(t, open)
	assert.Equal(t, 0, hub.Deliver(user, realtime.NewEvent("after", nil)))
}

func TestHub_ConcurrentPublishAndDisconnect(t *testing.T) {
	hub := realtime.NewHub(8, nil)
	user := uuid.New()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		s := hub.Connect(user)
		go func() {
			defer wg.Done()
			hub.Publish(context.Background(), user, realtime.NewEvent("tick", nil))
		}()
		go func() {
			defer wg.Done()
			hub.Disconnect(s)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Connections(user))
}
