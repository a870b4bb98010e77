package redis

import (
	"encoding/json"
	"testing"

	"github.com/Rrens/storefront/internal/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RoundTrip(t *testing.T) {
	user := uuid.New()
	event := realtime.NewEvent(realtime.EventOrderStatusChanged, map[string]string{"status": "SHIPPED"})

	payload, err := encodeEnvelope(user, event)
	require.NoError(t, err)

	gotUser, gotEvent, err := decodeEnvelope(payload)
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)
	assert.Equal(t, realtime.EventOrderStatusChanged, gotEvent.Name)
	assert.True(t, event.At.Equal(gotEvent.At))

	raw, ok := gotEvent.Data.(json.RawMessage)
	require.True(t, ok)
	assert.JSONEq(t, `{"status":"SHIPPED"}`, string(raw))
}

func TestEnvelope_Malformed(t *testing.T) {
	_, _, err := decodeEnvelope([]byte("not json"))
	assert.Error(t, err)

	_, _, err = decodeEnvelope([]byte(`{"event":"order:new"}`))
	assert.Error(t, err)
}

func TestEscapePattern(t *testing.T) {
	assert.Equal(t, "workspace:1:", escapePattern("workspace:1:"))
	assert.Equal(t, `a\*b\?c\[d\]`, escapePattern("a*b?c[d]"))
}
