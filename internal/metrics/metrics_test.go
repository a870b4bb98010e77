package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_CacheCounters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.CacheHit()
	c.CacheHit()
	c.CacheMiss()
	c.CacheError("set")
	c.CacheInvalidated(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheErrors.WithLabelValues("set")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.cacheInvalidations))
}

func TestCollector_RealtimeAndBroker(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.StreamOpened()
	c.StreamOpened()
	c.StreamClosed()
	c.EventDelivered()
	c.EventDropped()
	c.RecordPublish(nil)
	c.RecordPublish(errors.New("broker down"))
	c.RecordInvitationsExpired(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.realtimeStreams))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.realtimeEvents.WithLabelValues("delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.realtimeEvents.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.brokerPublishes.WithLabelValues("error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.invitationsExpired))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPRequest(http.MethodGet, "/api/v1/health", http.StatusOK, 5*time.Millisecond)
	c.CacheMiss()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "storefront_http_request_duration_seconds"))
	assert.True(t, strings.Contains(string(body), `storefront_cache_requests_total{result="miss"} 1`))
}
