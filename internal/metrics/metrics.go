// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric the service records
type Collector struct {
	cacheRequests      *prometheus.CounterVec
	cacheErrors        *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	realtimeEvents     *prometheus.CounterVec
	realtimeStreams    prometheus.Gauge
	httpDuration       *prometheus.HistogramVec
	invitationsExpired prometheus.Counter
	brokerPublishes    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cache_requests_total",
			Help: "Read-through lookups by result",
		}, []string{"result"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cache_errors_total",
			Help: "Cache operations that failed and were skipped",
		}, []string{"op"}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cache_invalidations_total",
			Help: "Cache keys removed by write-path invalidation",
		}),
		realtimeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_realtime_events_total",
			Help: "Realtime events by delivery result",
		}, []string{"result"}),
		realtimeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_realtime_streams",
			Help: "Open realtime streams",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		invitationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_invitations_expired_total",
			Help: "Invitations marked EXPIRED by the expiry worker",
		}),
		brokerPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_broker_publishes_total",
			Help: "Order events published to the broker by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.cacheRequests,
		c.cacheErrors,
		c.cacheInvalidations,
		c.realtimeEvents,
		c.realtimeStreams,
		c.httpDuration,
		c.invitationsExpired,
		c.brokerPublishes,
	)

	return c
}

func (c *Collector) CacheHit() {
	c.cacheRequests.WithLabelValues("hit").Inc()
}

func (c *Collector) CacheMiss() {
	c.cacheRequests.WithLabelValues("miss").Inc()
}

func (c *Collector) CacheError(op string) {
	c.cacheErrors.WithLabelValues(op).Inc()
}

func (c *Collector) CacheInvalidated(n int) {
	c.cacheInvalidations.Add(float64(n))
}

func (c *Collector) EventDelivered() {
	c.realtimeEvents.WithLabelValues("delivered").Inc()
}

func (c *Collector) EventDropped() {
	c.realtimeEvents.WithLabelValues("dropped").Inc()
}

func (c *Collector) StreamOpened() {
	c.realtimeStreams.Inc()
}

func (c *Collector) StreamClosed() {
	c.realtimeStreams.Dec()
}

// RecordHTTPRequest records one served request under its route pattern
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordInvitationsExpired adds the number of invitations expired in one sweep
func (c *Collector) RecordInvitationsExpired(n int64) {
	c.invitationsExpired.Add(float64(n))
}

// RecordPublish records one broker publish attempt
func (c *Collector) RecordPublish(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.brokerPublishes.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
