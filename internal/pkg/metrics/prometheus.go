package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vigil",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	// Event pipeline metrics
	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "bus",
			Name:      "events_published_total",
			Help:      "Total number of events published to the event bus",
		},
		[]string{"source", "action"},
	)

	eventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "bus",
			Name:      "events_dropped_total",
			Help:      "Total number of events dropped from slow subscriber queues",
		},
		[]string{"bus"},
	)

	eventsPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "engine",
			Name:      "events_persisted_total",
			Help:      "Total number of events written to the timeline store",
		},
	)

	persistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "engine",
			Name:      "persist_failures_total",
			Help:      "Total number of timeline store write failures",
		},
	)

	alertsFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "engine",
			Name:      "alerts_fired_total",
			Help:      "Total number of alerts fired by the rule engine",
		},
		[]string{"severity", "rule"},
	)

	// Dispatch metrics
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "dispatch",
			Name:      "notifications_total",
			Help:      "Total number of notifier invocations",
		},
		[]string{"notifier", "status"},
	)

	emailsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vigil",
			Subsystem: "dispatch",
			Name:      "emails_sent_total",
			Help:      "Total number of outbound batch emails",
		},
	)

	// Dashboard metrics
	websocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vigil",
			Subsystem: "dashboard",
			Name:      "websocket_clients",
			Help:      "Number of connected dashboard websocket clients",
		},
	)
)

// RecordEventPublished increments the published-events counter
func RecordEventPublished(source, action string) {
	eventsPublishedTotal.WithLabelValues(source, action).Inc()
}

// RecordEventsDropped adds to the dropped-events counter for a bus
func RecordEventsDropped(bus string, n int) {
	eventsDroppedTotal.WithLabelValues(bus).Add(float64(n))
}

// RecordEventPersisted increments the persisted-events counter
func RecordEventPersisted() {
	eventsPersistedTotal.Inc()
}

// RecordPersistFailure increments the store-failure counter
func RecordPersistFailure() {
	persistFailuresTotal.Inc()
}

// RecordAlertFired increments the fired-alerts counter
func RecordAlertFired(severity, rule string) {
	alertsFiredTotal.WithLabelValues(severity, rule).Inc()
}

// RecordNotification increments the notifier-invocation counter
func RecordNotification(notifier, status string) {
	notificationsTotal.WithLabelValues(notifier, status).Inc()
}

// RecordEmailSent increments the outbound-email counter
func RecordEmailSent() {
	emailsSentTotal.Inc()
}

// SetWebsocketClients sets the connected-clients gauge
func SetWebsocketClients(n int) {
	websocketClients.Set(float64(n))
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns an HTTP middleware recording request metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).
			Observe(time.Since(start).Seconds())
	})
}

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}
