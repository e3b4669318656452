package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outbound HTTP client metrics.
var (
	clientInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sms_client_in_flight_requests",
		Help: "In-flight outbound HTTP requests.",
	})

	clientRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_client_requests_total",
			Help: "Total number of outbound HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	clientRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sms_client_request_duration_seconds",
			Help:    "Outbound HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	registerOnce sync.Once
)

// Init registers the client metrics in the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(clientInFlight, clientRequestsTotal, clientRequestDuration)
	})
}

// Handler exposes the default registry, for embedding into a diagnostics mux.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RequestStarted marks an outbound request as in flight. The returned func
// records the final status and duration.
func RequestStarted(method, path string) func(status int) {
	clientInFlight.Inc()
	start := time.Now()
	canonical := CanonicalPath(path)
	return func(status int) {
		clientInFlight.Dec()
		d := time.Since(start).Seconds()
		code := strconv.Itoa(status)
		clientRequestsTotal.WithLabelValues(method, canonical, code).Inc()
		clientRequestDuration.WithLabelValues(method, canonical, code).Observe(d)
	}
}

// CanonicalPath collapses record identifiers so metric cardinality stays
// bounded: /api/v1/safety/123 -> /api/v1/safety/:id.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	if len(parts) == 5 && parts[1] == "api" && parts[2] == "v1" && parts[3] == "safety" && parts[4] != "" && parts[4] != "history" {
		parts[4] = ":id"
		return strings.Join(parts, "/")
	}
	return path
}
