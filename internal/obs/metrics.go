package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets, // [0.005..10]
		},
		[]string{"method", "path", "status"},
	)

	authDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_denials_total",
			Help: "Authorization denials by kind.",
		},
		[]string{"kind"},
	)

	auditAppendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_append_failures_total",
		Help: "Audit entries that could not be persisted.",
	})
)

// Init registers the metrics with the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
		authDenialsTotal, auditAppendFailures)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// AuthDenied counts one authorization denial. kind is the short error kind,
// e.g. "unauthenticated" or "permission_denied".
func AuthDenied(kind string) {
	authDenialsTotal.WithLabelValues(kind).Inc()
}

// AuditAppendFailed counts one lost audit entry.
func AuditAppendFailed() {
	auditAppendFailures.Inc()
}

// Instrument measures RPS, latency and in-flight count for next.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses resource ids so metric labels stay low-cardinality:
// /v1/companies/01H... becomes /v1/companies/:id. Paths that do not match a
// known collection are returned as-is.
func CanonicalPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) < 3 || parts[0] != "v1" {
		return p
	}
	switch parts[1] {
	case "companies", "deals", "ndas", "users":
	default:
		return p
	}
	switch len(parts) {
	case 3:
		return "/" + parts[0] + "/" + parts[1] + "/:id"
	case 4:
		return "/" + parts[0] + "/" + parts[1] + "/:id/" + parts[3]
	}
	return p
}

// statusWriter records the response code for the metrics labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
