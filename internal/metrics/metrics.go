// Package metrics exposes Prometheus instrumentation for the Pictor API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the HTTP surface.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploadBytes     prometheus.Counter
	loginFailures   prometheus.Counter
}

// New creates and registers the collectors on a fresh registry.
func New() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictor",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pictor",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		uploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pictor",
			Name:      "image_upload_bytes_total",
			Help:      "Total bytes accepted by the image upload endpoint.",
		}),
		loginFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pictor",
			Name:      "login_failures_total",
			Help:      "Total failed login attempts.",
		}),
	}

	return m, registry
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// AddUploadBytes records accepted upload volume.
func (m *Metrics) AddUploadBytes(n int64) {
	if n > 0 {
		m.uploadBytes.Add(float64(n))
	}
}

// IncLoginFailure records one failed login attempt.
func (m *Metrics) IncLoginFailure() {
	m.loginFailures.Inc()
}

// Handler returns the scrape handler for the given registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
