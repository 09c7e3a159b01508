// Package metrics exposes Prometheus metrics for the rewrite pipeline and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/resume-tailor/internal/rewriting"
)

const namespace = "resume_tailor"

var _ rewriting.Observer = (*Metrics)(nil)

// Metrics owns a private registry so tests and multiple servers never
// collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
	rateLimited     prometheus.Counter

	bulletsTotal       *prometheus.CounterVec
	candidatesRejected prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)
	rateLimited := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)
	bulletsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewrite",
			Name:      "bullets_total",
			Help:      "Bullets processed by outcome.",
		},
		[]string{"outcome"},
	)
	candidatesRejected := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rewrite",
			Name:      "candidates_rejected_total",
			Help:      "Candidates that failed validation.",
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		rateLimited,
		bulletsTotal,
		candidatesRejected,
	)

	return &Metrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		rateLimited:        rateLimited,
		bulletsTotal:       bulletsTotal,
		candidatesRejected: candidatesRejected,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BulletProcessed counts one bullet outcome.
func (m *Metrics) BulletProcessed(outcome rewriting.Outcome) {
	m.bulletsTotal.WithLabelValues(string(outcome)).Inc()
}

// CandidatesRejected adds n rejected candidates.
func (m *Metrics) CandidatesRejected(n int) {
	if n <= 0 {
		return
	}
	m.candidatesRejected.Add(float64(n))
}

// RateLimited counts one rejected request.
func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

// Middleware records count, latency and in-flight gauge per request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(recorder.statusCode)).Inc()
		m.requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
