// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors around one registry.
type Metrics struct {
	reg *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	QuizzesCreated prometheus.Counter
	Generations    *prometheus.CounterVec
	Attempts       *prometheus.CounterVec
	AttemptScore   prometheus.Histogram
	ActiveSessions prometheus.Gauge
	EventFailures  prometheus.Counter
}

// New registers all collectors on a fresh registry, plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quizcraft_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quizcraft_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		QuizzesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "quizcraft_quizzes_created_total",
			Help: "Quizzes stored.",
		}),
		Generations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quizcraft_generations_total",
			Help: "Question generation requests by outcome.",
		}, []string{"status"}),
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "quizcraft_attempts_total",
			Help: "Attempts persisted by submission path.",
		}, []string{"path"}),
		AttemptScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "quizcraft_attempt_score_percent",
			Help:    "Distribution of attempt scores.",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "quizcraft_active_sessions",
			Help: "Server-side attempt sessions not yet submitted.",
		}),
		EventFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "quizcraft_event_publish_failures_total",
			Help: "Domain events that could not be published.",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveAttempt records a persisted attempt.
func (m *Metrics) ObserveAttempt(path string, score float64) {
	m.Attempts.WithLabelValues(path).Inc()
	m.AttemptScore.Observe(score)
}
