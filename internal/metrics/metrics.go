// Package metrics provides Prometheus metrics for the face service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	matchDuration     prometheus.Histogram
	candidatesScored  prometheus.Counter
	candidatesSkipped prometheus.Counter
	matchesReturned   prometheus.Histogram

	embedRequests  prometheus.Counter
	embedFailures  prometheus.Counter
	detectRequests prometheus.Counter
}

// New creates a Metrics instance backed by its own registry, keeping the
// default Go collectors out of the scrape output.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		matchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time spent ranking candidates per match call.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}),
		candidatesScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Candidate embeddings compared against queries.",
		}),
		candidatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_skipped_total",
			Help:      "Candidates dropped from ranking for malformed embeddings.",
		}),
		matchesReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matches_returned",
			Help:      "Matches returned per match call.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		embedRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_requests_total",
			Help:      "Embedding generation requests forwarded to the inference backend.",
		}),
		embedFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_failures_total",
			Help:      "Embedding generation requests that failed.",
		}),
		detectRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detect_requests_total",
			Help:      "Face detection requests forwarded to the inference backend.",
		}),
	}
}

// Handler returns the /metrics scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request outcome.
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveMatch records the outcome of one ranking invocation.
func (m *Metrics) ObserveMatch(candidates, skipped, matches int, elapsed time.Duration) {
	m.matchDuration.Observe(elapsed.Seconds())
	m.candidatesScored.Add(float64(candidates))
	m.candidatesSkipped.Add(float64(skipped))
	m.matchesReturned.Observe(float64(matches))
}

// ObserveEmbed records one embedding generation attempt.
func (m *Metrics) ObserveEmbed(failed bool) {
	m.embedRequests.Inc()
	if failed {
		m.embedFailures.Inc()
	}
}

// ObserveDetect records one detection request.
func (m *Metrics) ObserveDetect() {
	m.detectRequests.Inc()
}
