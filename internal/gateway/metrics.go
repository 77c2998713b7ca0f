package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "azura"

// Metrics is the prometheus instrumentation for the analysis pipeline and
// the gateway itself. It owns a private registry so tests can create
// independent instances without collector collisions.
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal       *prometheus.CounterVec
	scrapedPostsTotal   *prometheus.CounterVec
	providerErrorsTotal prometheus.Counter
	requestDuration     *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "analyses_total",
				Help:      "Number of posts run through the analysis pipeline.",
			}, []string{"platform"},
		),
		scrapedPostsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "scraped_posts_total",
				Help:      "Number of posts collected, by platform.",
			}, []string{"platform"},
		),
		providerErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "provider_errors_total",
				Help:      "Number of failed LLM provider calls.",
			},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "Gateway request latency, by route.",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 5},
			}, []string{"route"},
		),
	}

	m.registry.MustRegister(
		m.analysesTotal,
		m.scrapedPostsTotal,
		m.providerErrorsTotal,
		m.requestDuration,
	)
	return m
}

// Handler serves the /metrics endpoint from the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordAnalysis counts one analyzed post.
func (m *Metrics) RecordAnalysis(platform string) {
	m.analysesTotal.WithLabelValues(platform).Inc()
}

// RecordScrapedPosts counts collected posts for a platform.
func (m *Metrics) RecordScrapedPosts(platform string, n int) {
	if n <= 0 {
		return
	}
	m.scrapedPostsTotal.WithLabelValues(platform).Add(float64(n))
}

// RecordProviderError counts one failed provider call.
func (m *Metrics) RecordProviderError() {
	m.providerErrorsTotal.Inc()
}

// instrument is a chi middleware observing request durations per route
// pattern. The pattern is read after the handler runs, once chi has
// matched the route.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
