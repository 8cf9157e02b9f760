package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RateLimited         prometheus.Counter
	UpstreamDuration    *prometheus.HistogramVec
	ReviewsPosted       prometheus.Counter
	ReviewCommentsTotal prometheus.Counter
}

// NewMetrics registers the service collectors on a fresh registry so tests
// can build isolated instances.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prsentry_http_requests_total",
			Help: "Inbound HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prsentry_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prsentry_upstream_request_duration_seconds",
			Help:    "Duration of upstream API calls by provider.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"provider"}),
		ReviewsPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prsentry_reviews_posted_total",
			Help: "Pull request reviews posted to GitHub.",
		}),
		ReviewCommentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prsentry_review_comments_total",
			Help: "Validated model comments included in posted reviews.",
		}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RateLimited,
		m.UpstreamDuration,
		m.ReviewsPosted,
		m.ReviewCommentsTotal,
	)
	return m
}

// Handler exposes the registry in prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
