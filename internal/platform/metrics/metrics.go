package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics shared by all handlers.
type Metrics struct {
	EndpointLatency *prometheus.HistogramVec
	Responses       *prometheus.CounterVec
}

// New creates and registers the HTTP metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the HTTP metrics with reg. Tests pass a fresh
// registry to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EndpointLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onboarding_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route pattern and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Responses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_http_responses_total",
			Help: "HTTP responses by route pattern and status class",
		}, []string{"method", "route", "class"}),
	}
}

// ObserveEndpointLatency records one request.
func (m *Metrics) ObserveEndpointLatency(method, route, class string, seconds float64) {
	m.EndpointLatency.WithLabelValues(method, route).Observe(seconds)
	m.Responses.WithLabelValues(method, route, class).Inc()
}
