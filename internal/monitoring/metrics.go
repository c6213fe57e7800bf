// Package monitoring - metrics.go exports prometheus collectors.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's prometheus collectors. Registered once at
// startup against the default registry.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	UpstreamErrors   *prometheus.CounterVec
	UsageEventsTotal *prometheus.CounterVec
	TokensTotal      *prometheus.CounterVec
}

// NewMetrics registers and returns the collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Requests by provider and status class.",
		}, []string{"provider", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "End-to-end request latency by provider.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"provider"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_upstream_errors_total",
			Help: "Forwarding failures by provider.",
		}, []string{"provider"}),
		UsageEventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_usage_events_total",
			Help: "Usage events emitted by provider.",
		}, []string{"provider"}),
		TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_tokens_total",
			Help: "Observed tokens by provider and direction.",
		}, []string{"provider", "direction"}),
	}
}
