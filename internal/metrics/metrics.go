// Package metrics exposes the Prometheus collectors shared by the provider
// adapters, the resolver and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ProviderRequests counts outbound catalog requests by provider and outcome
	// ("ok", "error", "rejected").
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wepick_provider_requests_total",
			Help: "Total number of requests sent to external catalog providers",
		},
		[]string{"provider", "outcome"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wepick_provider_request_duration_seconds",
			Help:    "Latency of external catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// CircuitBreakerState is 0 when closed, 1 when half-open and 2 when open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wepick_circuit_breaker_state",
			Help: "Current circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Resolutions counts recommendation resolutions by route ("general",
	// "anime") and outcome ("strict", "weakened", "empty").
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wepick_resolutions_total",
			Help: "Total number of recommendation resolutions",
		},
		[]string{"route", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wepick_http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveProviderRequest records one outbound request.
func ObserveProviderRequest(provider, outcome string, duration time.Duration) {
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// ObserveHTTPRequest records one inbound request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
