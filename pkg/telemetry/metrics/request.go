package metrics

import (
	"time"

	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RelayMetrics tracks inbound relay requests.
//
// Metrics:
//   - relay_requests_total: requests by outcome and status class
//   - relay_request_duration_seconds: handling time by outcome
//   - relay_materialized_entries: query entries per request
type RelayMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	entries         prometheus.Histogram
}

// NewRelayMetrics creates and registers relay metrics with the provided registry.
func NewRelayMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RelayMetrics {
	rm := &RelayMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of relay requests by outcome",
			},
			[]string{"outcome", "status_class"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of relay requests in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"outcome"},
		),

		entries: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "materialized_entries",
				Help:      "Number of query entries materialized per request",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
			},
		),
	}

	registry.MustRegister(
		rm.requestsTotal,
		rm.requestDuration,
		rm.entries,
	)

	return rm
}

// RecordRequest records metrics for a completed relay request.
func (rm *RelayMetrics) RecordRequest(outcome, statusClass string, duration time.Duration, entries int) {
	rm.requestsTotal.WithLabelValues(outcome, statusClass).Inc()
	rm.requestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	rm.entries.Observe(float64(entries))
}
