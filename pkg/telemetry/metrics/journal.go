package metrics

import (
	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// JournalMetrics tracks the exchange journal.
//
// Metrics:
//   - journal_writes_total: record writes by result (stored, dropped, failed)
//   - journal_pruned_total: records removed by retention
type JournalMetrics struct {
	writes *prometheus.CounterVec
	pruned prometheus.Counter
}

// NewJournalMetrics creates and registers journal metrics with the provided registry.
func NewJournalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JournalMetrics {
	jm := &JournalMetrics{
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_writes_total",
				Help:      "Total number of journal record writes by result",
			},
			[]string{"result"},
		),

		pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "journal_pruned_total",
				Help:      "Total number of journal records removed by retention",
			},
		),
	}

	registry.MustRegister(jm.writes, jm.pruned)

	return jm
}

// RecordWrite records one journal write result.
func (jm *JournalMetrics) RecordWrite(result string) {
	jm.writes.WithLabelValues(result).Inc()
}

// RecordPrune records deleted records.
func (jm *JournalMetrics) RecordPrune(deleted int64) {
	if deleted > 0 {
		jm.pruned.Add(float64(deleted))
	}
}
