package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/warden/pkg/config"
)

// DecisionMetrics tracks decision outcomes.
type DecisionMetrics struct {
	decisionsTotal   *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
	advisoryBlocks   *prometheus.CounterVec
	violationsTotal  *prometheus.CounterVec
}

// NewDecisionMetrics creates and registers decision metrics.
func NewDecisionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DecisionMetrics {
	dm := &DecisionMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "decisions_total",
				Help:      "Total number of decisions",
			},
			[]string{"outcome", "reason", "class", "tier"},
		),

		decisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "decision_duration_seconds",
				Help:      "Duration of load, decide and persist in seconds",
				// Dominated by state I/O: 50µs to ~100ms
				Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
			},
			[]string{"outcome"},
		),

		advisoryBlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "advisory_blocks_total",
				Help:      "Blocks reported as warnings because enforcement is advisory",
			},
			[]string{"reason"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "violations_total",
				Help:      "Total number of recorded violations",
			},
			[]string{"kind", "category"},
		),
	}

	registry.MustRegister(
		dm.decisionsTotal,
		dm.decisionDuration,
		dm.advisoryBlocks,
		dm.violationsTotal,
	)

	return dm
}

// Record records one decision.
func (dm *DecisionMetrics) Record(outcome, reason, class, tier string, advisory bool, duration time.Duration) {
	dm.decisionsTotal.WithLabelValues(outcome, reason, class, tier).Inc()
	dm.decisionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if advisory && outcome == "block" {
		dm.advisoryBlocks.WithLabelValues(reason).Inc()
	}
}
