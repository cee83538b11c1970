package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/warden/pkg/config"
)

// RuntimeMetrics tracks catalog, storage and trail health.
type RuntimeMetrics struct {
	storageFaults  *prometheus.CounterVec
	catalogReloads *prometheus.CounterVec
	catalogTiers   prometheus.Gauge
	trailDropped   prometheus.Counter
	trailPruned    prometheus.Counter
}

// NewRuntimeMetrics creates and registers runtime metrics.
func NewRuntimeMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuntimeMetrics {
	rm := &RuntimeMetrics{
		storageFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "storage_faults_total",
				Help:      "Session state store failures",
			},
			[]string{"op"},
		),
		catalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "catalog_reloads_total",
				Help:      "Tier catalog load attempts",
			},
			[]string{"result"},
		),
		catalogTiers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "catalog_tiers",
				Help:      "Number of tiers in the active catalog",
			},
		),
		trailDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "trail_records_dropped_total",
				Help:      "Decision trail records dropped because the queue was full",
			},
		),
		trailPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "trail_records_pruned_total",
				Help:      "Decision trail records removed by retention",
			},
		),
	}

	registry.MustRegister(
		rm.storageFaults,
		rm.catalogReloads,
		rm.catalogTiers,
		rm.trailDropped,
		rm.trailPruned,
	)

	return rm
}
