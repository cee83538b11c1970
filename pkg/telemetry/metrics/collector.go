package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/warden/pkg/config"
)

// Collector owns the Warden metric families and their registry.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	decisions *DecisionMetrics
	runtime   *RuntimeMetrics
}

// NewCollector creates a collector registering into registry. A nil registry
// gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Collector{
		config:    cfg,
		registry:  registry,
		decisions: NewDecisionMetrics(cfg, registry),
		runtime:   NewRuntimeMetrics(cfg, registry),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordDecision records one decision.
func (c *Collector) RecordDecision(outcome, reason, class, tier string, advisory bool, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.decisions.Record(outcome, reason, class, tier, advisory, duration)
}

// RecordViolation records a violation appended to a session.
func (c *Collector) RecordViolation(kind, category string) {
	if !c.enabled() {
		return
	}
	c.decisions.violationsTotal.WithLabelValues(kind, category).Inc()
}

// RecordStorageFault records a state store failure.
func (c *Collector) RecordStorageFault(op string) {
	if !c.enabled() {
		return
	}
	c.runtime.storageFaults.WithLabelValues(op).Inc()
}

// RecordCatalogReload records a catalog load attempt.
func (c *Collector) RecordCatalogReload(err error, tiers int) {
	if !c.enabled() {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	} else {
		c.runtime.catalogTiers.Set(float64(tiers))
	}
	c.runtime.catalogReloads.WithLabelValues(result).Inc()
}

// RecordTrailDropped records trail records dropped by a full queue.
func (c *Collector) RecordTrailDropped(n int) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.runtime.trailDropped.Add(float64(n))
}

// RecordTrailPruned records trail records removed by retention.
func (c *Collector) RecordTrailPruned(n int64) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.runtime.trailPruned.Add(float64(n))
}

// WriteTextfile writes the registry in Prometheus text format to path,
// replacing the file atomically. An empty path is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if !c.enabled() || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
