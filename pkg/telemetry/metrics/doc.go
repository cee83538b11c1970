// Package metrics exposes Prometheus metrics for Warden.
//
// Metrics:
//   - warden_decisions_total: decisions by outcome, reason, class and tier
//   - warden_decision_duration_seconds: load, decide and persist latency
//   - warden_advisory_blocks_total: blocks reported but not enforced
//   - warden_violations_total: recorded violations by kind and category
//   - warden_storage_faults_total: state store failures by operation
//   - warden_catalog_reloads_total: catalog loads by result
//   - warden_catalog_tiers: tiers in the active catalog
//   - warden_trail_records_dropped_total: trail records lost to a full queue
//   - warden_trail_records_pruned_total: trail records removed by retention
//
// A nil *Collector is valid and records nothing, so components can be built
// without metrics.
//
// Hook commands are short-lived; instead of serving an endpoint they write
// the registry to a textfile for a node exporter textfile collector:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	defer collector.WriteTextfile(cfg.Telemetry.Metrics.TextfilePath)
//
// Long-running processes mount Handler instead.
package metrics
