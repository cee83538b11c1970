// Package telemetry groups Warden's observability packages.
//
//   - logging: slog construction, session context and secret redaction
//   - metrics: Prometheus decision and runtime metrics
//   - tracing: OpenTelemetry spans around decisions
//   - health: liveness and readiness endpoints for "warden serve"
//
// Hook invocations are short-lived processes that must keep stdout and
// stderr for the host, so logs go to a file and metrics are flushed to a
// node exporter textfile on exit. "warden serve" exposes the same metrics
// over HTTP.
package telemetry
