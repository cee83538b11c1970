// Package tracing provides OpenTelemetry tracing for Warden decisions.
//
// When tracing is disabled a noop tracer is returned, so callers always
// create spans unconditionally:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "gatekeeper.check")
//	defer span.End()
//	tracing.SetDecisionAttributes(span, "block", "missing-prerequisites", "high")
//
// Spans are exported over OTLP gRPC. The exporter never blocks on connect, so
// an unreachable collector cannot delay a hook decision; Shutdown flushes
// within the configured timeout.
package tracing
