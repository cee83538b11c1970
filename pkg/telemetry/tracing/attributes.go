package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on Warden spans.
const (
	AttrSession      = "warden.session_id"
	AttrRequestKind  = "warden.request.kind"
	AttrRequestID    = "warden.request.identifier"
	AttrRequestTool  = "warden.request.tool"
	AttrOutcome      = "warden.decision.outcome"
	AttrReason       = "warden.decision.reason"
	AttrRule         = "warden.decision.rule"
	AttrMissing      = "warden.decision.missing"
	AttrAdvisory     = "warden.decision.advisory"
	AttrTier         = "warden.tier"
	AttrScore        = "warden.score"
	AttrErrorMessage = "error.message"
)

// SetRequestAttributes sets request attributes on a span.
func SetRequestAttributes(span trace.Span, sessionID, kind, identifier, tool string) {
	span.SetAttributes(
		attribute.String(AttrSession, sessionID),
		attribute.String(AttrRequestKind, kind),
		attribute.String(AttrRequestID, identifier),
		attribute.String(AttrRequestTool, tool),
	)
}

// SetDecisionAttributes sets decision attributes on a span.
func SetDecisionAttributes(span trace.Span, outcome, reason, rule, tier string, missing []string, advisory bool) {
	span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.String(AttrReason, reason),
		attribute.String(AttrRule, rule),
		attribute.String(AttrTier, tier),
		attribute.StringSlice(AttrMissing, missing),
		attribute.Bool(AttrAdvisory, advisory),
	)
}
