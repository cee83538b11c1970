// Package gatekeeper runs one Warden decision end to end.
//
// # Overview
//
// A Gatekeeper serializes work per session, loads the session state, asks
// the policy engine for a decision, persists the proposed state in one write
// and then reports the decision to the trail, metrics and tracing. Blocks are
// returned as part of the Verdict; only storage faults are returned as
// errors.
//
// In advisory mode a block is still recorded as a block, but
// Verdict.Proceed reports true and Verdict.Advisory is set, so the host can
// warn instead of stopping the action.
//
// # Usage
//
//	gk := gatekeeper.New(manager, holder, rules,
//	    gatekeeper.WithTrail(rec),
//	    gatekeeper.WithMetrics(collector),
//	    gatekeeper.WithTracer(tracer),
//	)
//
//	gk.Begin(ctx, sessionID) // new interaction cycle
//
//	verdict, err := gk.Check(ctx, sessionID, req)
//	if err != nil {
//	    // storage fault: verdict.Decision is the decision that could not be
//	    // persisted, if one was reached. Fail safe on anything but reads.
//	}
//	if !verdict.Proceed() {
//	    // report verdict.Decision.Explanation and Missing to the host
//	}
//
// Scores delivered outside of a step invocation go through SupplyScore, and
// State returns the stored state without modifying it.
//
// Example:
//
//	gk.Check(ctx, "s1", policy.Request{Kind: "mutate", Tool: "Edit"})
//	// Verdict{Decision: block missing-entry-gate, Advisory: false}
//	gk.Check(ctx, "s1", policy.Request{Kind: "invoke-gate", Identifier: "adaptive-meta-orchestrator"})
//	// Verdict{Decision: allow (entry-gate)}
//
// # Thread Safety
//
// Check, SupplyScore and Begin may be called concurrently; decisions on one
// session are serialized and decisions on different sessions run in
// parallel.
package gatekeeper
