// Package policy implements the tiered workflow decision engine.
//
// # Overview
//
// Decide is a pure function of a request, the session's current state, the
// declared rules and the tier catalog. It returns the decision together with
// the proposed next state; it never performs I/O and never writes durable
// state. Persisting the proposal is the job of session.Manager.
//
// Requests are classified by kind through Rules.Classify:
//
//   - read: observes the workspace (ReadKinds)
//   - orchestrate: invokes a skill or agent (OrchestrationKinds)
//   - mutate: changes the workspace (MutateKinds and every unlisted kind)
//
// # Rule Order
//
// Rules are evaluated in a fixed order and the first match decides:
//
//  1. Entry gate: the declared gate signature is always allowed and marks the
//     gate as passed.
//  2. Step recognition: a request matching a catalog step (or the score step)
//     is allowed and recorded. A carried score resolves the tier.
//  3. Gate enforcement: before the gate or any step, everything is blocked.
//  4. Tier resolution: without a tier, reads and orchestration are allowed
//     and mutations are blocked.
//  5. Direct actions: tiers that allow direct actions allow everything.
//  6. Prerequisites: mutations are blocked until every required step of the
//     tier has been executed.
//
// Blocks are ordinary outcomes carried by Decision, never errors.
//
// # Scores
//
// A score resolves the tier once per cycle. Later scores are ignored with a
// tier-locked violation. Scores that are not finite, or that fall outside
// every tier range, leave the tier unresolved and record
// score-out-of-range.
//
// # Usage
//
//	rules := policy.DefaultRules()
//	req := policy.Request{Kind: policy.KindMutate, Tool: "Edit", At: time.Now()}
//
//	res := policy.Decide(req, state, rules, catalog)
//	if !res.Decision.Allowed() {
//	    fmt.Println(res.Decision.Reason, res.Decision.Missing)
//	}
//	// res.Next is a proposal: persist it with session.Manager.Apply.
//
// Example:
//
//	// tiers: low [0,30] direct actions; high [70,100] requires phase-3-planner
//	Decide(invoke-gate:adaptive-meta-orchestrator)          -> allow
//	Decide(invoke-agent:phase-1b-complexity-scorer, 85)     -> allow-and-record (tier high)
//	Decide(mutate)                                          -> block missing-prerequisites [phase-3-planner]
//	Decide(invoke-agent:phase-3-planner)                    -> allow-and-record
//	Decide(mutate)                                          -> allow
package policy
