package policy

import (
	"fmt"
	"strings"
	"time"

	"mercator-hq/warden/pkg/session"
)

// Class is the behavioral category of a request.
type Class string

const (
	// ClassRead is information gathering with no side effects.
	ClassRead Class = "read"

	// ClassMutate has observable side effects outside the engine.
	ClassMutate Class = "mutate"

	// ClassOrchestrate invokes an agent or skill that is not a tracked step.
	ClassOrchestrate Class = "orchestrate"
)

// Valid reports whether c is a known class.
func (c Class) Valid() bool {
	switch c {
	case ClassRead, ClassMutate, ClassOrchestrate:
		return true
	}
	return false
}

// Outcome is the result type of a decision.
type Outcome string

const (
	OutcomeAllow          Outcome = "allow"
	OutcomeAllowAndRecord Outcome = "allow-and-record"
	OutcomeBlock          Outcome = "block"
)

// Block reasons.
const (
	ReasonMissingEntryGate     = "missing-entry-gate"
	ReasonTierUndetermined     = "tier-undetermined"
	ReasonMissingPrerequisites = "missing-prerequisites"
)

// Violation kinds recorded for tier resolution anomalies.
const (
	KindCatalogUnavailable = "catalog-unavailable"
	KindScoreOutOfRange    = "score-out-of-range"
	KindAmbiguousTier      = "ambiguous-tier"
	KindTierLocked         = "tier-locked"
	KindTierUnknown        = "tier-unknown"
)

// Rule names identify which rule produced a decision.
const (
	RuleEntryGate      = "entry-gate"
	RuleStep           = "step"
	RuleGate           = "gate-enforcement"
	RuleTierResolution = "tier-resolution"
	RuleDirectActions  = "direct-actions"
	RulePrerequisites  = "prerequisites"
)

// Request is a single requested action.
type Request struct {
	// Kind is the symbolic action category, e.g. "read" or "invoke-agent".
	Kind string

	// Identifier names the invoked skill or agent; empty otherwise.
	Identifier string

	// Score is the complexity score carried by the request, if any.
	Score *float64

	// Tool is the host tool name. Recorded for audit only.
	Tool string

	// At is the time the request was received.
	At time.Time
}

// Action renders the request for violation logs.
func (r Request) Action() string {
	if r.Identifier == "" {
		return r.Kind
	}
	return r.Kind + ":" + r.Identifier
}

// Decision is the engine's verdict on a request.
type Decision struct {
	Outcome     Outcome
	Rule        string
	Step        string
	Reason      string
	Missing     []string
	Explanation string
	Class       Class
	Category    session.Category
	Tier        string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome != OutcomeBlock
}

// String returns a compact rendering used in logs and CLI output.
func (d Decision) String() string {
	switch d.Outcome {
	case OutcomeAllowAndRecord:
		return fmt.Sprintf("allow-and-record(%s)", d.Step)
	case OutcomeBlock:
		return fmt.Sprintf("block(%s, [%s])", d.Reason, strings.Join(d.Missing, ", "))
	default:
		return string(d.Outcome)
	}
}

// Result pairs a decision with the proposed next session state.
type Result struct {
	Decision Decision
	Next     *session.State
}
