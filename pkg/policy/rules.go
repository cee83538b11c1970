package policy

import (
	"errors"
	"fmt"
	"strings"

	"mercator-hq/warden/pkg/tier"
)

// Default action kinds.
const (
	KindRead        = "read"
	KindMutate      = "mutate"
	KindInvokeAgent = "invoke-agent"
	KindInvokeGate  = "invoke-gate"
)

// Signature is a declared predicate over a request's kind and identifier.
// An empty Identifier matches any identifier of the kind.
type Signature struct {
	Kind       string
	Identifier string
	Aliases    []string
}

// Matches reports whether req satisfies the signature.
func (s Signature) Matches(req Request) bool {
	if s.Kind == "" || Normalize(req.Kind) != Normalize(s.Kind) {
		return false
	}
	if s.Identifier == "" {
		return true
	}
	id := Normalize(req.Identifier)
	if id == Normalize(s.Identifier) {
		return true
	}
	for _, alias := range s.Aliases {
		if id == Normalize(alias) {
			return true
		}
	}
	return false
}

// String renders the signature.
func (s Signature) String() string {
	if s.Identifier == "" {
		return s.Kind
	}
	return s.Kind + ":" + s.Identifier
}

// Normalize canonicalizes kinds and identifiers for comparison: surrounding
// space is trimmed, letters are lowercased and underscores become dashes.
func Normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}

// Rules are the declared signatures and classifications the engine applies.
type Rules struct {
	EntryGate Signature

	// StepKind is the request kind under which steps are invoked.
	StepKind string

	// ScoreStep is the step that carries the complexity score. It is always
	// recognized, whether or not the catalog lists it.
	ScoreStep string

	ReadKinds          []string
	MutateKinds        []string
	OrchestrationKinds []string

	// DefaultClass applies to kinds not listed in any class.
	DefaultClass Class

	// MaxViolations caps the proposed state's violation log.
	MaxViolations int
}

// DefaultRules returns the rules used when none are configured.
func DefaultRules() Rules {
	return Rules{
		EntryGate: Signature{
			Kind:       KindInvokeGate,
			Identifier: "adaptive-meta-orchestrator",
		},
		StepKind:           KindInvokeAgent,
		ScoreStep:          "phase-1b-complexity-scorer",
		ReadKinds:          []string{KindRead},
		MutateKinds:        []string{KindMutate},
		OrchestrationKinds: []string{KindInvokeAgent, KindInvokeGate},
		DefaultClass:       ClassMutate,
		MaxViolations:      50,
	}
}

// Validate checks that the rules are usable.
func (r Rules) Validate() error {
	var errs []error
	if r.EntryGate.Kind == "" {
		errs = append(errs, errors.New("entry gate kind is required"))
	}
	if r.StepKind == "" {
		errs = append(errs, errors.New("step kind is required"))
	}
	if r.ScoreStep == "" {
		errs = append(errs, errors.New("score step is required"))
	}
	if r.DefaultClass != "" && !r.DefaultClass.Valid() {
		errs = append(errs, fmt.Errorf("invalid default class %q", r.DefaultClass))
	}

	seen := make(map[string]Class)
	for class, kinds := range map[Class][]string{
		ClassRead:        r.ReadKinds,
		ClassMutate:      r.MutateKinds,
		ClassOrchestrate: r.OrchestrationKinds,
	} {
		for _, kind := range kinds {
			k := Normalize(kind)
			if other, ok := seen[k]; ok && other != class {
				errs = append(errs, fmt.Errorf("kind %q is declared as both %s and %s", kind, other, class))
			}
			seen[k] = class
		}
	}
	return errors.Join(errs...)
}

// Classify returns the class of a request kind.
func (r Rules) Classify(kind string) Class {
	k := Normalize(kind)
	if containsNormalized(r.ReadKinds, k) {
		return ClassRead
	}
	if containsNormalized(r.MutateKinds, k) {
		return ClassMutate
	}
	if containsNormalized(r.OrchestrationKinds, k) {
		return ClassOrchestrate
	}
	if r.DefaultClass.Valid() {
		return r.DefaultClass
	}
	return ClassMutate
}

// matchStep returns the canonical step identifier for req, if req invokes a
// recognized step.
func (r Rules) matchStep(req Request, c *tier.Catalog) (string, bool) {
	if r.StepKind == "" || Normalize(req.Kind) != Normalize(r.StepKind) {
		return "", false
	}
	id := Normalize(req.Identifier)
	if id == "" {
		return "", false
	}
	for _, step := range c.AllSteps() {
		if Normalize(step) == id {
			return step, true
		}
	}
	if r.ScoreStep != "" && Normalize(r.ScoreStep) == id {
		return r.ScoreStep, true
	}
	return "", false
}

func containsNormalized(list []string, normalized string) bool {
	for _, item := range list {
		if Normalize(item) == normalized {
			return true
		}
	}
	return false
}
