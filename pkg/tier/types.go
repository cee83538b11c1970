package tier

import "fmt"

// Range is an inclusive complexity-score range.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether score lies within the range (inclusive).
func (r Range) Contains(score float64) bool {
	return score >= r.Min && score <= r.Max
}

// Overlaps reports whether two ranges share at least one score.
func (r Range) Overlaps(other Range) bool {
	return r.Min <= other.Max && other.Min <= r.Max
}

// String returns the range as "[min, max]".
func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Definition is a single tier declared in the catalog.
type Definition struct {
	// Name is the tier identifier.
	Name string `json:"name"`

	// Description is free-form operator documentation.
	Description string `json:"description,omitempty"`

	// Range is the inclusive score range selecting this tier.
	Range Range `json:"range"`

	// AllowDirectActions opts the tier out of prerequisite enforcement.
	AllowDirectActions bool `json:"allow_direct_actions"`

	// MinimumSteps is the declared number of mandatory steps. It is reported
	// in block explanations and checked against RequiredSteps by Validate.
	MinimumSteps int `json:"minimum_steps"`

	// RequiredSteps lists mandatory step identifiers in execution order.
	RequiredSteps []string `json:"required_steps"`
}

// HasStep reports whether id is one of the tier's required steps.
func (d Definition) HasStep(id string) bool {
	for _, s := range d.RequiredSteps {
		if s == id {
			return true
		}
	}
	return false
}

// Enforcement is the optional enforcement block of a catalog document.
type Enforcement struct {
	// Mode is the declared enforcement mode (e.g. "STRICT").
	Mode string `json:"mode,omitempty"`

	// BlockOnViolation reports whether violations should block. Defaults to true.
	BlockOnViolation bool `json:"block_on_violation"`
}

// Advisory reports whether the catalog asks for warnings instead of blocks.
func (e Enforcement) Advisory() bool {
	if !e.BlockOnViolation {
		return true
	}
	switch e.Mode {
	case "", "STRICT", "strict", "enforce":
		return false
	default:
		return true
	}
}

// IssueKind classifies a catalog consistency issue.
type IssueKind string

const (
	// IssueOverlap means two tier ranges share scores.
	IssueOverlap IssueKind = "overlap"

	// IssueGap means some integral scores between tiers select no tier.
	IssueGap IssueKind = "gap"

	// IssueMinimumExceedsSteps means minimum_steps is larger than the step list.
	IssueMinimumExceedsSteps IssueKind = "minimum-exceeds-steps"
)

// Issue is a non-fatal consistency problem found by Catalog.Validate.
type Issue struct {
	Kind    IssueKind
	Tier    string
	Other   string
	Message string
}

// String returns a human-readable description.
func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}
