package tier

import (
	"fmt"
	"sort"
)

// Catalog is an immutable, ordered set of tier definitions.
// A nil *Catalog is valid and behaves as an empty catalog.
type Catalog struct {
	tiers       []Definition
	byName      map[string]int
	enforcement Enforcement
	source      string
}

// New builds a catalog from definitions in declaration order.
// Structural problems (empty names, inverted ranges, duplicate names or
// duplicate steps within a tier) are rejected; range overlaps and gaps are
// reported by Validate instead.
func New(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		tiers:       make([]Definition, 0, len(defs)),
		byName:      make(map[string]int, len(defs)),
		enforcement: Enforcement{Mode: "STRICT", BlockOnViolation: true},
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, &DefinitionError{Message: "name cannot be empty"}
		}
		if _, dup := c.byName[def.Name]; dup {
			return nil, &DefinitionError{Tier: def.Name, Message: "declared more than once"}
		}
		if def.Range.Min > def.Range.Max {
			return nil, &DefinitionError{Tier: def.Name, Message: fmt.Sprintf("range %s is inverted", def.Range)}
		}
		if def.MinimumSteps < 0 {
			return nil, &DefinitionError{Tier: def.Name, Message: "minimum_steps cannot be negative"}
		}

		seen := make(map[string]struct{}, len(def.RequiredSteps))
		steps := make([]string, 0, len(def.RequiredSteps))
		for _, step := range def.RequiredSteps {
			if step == "" {
				return nil, &DefinitionError{Tier: def.Name, Message: "required step identifier cannot be empty"}
			}
			if _, dup := seen[step]; dup {
				return nil, &DefinitionError{Tier: def.Name, Message: fmt.Sprintf("required step %q listed more than once", step)}
			}
			seen[step] = struct{}{}
			steps = append(steps, step)
		}
		def.RequiredSteps = steps

		c.byName[def.Name] = len(c.tiers)
		c.tiers = append(c.tiers, def)
	}

	return c, nil
}

// WithEnforcement returns a copy of the catalog carrying the enforcement block.
func (c *Catalog) WithEnforcement(e Enforcement) *Catalog {
	if c == nil {
		return nil
	}
	cp := *c
	cp.enforcement = e
	return &cp
}

// Enforcement returns the catalog's enforcement block.
func (c *Catalog) Enforcement() Enforcement {
	if c == nil {
		return Enforcement{Mode: "STRICT", BlockOnViolation: true}
	}
	return c.enforcement
}

// Source returns the file the catalog was loaded from, if any.
func (c *Catalog) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Len returns the number of tiers.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tiers)
}

// Tiers returns a copy of all definitions in declaration order.
func (c *Catalog) Tiers() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// Matches returns every tier whose range contains score, in declaration order.
// More than one match means the catalog is misconfigured.
func (c *Catalog) Matches(score float64) []Definition {
	if c == nil {
		return nil
	}
	var out []Definition
	for _, def := range c.tiers {
		if def.Range.Contains(score) {
			out = append(out, def)
		}
	}
	return out
}

// Resolve returns the first declared tier containing score.
func (c *Catalog) Resolve(score float64) (Definition, error) {
	if c == nil {
		return Definition{}, ErrNoCatalog
	}
	for _, def := range c.tiers {
		if def.Range.Contains(score) {
			return def, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %g", ErrTierNotFound, score)
}

// Lookup returns the tier with the given name.
func (c *Catalog) Lookup(name string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return Definition{}, false
	}
	return c.tiers[i], true
}

// RequiredSteps returns the ordered required steps of the named tier.
func (c *Catalog) RequiredSteps(name string) []string {
	def, ok := c.Lookup(name)
	if !ok {
		return nil
	}
	out := make([]string, len(def.RequiredSteps))
	copy(out, def.RequiredSteps)
	return out
}

// AllSteps returns the union of every tier's required steps, first-seen order.
func (c *Catalog) AllSteps() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, def := range c.tiers {
		for _, step := range def.RequiredSteps {
			if _, ok := seen[step]; ok {
				continue
			}
			seen[step] = struct{}{}
			out = append(out, step)
		}
	}
	return out
}

// Validate reports consistency issues that do not prevent the catalog from
// being used: overlapping ranges, gaps between integral scores, and
// minimum_steps larger than the declared steps.
func (c *Catalog) Validate() []Issue {
	if c == nil {
		return nil
	}

	var issues []Issue

	for i := 0; i < len(c.tiers); i++ {
		a := c.tiers[i]
		for j := i + 1; j < len(c.tiers); j++ {
			b := c.tiers[j]
			if a.Range.Overlaps(b.Range) {
				issues = append(issues, Issue{
					Kind:    IssueOverlap,
					Tier:    a.Name,
					Other:   b.Name,
					Message: fmt.Sprintf("tier %q %s overlaps tier %q %s; %q wins", a.Name, a.Range, b.Name, b.Range, a.Name),
				})
			}
		}
		if a.MinimumSteps > len(a.RequiredSteps) {
			issues = append(issues, Issue{
				Kind:    IssueMinimumExceedsSteps,
				Tier:    a.Name,
				Message: fmt.Sprintf("tier %q requires %d steps but declares %d", a.Name, a.MinimumSteps, len(a.RequiredSteps)),
			})
		}
	}

	sorted := c.Tiers()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Min < sorted[j].Range.Min
	})
	maxSoFar := sorted[0].Range.Max
	prev := sorted[0]
	for _, def := range sorted[1:] {
		if def.Range.Min-maxSoFar > 1 {
			issues = append(issues, Issue{
				Kind:    IssueGap,
				Tier:    prev.Name,
				Other:   def.Name,
				Message: fmt.Sprintf("scores between %g and %g select no tier", maxSoFar, def.Range.Min),
			})
		}
		if def.Range.Max > maxSoFar {
			maxSoFar = def.Range.Max
			prev = def
		}
	}

	return issues
}
