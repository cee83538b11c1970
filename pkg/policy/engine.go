package policy

import (
	"fmt"
	"math"
	"strings"
	"time"

	"mercator-hq/warden/pkg/session"
	"mercator-hq/warden/pkg/tier"
)

// Decide evaluates req against state and returns the decision and the
// proposed next state. state is not modified.
func Decide(req Request, state *session.State, rules Rules, catalog *tier.Catalog) Result {
	if state == nil {
		state = session.New("")
	}
	e := &evaluation{
		req:     req,
		next:    state.Clone(),
		rules:   rules,
		catalog: catalog,
		class:   rules.Classify(req.Kind),
	}
	e.checkResolvedTier()
	d := e.decide()
	d.Class = e.class
	if d.Category == "" {
		d.Category = session.CategoryPolicy
	}
	if d.Tier == "" {
		d.Tier = e.next.ResolvedTier
	}
	return Result{Decision: d, Next: e.next}
}

// RecordScore applies a complexity score supplied outside of a step
// invocation and returns the proposed next state.
func RecordScore(state *session.State, score float64, rules Rules, catalog *tier.Catalog, at time.Time) *session.State {
	if state == nil {
		state = session.New("")
	}
	e := &evaluation{
		req:     Request{At: at, Kind: "score"},
		next:    state.Clone(),
		rules:   rules,
		catalog: catalog,
	}
	e.checkResolvedTier()
	e.applyScore(score)
	return e.next
}

type evaluation struct {
	req     Request
	next    *session.State
	rules   Rules
	catalog *tier.Catalog
	class   Class
}

func (e *evaluation) decide() Decision {
	// Rule 1: entry gate.
	if e.rules.EntryGate.Matches(e.req) {
		e.next.GatePassed = true
		e.next.ActionCount++
		return Decision{
			Outcome:     OutcomeAllow,
			Rule:        RuleEntryGate,
			Explanation: fmt.Sprintf("entry gate %s passed", e.rules.EntryGate),
		}
	}

	// Rule 2: step recognition.
	if step, ok := e.rules.matchStep(e.req, e.catalog); ok {
		added := e.next.AddStep(step)
		e.next.ActionCount++
		if e.req.Score != nil {
			e.applyScore(*e.req.Score)
		}
		explanation := fmt.Sprintf("step %q recorded", step)
		if !added {
			explanation = fmt.Sprintf("step %q already recorded", step)
		}
		return Decision{
			Outcome:     OutcomeAllowAndRecord,
			Rule:        RuleStep,
			Step:        step,
			Explanation: explanation,
		}
	}

	// Rule 3: nothing else before the gate or a step.
	if !e.next.GatePassed && e.next.ActionCount == 0 {
		return e.block(RuleGate, ReasonMissingEntryGate, []string{}, session.CategoryPolicy,
			fmt.Sprintf("entry gate %s must be invoked before any other action", e.rules.EntryGate))
	}

	e.next.ActionCount++

	// Rule 4: tier resolution.
	def, resolved := e.currentTier()
	if !resolved {
		if e.class != ClassMutate {
			return Decision{
				Outcome:     OutcomeAllow,
				Rule:        RuleTierResolution,
				Explanation: fmt.Sprintf("tier not yet determined; %s actions are allowed", e.class),
			}
		}

		category := session.CategoryPolicy
		detail := fmt.Sprintf("complexity tier not determined; run %q first", e.rules.ScoreStep)
		switch {
		case e.catalog == nil:
			category = session.CategoryConfiguration
			detail = "tier catalog unavailable; mutating actions are blocked"
		case e.next.ComplexityScore != nil:
			category = session.CategoryConfiguration
			detail = fmt.Sprintf("complexity score %g does not resolve to a tier", *e.next.ComplexityScore)
		}
		return e.block(RuleTierResolution, ReasonTierUndetermined, []string{e.rules.ScoreStep}, category, detail)
	}

	// Rule 5: direct-action tiers.
	if def.AllowDirectActions {
		return Decision{
			Outcome:     OutcomeAllow,
			Rule:        RuleDirectActions,
			Tier:        def.Name,
			Explanation: fmt.Sprintf("tier %q allows direct actions", def.Name),
		}
	}

	// Rule 6: prerequisites.
	if e.class == ClassMutate {
		if missing := e.missingSteps(def); len(missing) > 0 {
			detail := fmt.Sprintf("tier %q requires %s before mutating actions",
				def.Name, strings.Join(def.RequiredSteps, ", "))
			if def.MinimumSteps > 0 {
				detail += fmt.Sprintf(" (minimum %d)", def.MinimumSteps)
			}
			d := e.block(RulePrerequisites, ReasonMissingPrerequisites, missing, session.CategoryPolicy, detail)
			d.Tier = def.Name
			return d
		}
	}

	return Decision{
		Outcome:     OutcomeAllow,
		Rule:        RulePrerequisites,
		Tier:        def.Name,
		Explanation: fmt.Sprintf("tier %q prerequisites satisfied", def.Name),
	}
}

func (e *evaluation) block(rule, reason string, missing []string, category session.Category, detail string) Decision {
	e.violate(reason, category, missing, detail)
	explanation := detail
	if len(missing) > 0 {
		explanation = fmt.Sprintf("%s; missing: %s", detail, strings.Join(missing, ", "))
	}
	return Decision{
		Outcome:     OutcomeBlock,
		Rule:        rule,
		Reason:      reason,
		Missing:     missing,
		Explanation: explanation,
		Category:    category,
	}
}

func (e *evaluation) violate(kind string, category session.Category, missing []string, detail string) {
	e.next.AddViolation(session.Violation{
		At:       e.req.At,
		Kind:     kind,
		Category: category,
		Action:   e.req.Action(),
		Missing:  append([]string(nil), missing...),
		Detail:   detail,
	}, e.rules.MaxViolations)
}

// checkResolvedTier drops a resolved tier that the current catalog no longer
// defines, so that it is treated as unresolved.
func (e *evaluation) checkResolvedTier() {
	if !e.next.HasTier() || e.catalog == nil {
		return
	}
	if _, ok := e.catalog.Lookup(e.next.ResolvedTier); ok {
		return
	}
	e.violate(KindTierUnknown, session.CategoryConfiguration, nil,
		fmt.Sprintf("resolved tier %q is not defined in the current catalog", e.next.ResolvedTier))
	e.next.ResolvedTier = ""
}

func (e *evaluation) currentTier() (tier.Definition, bool) {
	if !e.next.HasTier() {
		return tier.Definition{}, false
	}
	return e.catalog.Lookup(e.next.ResolvedTier)
}

func (e *evaluation) applyScore(score float64) {
	if e.next.HasTier() {
		e.violate(KindTierLocked, session.CategoryPolicy, nil,
			fmt.Sprintf("score %g ignored; tier %q is locked for this cycle", score, e.next.ResolvedTier))
		return
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		e.violate(KindScoreOutOfRange, session.CategoryConfiguration, nil,
			fmt.Sprintf("score %g is not a finite number; ignored", score))
		return
	}

	e.next.ComplexityScore = &score

	if e.catalog == nil {
		e.violate(KindCatalogUnavailable, session.CategoryConfiguration, nil,
			fmt.Sprintf("score %g cannot be resolved without a tier catalog", score))
		return
	}

	matches := e.catalog.Matches(score)
	switch {
	case len(matches) == 0:
		e.violate(KindScoreOutOfRange, session.CategoryConfiguration, nil,
			fmt.Sprintf("score %g is outside every tier range", score))
		return
	case len(matches) > 1:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		e.violate(KindAmbiguousTier, session.CategoryConfiguration, nil,
			fmt.Sprintf("score %g matches tiers %s; using %q", score, strings.Join(names, ", "), matches[0].Name))
	}

	e.next.ResolvedTier = matches[0].Name
}

// missingSteps returns the tier's required steps not yet executed, in catalog
// order.
func (e *evaluation) missingSteps(def tier.Definition) []string {
	executed := make(map[string]bool, len(e.next.ExecutedSteps))
	for _, step := range e.next.ExecutedSteps {
		executed[Normalize(step)] = true
	}

	var missing []string
	for _, step := range def.RequiredSteps {
		if !executed[Normalize(step)] {
			missing = append(missing, step)
		}
	}
	return missing
}
