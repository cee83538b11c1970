package gatekeeper

import (
	"fmt"

	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/policy"
)

// RulesFromConfig builds engine rules from configuration. Empty fields keep
// the engine defaults.
func RulesFromConfig(cfg *config.RulesConfig, maxViolations int) (policy.Rules, error) {
	rules := policy.DefaultRules()
	if cfg == nil {
		return rules, nil
	}

	if cfg.EntryGate.Kind != "" {
		rules.EntryGate = policy.Signature{
			Kind:       cfg.EntryGate.Kind,
			Identifier: cfg.EntryGate.Identifier,
			Aliases:    append([]string(nil), cfg.EntryGate.Aliases...),
		}
	}
	if cfg.StepKind != "" {
		rules.StepKind = cfg.StepKind
	}
	if cfg.ScoreStep != "" {
		rules.ScoreStep = cfg.ScoreStep
	}
	if len(cfg.ReadKinds) > 0 {
		rules.ReadKinds = append([]string(nil), cfg.ReadKinds...)
	}
	if len(cfg.MutateKinds) > 0 {
		rules.MutateKinds = append([]string(nil), cfg.MutateKinds...)
	}
	if len(cfg.OrchestrationKinds) > 0 {
		rules.OrchestrationKinds = append([]string(nil), cfg.OrchestrationKinds...)
	}
	if cfg.DefaultClass != "" {
		rules.DefaultClass = policy.Class(cfg.DefaultClass)
	}
	if maxViolations > 0 {
		rules.MaxViolations = maxViolations
	}

	if err := rules.Validate(); err != nil {
		return policy.Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}
