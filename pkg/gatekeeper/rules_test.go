package gatekeeper

import (
	"testing"

	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/policy"
)

func TestRulesFromConfig(t *testing.T) {
	rules, err := RulesFromConfig(nil, 0)
	if err != nil {
		t.Fatalf("RulesFromConfig(nil) error = %v", err)
	}
	if rules.EntryGate.Identifier != "adaptive-meta-orchestrator" {
		t.Errorf("default entry gate = %v", rules.EntryGate)
	}

	rules, err = RulesFromConfig(&config.RulesConfig{
		EntryGate:    config.SignatureConfig{Kind: "invoke-gate", Identifier: "planner", Aliases: []string{"plan-gate"}},
		ScoreStep:    "scorer",
		ReadKinds:    []string{"read", "search"},
		DefaultClass: "read",
	}, 10)
	if err != nil {
		t.Fatalf("RulesFromConfig() error = %v", err)
	}
	if !rules.EntryGate.Matches(policy.Request{Kind: "invoke_gate", Identifier: "Plan_Gate"}) {
		t.Error("configured alias does not match")
	}
	if rules.ScoreStep != "scorer" || rules.MaxViolations != 10 {
		t.Errorf("rules = %+v", rules)
	}
	if got := rules.Classify("search"); got != policy.ClassRead {
		t.Errorf("Classify(search) = %s, want read", got)
	}
	if got := rules.Classify("unknown"); got != policy.ClassRead {
		t.Errorf("Classify(unknown) = %s, want default read", got)
	}

	_, err = RulesFromConfig(&config.RulesConfig{
		ReadKinds:   []string{"write"},
		MutateKinds: []string{"write"},
	}, 0)
	if err == nil {
		t.Error("conflicting kinds error = nil")
	}
}
