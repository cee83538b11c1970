package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Catalog.Path != DefaultCatalogPath {
		t.Errorf("Catalog.Path = %q, want %q", cfg.Catalog.Path, DefaultCatalogPath)
	}
	if cfg.State.Backend != BackendFile || cfg.State.Path != DefaultStateFilePath {
		t.Errorf("State = %+v", cfg.State)
	}
	if cfg.Enforcement.Mode != EnforcementEnforce || cfg.Enforcement.Advisory() {
		t.Errorf("Enforcement = %+v, want enforce", cfg.Enforcement)
	}
	if !cfg.Trail.Enabled {
		t.Error("Trail.Enabled = false, want true")
	}
	if cfg.Hook.ToolKinds["Edit"] != "mutate" || cfg.Hook.ToolKinds["Task"] != "invoke-agent" {
		t.Errorf("ToolKinds = %v", cfg.Hook.ToolKinds)
	}
	if got := cfg.Hook.IdentifierFields["invoke-agent"]; len(got) != 1 || got[0] != "subagent_type" {
		t.Errorf("IdentifierFields[invoke-agent] = %v", got)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
catalog:
  path: tiers.json
  watch: true
rules:
  entry_gate:
    kind: invoke-gate
    identifier: orchestrator
    aliases: [orchestrator-v2]
  score_step: scorer
enforcement:
  mode: advisory
state:
  backend: sqlite
trail:
  enabled: false
hook:
  tool_kinds:
    Fetch: read
telemetry:
  logging:
    level: debug
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Catalog.Path != "tiers.json" || !cfg.Catalog.Watch {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.Rules.EntryGate.Identifier != "orchestrator" || len(cfg.Rules.EntryGate.Aliases) != 1 {
		t.Errorf("EntryGate = %+v", cfg.Rules.EntryGate)
	}
	if cfg.Rules.ScoreStep != "scorer" || cfg.Rules.StepKind != DefaultStepKind {
		t.Errorf("Rules = %+v", cfg.Rules)
	}
	if !cfg.Enforcement.Advisory() {
		t.Error("Enforcement.Advisory() = false")
	}
	if cfg.State.Path != DefaultStateSQLitePath {
		t.Errorf("State.Path = %q, want sqlite default", cfg.State.Path)
	}
	if cfg.Trail.Enabled {
		t.Error("Trail.Enabled = true, want false")
	}
	if cfg.Hook.ToolKinds["Fetch"] != "read" || cfg.Hook.ToolKinds["Edit"] != "mutate" {
		t.Errorf("ToolKinds should merge over defaults: %v", cfg.Hook.ToolKinds)
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != DefaultLogFormat {
		t.Errorf("Logging = %+v", cfg.Telemetry.Logging)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"unknown field", "catalog:\n  pth: x\n", ""},
		{"bad yaml", "catalog: [", ""},
		{"bad mode", "enforcement:\n  mode: loose\n", "enforcement.mode"},
		{"bad backend", "state:\n  backend: redis\n", "state.backend"},
		{"bad cron", "trail:\n  prune_schedule: every day\n", "trail.prune_schedule"},
		{"bad class", "rules:\n  default_class: write\n", "rules.default_class"},
		{"tracing without endpoint", "telemetry:\n  tracing:\n    enabled: true\n", "telemetry.tracing.endpoint"},
		{"kind in two classes", "rules:\n  read_kinds: [read, mutate]\n", "rules.mutate_kinds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() error = nil, want error")
			}
			if tt.field == "" {
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want field %s", verr.Errors, tt.field)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("WARDEN_ENFORCEMENT_MODE", "advisory")
	t.Setenv("WARDEN_STATE_BACKEND", "sqlite")
	t.Setenv("WARDEN_TRAIL_RETENTION", "2h")
	t.Setenv("WARDEN_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("WARDEN_CATALOG_WATCH", "not-a-bool")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, "catalog:\n  watch: true\n"))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if !cfg.Enforcement.Advisory() {
		t.Error("WARDEN_ENFORCEMENT_MODE not applied")
	}
	if cfg.State.Backend != BackendSQLite || cfg.State.Path != DefaultStateSQLitePath {
		t.Errorf("State = %+v", cfg.State)
	}
	if cfg.Trail.Retention != 2*time.Hour {
		t.Errorf("Trail.Retention = %v, want 2h", cfg.Trail.Retention)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Catalog.Watch {
		t.Error("unparseable override should be ignored")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidOverride(t *testing.T) {
	t.Setenv("WARDEN_TELEMETRY_LOGGING_FORMAT", "xml")

	_, err := LoadConfigWithEnvOverrides("")
	if err == nil || !strings.Contains(err.Error(), "after environment overrides") {
		t.Errorf("error = %v, want validation failure after overrides", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.State.Path != first.State.Path || cfg.Rules.ScoreStep != first.Rules.ScoreStep {
		t.Error("ApplyDefaults is not idempotent")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(defaults) error = %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	one := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got := one.Error(); got != "configuration validation failed: a: bad" {
		t.Errorf("Error() = %q", got)
	}

	two := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if got := two.Error(); !strings.Contains(got, "2 errors") || !strings.Contains(got, "b: worse") {
		t.Errorf("Error() = %q", got)
	}
}
