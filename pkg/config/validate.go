package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "state.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All field errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateCatalog(&cfg.Catalog)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateHook(&cfg.Hook)...)
	errs = append(errs, validateEnforcement(&cfg.Enforcement)...)
	errs = append(errs, validateState(&cfg.State)...)
	errs = append(errs, validateTrail(&cfg.Trail)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateCatalog(cfg *CatalogConfig) []FieldError {
	var errs []FieldError
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "catalog.path", Message: "catalog path is required"})
	}
	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{Field: "catalog.debounce_interval", Message: "debounce interval must be positive"})
	}
	return errs
}

func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.EntryGate.Kind == "" {
		errs = append(errs, FieldError{Field: "rules.entry_gate.kind", Message: "entry gate kind is required"})
	}
	if cfg.StepKind == "" {
		errs = append(errs, FieldError{Field: "rules.step_kind", Message: "step kind is required"})
	}
	if cfg.ScoreStep == "" {
		errs = append(errs, FieldError{Field: "rules.score_step", Message: "score step is required"})
	}

	validClasses := map[string]bool{"read": true, "mutate": true, "orchestrate": true}
	if !validClasses[cfg.DefaultClass] {
		errs = append(errs, FieldError{
			Field:   "rules.default_class",
			Message: fmt.Sprintf("invalid class %q: must be 'read', 'mutate', or 'orchestrate'", cfg.DefaultClass),
		})
	}

	seen := make(map[string]string)
	classes := []struct {
		name  string
		kinds []string
	}{
		{"read_kinds", cfg.ReadKinds},
		{"mutate_kinds", cfg.MutateKinds},
		{"orchestration_kinds", cfg.OrchestrationKinds},
	}
	for _, class := range classes {
		for _, kind := range class.kinds {
			if other, ok := seen[kind]; ok && other != class.name {
				errs = append(errs, FieldError{
					Field:   "rules." + class.name,
					Message: fmt.Sprintf("kind %q is also listed in rules.%s", kind, other),
				})
			}
			seen[kind] = class.name
		}
	}

	return errs
}

func validateHook(cfg *HookConfig) []FieldError {
	var errs []FieldError
	for tool, kind := range cfg.ToolKinds {
		if kind == "" {
			errs = append(errs, FieldError{
				Field:   "hook.tool_kinds." + tool,
				Message: "kind cannot be empty",
			})
		}
	}
	return errs
}

func validateEnforcement(cfg *EnforcementConfig) []FieldError {
	switch cfg.Mode {
	case EnforcementEnforce, EnforcementAdvisory:
		return nil
	}
	return []FieldError{{
		Field:   "enforcement.mode",
		Message: fmt.Sprintf("invalid mode %q: must be 'enforce' or 'advisory'", cfg.Mode),
	}}
}

func validateState(cfg *StateConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case BackendFile, BackendSQLite:
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "state.path",
				Message: fmt.Sprintf("path is required for %s backend", cfg.Backend),
			})
		}
	case BackendMemory:
	default:
		errs = append(errs, FieldError{
			Field:   "state.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'file', 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.MaxViolations < 0 {
		errs = append(errs, FieldError{Field: "state.max_violations", Message: "max violations must be non-negative"})
	}
	if cfg.StaleAfter < 0 {
		errs = append(errs, FieldError{Field: "state.stale_after", Message: "stale_after must be non-negative"})
	}
	return errs
}

func validateTrail(cfg *TrailConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	switch cfg.Backend {
	case BackendSQLite:
		if cfg.Path == "" {
			errs = append(errs, FieldError{Field: "trail.path", Message: "path is required for sqlite backend"})
		}
	case BackendMemory:
	default:
		errs = append(errs, FieldError{
			Field:   "trail.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.Retention < 0 {
		errs = append(errs, FieldError{Field: "trail.retention", Message: "retention must be non-negative"})
	}
	if cfg.AsyncBuffer < 0 {
		errs = append(errs, FieldError{Field: "trail.async_buffer", Message: "async buffer must be non-negative"})
	}
	if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "trail.prune_schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.PruneSchedule, err),
		})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
