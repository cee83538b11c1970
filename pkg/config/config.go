package config

import "time"

// Config is the root configuration structure for Warden.
type Config struct {
	// Catalog locates the tier catalog and controls hot reload.
	Catalog CatalogConfig `yaml:"catalog"`

	// Rules declares the gate and step signatures and the action classes.
	Rules RulesConfig `yaml:"rules"`

	// Hook maps host tool events onto requests.
	Hook HookConfig `yaml:"hook"`

	// Enforcement selects whether blocks are enforced or only reported.
	Enforcement EnforcementConfig `yaml:"enforcement"`

	// State selects the session state backend.
	State StateConfig `yaml:"state"`

	// Trail configures the per-session decision trail.
	Trail TrailConfig `yaml:"trail"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CatalogConfig contains tier catalog configuration.
type CatalogConfig struct {
	// Path is the catalog file (YAML or JSON).
	// Default: ".warden/tiers.yaml"
	Path string `yaml:"path"`

	// Watch reloads the catalog when the file changes. Only meaningful for
	// long-running processes.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is the quiet period before a changed file is reloaded.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// SignatureConfig declares a request signature.
type SignatureConfig struct {
	Kind       string   `yaml:"kind"`
	Identifier string   `yaml:"identifier"`
	Aliases    []string `yaml:"aliases"`
}

// RulesConfig contains the decision engine's declared rules.
type RulesConfig struct {
	// EntryGate is the action that must open every cycle.
	EntryGate SignatureConfig `yaml:"entry_gate"`

	// StepKind is the request kind used to invoke prerequisite steps.
	// Default: "invoke-agent"
	StepKind string `yaml:"step_kind"`

	// ScoreStep is the step whose payload carries the complexity score.
	// Default: "phase-1b-complexity-scorer"
	ScoreStep string `yaml:"score_step"`

	// ScoreField is the tool input field holding the score.
	// Default: "complexity_score"
	ScoreField string `yaml:"score_field"`

	ReadKinds          []string `yaml:"read_kinds"`
	MutateKinds        []string `yaml:"mutate_kinds"`
	OrchestrationKinds []string `yaml:"orchestration_kinds"`

	// DefaultClass applies to kinds not listed above.
	// Options: "read", "mutate", "orchestrate"
	// Default: "mutate"
	DefaultClass string `yaml:"default_class"`
}

// HookConfig contains host hook translation configuration.
type HookConfig struct {
	// ToolKinds maps host tool names to request kinds. Tools not listed
	// keep their own name as kind and fall under rules.default_class.
	ToolKinds map[string]string `yaml:"tool_kinds"`

	// IdentifierFields lists, per kind, the tool_input fields that carry the
	// identifier. The first non-empty field wins.
	IdentifierFields map[string][]string `yaml:"identifier_fields"`

	// DefaultSession is used when an event carries no session id.
	// Default: "default"
	DefaultSession string `yaml:"default_session"`
}

// EnforcementConfig contains enforcement configuration.
type EnforcementConfig struct {
	// Mode selects how blocks reach the host.
	// Options: "enforce" (blocks deny the action), "advisory" (blocks are
	// recorded and reported as warnings, the action proceeds)
	// Default: "enforce"
	Mode string `yaml:"mode"`
}

// StateConfig contains session state storage configuration.
type StateConfig struct {
	// Backend selects the store.
	// Options: "file", "sqlite", "memory"
	// Default: "file"
	Backend string `yaml:"backend"`

	// Path is the state directory (file) or database file (sqlite).
	// Default: ".warden/state" (file), ".warden/state.db" (sqlite)
	Path string `yaml:"path"`

	// MaxViolations caps each session's violation log.
	// Default: 50
	MaxViolations int `yaml:"max_violations"`

	// StaleAfter removes sessions untouched for longer than this during
	// pruning. Zero disables.
	// Default: 168h
	StaleAfter time.Duration `yaml:"stale_after"`
}

// TrailConfig contains decision trail configuration.
type TrailConfig struct {
	// Enabled controls whether decisions are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the trail storage.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	// Default: ".warden/trail.db"
	Path string `yaml:"path"`

	// Retention removes records older than this. Zero keeps records until
	// their session is reset.
	// Default: 168h
	Retention time.Duration `yaml:"retention"`

	// PruneSchedule is the cron expression used by "warden serve".
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// AsyncBuffer is the recorder's queue size.
	// Default: 64
	AsyncBuffer int `yaml:"async_buffer"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// File receives log output. Hook commands must not log to stdout or
	// stderr, which belong to the host protocol; with no file they discard
	// logs.
	// Default: ".warden/warden.log"
	File string `yaml:"file"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSecrets masks tokens, keys and passwords in logged values.
	// Tool inputs such as shell commands can carry credentials.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "warden"
	Namespace string `yaml:"namespace"`

	// TextfilePath receives metrics in Prometheus text format after each
	// hook invocation, for collection by a node exporter textfile collector.
	// Empty disables.
	TextfilePath string `yaml:"textfile_path"`

	// ListenAddress serves /metrics from "warden serve".
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether decisions are traced.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled with the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is the service name in traces.
	// Default: "warden"
	ServiceName string `yaml:"service_name"`

	// Timeout bounds each export.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`
}

// Advisory reports whether blocks are reported rather than enforced.
func (c *EnforcementConfig) Advisory() bool {
	return c.Mode == EnforcementAdvisory
}
