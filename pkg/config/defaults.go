package config

import "time"

// Default configuration values.
const (
	DefaultCatalogPath      = ".warden/tiers.yaml"
	DefaultDebounceInterval = 100 * time.Millisecond

	DefaultEntryGateKind       = "invoke-gate"
	DefaultEntryGateIdentifier = "adaptive-meta-orchestrator"
	DefaultStepKind            = "invoke-agent"
	DefaultScoreStep           = "phase-1b-complexity-scorer"
	DefaultScoreField          = "complexity_score"
	DefaultClass               = "mutate"
	DefaultSessionID           = "default"

	EnforcementEnforce  = "enforce"
	EnforcementAdvisory = "advisory"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	DefaultStateFilePath   = ".warden/state"
	DefaultStateSQLitePath = ".warden/state.db"
	DefaultMaxViolations   = 50
	DefaultStaleAfter      = 7 * 24 * time.Hour

	DefaultTrailEnabled       = true
	DefaultTrailPath          = ".warden/trail.db"
	DefaultTrailRetention     = 7 * 24 * time.Hour
	DefaultTrailPruneSchedule = "0 3 * * *"
	DefaultTrailAsyncBuffer   = 64

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = ".warden/warden.log"
	DefaultLogRedact = true

	DefaultMetricsEnabled       = true
	DefaultMetricsNamespace     = "warden"
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"

	DefaultTracingEnabled     = false
	DefaultTracingInsecure    = true
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "warden"
	DefaultTracingTimeout     = 5 * time.Second
)

// DefaultToolKinds maps the host's tool names to request kinds.
func DefaultToolKinds() map[string]string {
	return map[string]string{
		"Read":         "read",
		"Glob":         "read",
		"Grep":         "read",
		"LS":           "read",
		"WebFetch":     "read",
		"WebSearch":    "read",
		"TodoWrite":    "read",
		"Edit":         "mutate",
		"MultiEdit":    "mutate",
		"Write":        "mutate",
		"NotebookEdit": "mutate",
		"Bash":         "mutate",
		"Task":         "invoke-agent",
		"Skill":        "invoke-gate",
	}
}

// DefaultIdentifierFields lists the tool_input fields carrying identifiers.
func DefaultIdentifierFields() map[string][]string {
	return map[string][]string{
		"invoke-agent": {"subagent_type"},
		"invoke-gate":  {"skill", "command"},
	}
}

// Default returns the base configuration that a configuration file is
// decoded over. Fields whose default depends on another field, such as
// state.path, are left for ApplyDefaults.
func Default() *Config {
	cfg := &Config{
		Catalog: CatalogConfig{
			Path:             DefaultCatalogPath,
			DebounceInterval: DefaultDebounceInterval,
		},
		Rules: RulesConfig{
			EntryGate: SignatureConfig{
				Kind:       DefaultEntryGateKind,
				Identifier: DefaultEntryGateIdentifier,
			},
			StepKind:           DefaultStepKind,
			ScoreStep:          DefaultScoreStep,
			ScoreField:         DefaultScoreField,
			ReadKinds:          []string{"read"},
			MutateKinds:        []string{"mutate"},
			OrchestrationKinds: []string{"invoke-agent", "invoke-gate"},
			DefaultClass:       DefaultClass,
		},
		Hook: HookConfig{
			ToolKinds:        DefaultToolKinds(),
			IdentifierFields: DefaultIdentifierFields(),
			DefaultSession:   DefaultSessionID,
		},
		Enforcement: EnforcementConfig{Mode: EnforcementEnforce},
		State: StateConfig{
			Backend:       BackendFile,
			MaxViolations: DefaultMaxViolations,
			StaleAfter:    DefaultStaleAfter,
		},
		Trail: TrailConfig{
			Enabled:       DefaultTrailEnabled,
			Backend:       BackendSQLite,
			Path:          DefaultTrailPath,
			Retention:     DefaultTrailRetention,
			PruneSchedule: DefaultTrailPruneSchedule,
			AsyncBuffer:   DefaultTrailAsyncBuffer,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:         DefaultLogLevel,
				Format:        DefaultLogFormat,
				File:          DefaultLogFile,
				RedactSecrets: DefaultLogRedact,
			},
			Metrics: MetricsConfig{
				Enabled:       DefaultMetricsEnabled,
				Namespace:     DefaultMetricsNamespace,
				ListenAddress: DefaultMetricsListenAddress,
				Path:          DefaultMetricsPath,
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				Insecure:    DefaultTracingInsecure,
				Sampler:     DefaultTracingSampler,
				SampleRatio: DefaultTracingSampleRatio,
				ServiceName: DefaultTracingServiceName,
				Timeout:     DefaultTracingTimeout,
			},
		},
	}
	return cfg
}

// ApplyDefaults fills zero-valued fields with defaults. Booleans are not
// touched; their defaults come from Default. It is idempotent.
func ApplyDefaults(cfg *Config) {
	// Catalog defaults
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.DebounceInterval == 0 {
		cfg.Catalog.DebounceInterval = DefaultDebounceInterval
	}

	// Rules defaults
	if cfg.Rules.EntryGate.Kind == "" {
		cfg.Rules.EntryGate.Kind = DefaultEntryGateKind
	}
	if cfg.Rules.StepKind == "" {
		cfg.Rules.StepKind = DefaultStepKind
	}
	if cfg.Rules.ScoreStep == "" {
		cfg.Rules.ScoreStep = DefaultScoreStep
	}
	if cfg.Rules.ScoreField == "" {
		cfg.Rules.ScoreField = DefaultScoreField
	}
	if cfg.Rules.DefaultClass == "" {
		cfg.Rules.DefaultClass = DefaultClass
	}

	// Hook defaults
	if cfg.Hook.ToolKinds == nil {
		cfg.Hook.ToolKinds = DefaultToolKinds()
	}
	if cfg.Hook.IdentifierFields == nil {
		cfg.Hook.IdentifierFields = DefaultIdentifierFields()
	}
	if cfg.Hook.DefaultSession == "" {
		cfg.Hook.DefaultSession = DefaultSessionID
	}

	// Enforcement defaults
	if cfg.Enforcement.Mode == "" {
		cfg.Enforcement.Mode = EnforcementEnforce
	}

	// State defaults
	if cfg.State.Backend == "" {
		cfg.State.Backend = BackendFile
	}
	if cfg.State.Path == "" {
		switch cfg.State.Backend {
		case BackendSQLite:
			cfg.State.Path = DefaultStateSQLitePath
		case BackendFile:
			cfg.State.Path = DefaultStateFilePath
		}
	}
	if cfg.State.MaxViolations == 0 {
		cfg.State.MaxViolations = DefaultMaxViolations
	}

	// Trail defaults
	if cfg.Trail.Backend == "" {
		cfg.Trail.Backend = BackendSQLite
	}
	if cfg.Trail.Path == "" && cfg.Trail.Backend == BackendSQLite {
		cfg.Trail.Path = DefaultTrailPath
	}
	if cfg.Trail.PruneSchedule == "" {
		cfg.Trail.PruneSchedule = DefaultTrailPruneSchedule
	}
	if cfg.Trail.AsyncBuffer == 0 {
		cfg.Trail.AsyncBuffer = DefaultTrailAsyncBuffer
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
