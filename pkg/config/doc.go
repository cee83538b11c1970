// Package config provides configuration management for Warden.
//
// Configuration is read from a YAML file layered over built-in defaults,
// then overridden by environment variables, then validated. A missing file
// is not an error: the defaults describe a working setup.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides (WARDEN_SECTION_FIELD)
//  4. Validation (fails fast if invalid)
//
// For example WARDEN_ENFORCEMENT_MODE overrides enforcement.mode and
// WARDEN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level.
//
// # Example Configuration
//
//	catalog:
//	  path: ".warden/tiers.yaml"
//	  watch: false
//
//	rules:
//	  entry_gate:
//	    kind: "invoke-gate"
//	    identifier: "adaptive-meta-orchestrator"
//	  step_kind: "invoke-agent"
//	  score_step: "phase-1b-complexity-scorer"
//
//	enforcement:
//	  mode: "enforce"
//
//	state:
//	  backend: "file"
//	  path: ".warden/state"
//
// Validation errors include field paths:
//
//	configuration validation failed with 2 errors:
//	  - enforcement.mode: invalid mode "loose": must be 'enforce' or 'advisory'
//	  - state.backend: invalid backend "redis": must be 'file', 'sqlite' or 'memory'
package config
