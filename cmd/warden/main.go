// Warden enforces tiered workflow policy on an AI coding assistant's tool
// calls.
//
// The host runs warden as a hook: every tool call is piped to "warden check"
// as JSON on stdin, and every new user prompt to "warden reset". Warden
// remembers per session whether the entry gate was invoked, which
// prerequisite steps ran and which complexity tier was resolved, and blocks
// mutating actions until the tier's required steps are complete.
//
// Usage:
//
//	# PreToolUse hook: exit 0 allows, exit 2 blocks with the reason on stderr
//	warden check < event.json
//
//	# UserPromptSubmit hook: start a new cycle
//	warden reset < event.json
//
//	# Supply a complexity score out of band
//	warden score 42 --session abc123
//
//	# Inspect a session
//	warden state --session abc123
//
//	# Validate the tier catalog
//	warden catalog lint
//
//	# Query and prune the decision trail
//	warden trail list --session abc123 --outcome block
//	warden trail prune
//
//	# Long-running companion: catalog hot reload, scheduled pruning, metrics
//	warden serve
package main

import "os"

func main() {
	os.Exit(Execute())
}
