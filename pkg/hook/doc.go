// Package hook adapts host hook events to Warden requests.
//
// The host runs "warden check" before every tool call and writes a JSON
// event to stdin:
//
//	{"session_id": "abc", "hook_event_name": "PreToolUse",
//	 "tool_name": "Task", "tool_input": {"subagent_type": "plan"}}
//
// A Translator maps the tool to a request kind through the configured
// tool_kinds table and reads the identifier from the kind's declared
// tool_input fields. Nothing is inferred from free text.
//
// The Handler answers with the host's exit code protocol: 0 lets the tool
// run, 2 blocks it with the explanation on stderr, and 1 reports a fault
// while letting the tool run. Faults therefore fail safe: a request that
// cannot be decided exits 1 only when it is read-class; mutations,
// orchestration and unreadable events exit 2 with a "[FAULT]" line:
//
//	[FAULT] warden: decision could not be persisted (save abc): read-only file system
//	Action blocked until warden can decide it.
package hook
