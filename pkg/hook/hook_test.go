package hook

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/gatekeeper"
	"mercator-hq/warden/pkg/policy"
	"mercator-hq/warden/pkg/session"
	"mercator-hq/warden/pkg/tier"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent(strings.NewReader(`{
		"session_id": "abc",
		"hook_event_name": "PreToolUse",
		"tool_name": "Task",
		"tool_input": {"subagent_type": "plan", "prompt": "x"},
		"unknown_field": true
	}`))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if ev.SessionID != "abc" || ev.ToolName != "Task" || ev.ToolInput["subagent_type"] != "plan" {
		t.Errorf("event = %+v", ev)
	}

	for name, input := range map[string]string{
		"empty":   "  \n",
		"garbage": "{not json",
	} {
		_, err := ParseEvent(strings.NewReader(input))
		var evErr *EventError
		if !errors.As(err, &evErr) {
			t.Errorf("%s: error = %v, want *EventError", name, err)
		}
	}
	if _, err := ParseEvent(strings.NewReader("")); !errors.Is(err, ErrEmptyEvent) {
		t.Errorf("empty input error = %v, want ErrEmptyEvent", err)
	}
}

func TestTranslator_Request(t *testing.T) {
	tr := NewTranslator(nil, "")

	tests := []struct {
		name     string
		event    Event
		wantKind string
		wantID   string
		wantScr  *float64
	}{
		{
			name:     "read tool",
			event:    Event{ToolName: "Grep", ToolInput: map[string]any{"pattern": "adaptive-meta-orchestrator"}},
			wantKind: "read",
		},
		{
			name:     "agent",
			event:    Event{ToolName: "Task", ToolInput: map[string]any{"subagent_type": " phase-3-planner "}},
			wantKind: "invoke-agent",
			wantID:   "phase-3-planner",
		},
		{
			name:     "skill falls back to command field",
			event:    Event{ToolName: "Skill", ToolInput: map[string]any{"command": "adaptive-meta-orchestrator"}},
			wantKind: "invoke-gate",
			wantID:   "adaptive-meta-orchestrator",
		},
		{
			name:     "numeric score",
			event:    Event{ToolName: "Task", ToolInput: map[string]any{"subagent_type": "scorer", "complexity_score": 42.0}},
			wantKind: "invoke-agent",
			wantID:   "scorer",
			wantScr:  fl(42),
		},
		{
			name:     "string score in tool response",
			event:    Event{ToolName: "Task", ToolInput: map[string]any{"subagent_type": "scorer"}, ToolResponse: map[string]any{"complexity_score": "77"}},
			wantKind: "invoke-agent",
			wantID:   "scorer",
			wantScr:  fl(77),
		},
		{
			name:     "non-finite numeric score dropped",
			event:    Event{ToolName: "Task", ToolInput: map[string]any{"subagent_type": "scorer", "complexity_score": math.NaN()}},
			wantKind: "invoke-agent",
			wantID:   "scorer",
		},
		{
			name:     "non-finite string score dropped",
			event:    Event{ToolName: "Task", ToolInput: map[string]any{"subagent_type": "scorer", "complexity_score": "+Inf"}},
			wantKind: "invoke-agent",
			wantID:   "scorer",
		},
		{
			name:     "unmapped tool keeps its name",
			event:    Event{ToolName: "mcp__db__query"},
			wantKind: "mcp__db__query",
		},
		{
			name:     "tool name case-insensitive",
			event:    Event{ToolName: "edit"},
			wantKind: "mutate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tr.Request(&tt.event, at)
			if req.Kind != tt.wantKind || req.Identifier != tt.wantID {
				t.Errorf("Request() = %+v, want kind %q id %q", req, tt.wantKind, tt.wantID)
			}
			if (req.Score == nil) != (tt.wantScr == nil) || (req.Score != nil && *req.Score != *tt.wantScr) {
				t.Errorf("Score = %v, want %v", req.Score, tt.wantScr)
			}
			if !req.At.Equal(at) || req.Tool != tt.event.ToolName {
				t.Errorf("At/Tool = %v/%q", req.At, req.Tool)
			}
		})
	}
}

func TestTranslator_SessionID(t *testing.T) {
	tr := NewTranslator(&config.HookConfig{DefaultSession: "fallback"}, "")
	if got := tr.SessionID(&Event{SessionID: " abc "}); got != "abc" {
		t.Errorf("SessionID() = %q", got)
	}
	if got := tr.SessionID(&Event{}); got != "fallback" {
		t.Errorf("SessionID() = %q, want fallback", got)
	}
}

func fl(v float64) *float64 { return &v }

func newHandler(t *testing.T, store session.Store, opts ...gatekeeper.Option) *Handler {
	t.Helper()
	c, err := tier.New([]tier.Definition{
		{Name: "low", Range: tier.Range{Min: 0, Max: 30}, AllowDirectActions: true},
		{Name: "high", Range: tier.Range{Min: 70, Max: 100}, RequiredSteps: []string{"phase-3-planner"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	gk := gatekeeper.New(session.NewManager(store), tier.NewStaticHolder(c), policy.DefaultRules(), opts...)
	return NewHandler(gk, NewTranslator(nil, ""), nil)
}

const (
	gateEvent   = `{"session_id":"s","hook_event_name":"PreToolUse","tool_name":"Skill","tool_input":{"skill":"adaptive-meta-orchestrator"}}`
	scoreEvent  = `{"session_id":"s","hook_event_name":"PreToolUse","tool_name":"Task","tool_input":{"subagent_type":"phase-1b-complexity-scorer","complexity_score":85}}`
	planEvent   = `{"session_id":"s","hook_event_name":"PreToolUse","tool_name":"Task","tool_input":{"subagent_type":"phase-3-planner"}}`
	editEvent   = `{"session_id":"s","hook_event_name":"PreToolUse","tool_name":"Edit","tool_input":{"file_path":"main.go"}}`
	promptEvent = `{"session_id":"s","hook_event_name":"UserPromptSubmit","prompt":"next task"}`
)

func (h *Handler) run(t *testing.T, event string) (int, string) {
	t.Helper()
	var stderr bytes.Buffer
	code := h.Check(context.Background(), strings.NewReader(event), &stderr)
	return code, stderr.String()
}

func TestHandler_Check(t *testing.T) {
	h := newHandler(t, session.NewMemoryStore())

	code, stderr := h.run(t, editEvent)
	if code != ExitBlock || !strings.Contains(stderr, policy.ReasonMissingEntryGate) {
		t.Fatalf("edit before gate = %d %q, want block", code, stderr)
	}

	if code, _ := h.run(t, gateEvent); code != ExitAllow {
		t.Fatalf("gate exit = %d", code)
	}
	if code, _ := h.run(t, scoreEvent); code != ExitAllow {
		t.Fatalf("score exit = %d", code)
	}

	code, stderr = h.run(t, editEvent)
	if code != ExitBlock {
		t.Fatalf("edit exit = %d, want %d", code, ExitBlock)
	}
	if !strings.Contains(stderr, "Missing:") || !strings.Contains(stderr, "  - phase-3-planner") {
		t.Errorf("stderr = %q, want the missing step listed", stderr)
	}

	h.run(t, planEvent)
	if code, stderr := h.run(t, editEvent); code != ExitAllow || stderr != "" {
		t.Errorf("edit after plan = %d %q, want allow", code, stderr)
	}

	var out bytes.Buffer
	if code := h.Reset(context.Background(), strings.NewReader(promptEvent), &out); code != ExitAllow {
		t.Fatalf("Reset() = %d %q", code, out.String())
	}
	if code, _ := h.run(t, editEvent); code != ExitBlock {
		t.Errorf("edit after reset = %d, want block", code)
	}
}

func TestHandler_Advisory(t *testing.T) {
	h := newHandler(t, session.NewMemoryStore(), gatekeeper.WithAdvisory(true))

	code, stderr := h.run(t, editEvent)
	if code != ExitAllow {
		t.Errorf("advisory exit = %d, want %d", code, ExitAllow)
	}
	if !strings.Contains(stderr, "ADVISORY") {
		t.Errorf("stderr = %q, want advisory warning", stderr)
	}
}

type brokenStore struct{ *session.MemoryStore }

func (brokenStore) Save(context.Context, *session.State) error {
	return errors.New("read-only filesystem")
}

func TestHandler_NonFiniteScoreOnFileStore(t *testing.T) {
	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	h := newHandler(t, store)

	if code, stderr := h.run(t, gateEvent); code != ExitAllow {
		t.Fatalf("gate exit = %d %q", code, stderr)
	}
	for _, score := range []string{`"NaN"`, `"-Inf"`} {
		event := `{"session_id":"s","tool_name":"Task","tool_input":{"subagent_type":"phase-1b-complexity-scorer","complexity_score":` + score + `}}`
		if code, stderr := h.run(t, event); code != ExitAllow {
			t.Errorf("scorer with score %s = %d %q, want allow", score, code, stderr)
		}
	}

	state, err := store.Load(context.Background(), "s")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state.ComplexityScore != nil || state.HasTier() {
		t.Errorf("score = %v tier = %q, want neither", state.ComplexityScore, state.ResolvedTier)
	}
	if len(state.ExecutedSteps) != 1 {
		t.Errorf("ExecutedSteps = %v, want the scorer step", state.ExecutedSteps)
	}
}

func TestHandler_Faults(t *testing.T) {
	readEvent := `{"session_id":"s","hook_event_name":"PreToolUse","tool_name":"Grep","tool_input":{"pattern":"TODO"}}`

	tests := []struct {
		name    string
		event   string
		want    int
		wantErr string
	}{
		{name: "unreadable event", event: "{oops", want: ExitBlock, wantErr: "unreadable hook event"},
		{name: "empty event", event: "", want: ExitBlock, wantErr: "unreadable hook event"},
		{name: "gate on broken store", event: gateEvent, want: ExitBlock, wantErr: "read-only filesystem"},
		{name: "mutation on broken store", event: editEvent, want: ExitBlock, wantErr: "read-only filesystem"},
		{name: "read on broken store", event: readEvent, want: ExitFault, wantErr: "read-only filesystem"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(t, brokenStore{session.NewMemoryStore()})
			code, stderr := h.run(t, tt.event)
			if code != tt.want {
				t.Errorf("exit = %d, want %d (stderr %q)", code, tt.want, stderr)
			}
			if !strings.HasPrefix(stderr, "[FAULT] warden:") || !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want fault line mentioning %q", stderr, tt.wantErr)
			}
			if strings.Contains(stderr, "BLOCKED") {
				t.Errorf("stderr = %q, fault reported as a policy block", stderr)
			}
		})
	}

	h := newHandler(t, brokenStore{session.NewMemoryStore()})
	var out bytes.Buffer
	if code := h.Reset(context.Background(), strings.NewReader(promptEvent), &out); code != ExitFault {
		t.Errorf("Reset() with broken store = %d, want %d", code, ExitFault)
	}
}

func TestCheckUnavailable(t *testing.T) {
	cause := errors.New("invalid enforcement mode")

	tests := []struct {
		name  string
		event string
		want  int
	}{
		{name: "mutation", event: editEvent, want: ExitBlock},
		{name: "orchestration", event: planEvent, want: ExitBlock},
		{name: "read", event: `{"tool_name":"Read","tool_input":{"file_path":"go.mod"}}`, want: ExitFault},
		{name: "unknown tool", event: `{"tool_name":"Frobnicate"}`, want: ExitBlock},
		{name: "unreadable event", event: "not json", want: ExitBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := CheckUnavailable(strings.NewReader(tt.event), &stderr, cause); got != tt.want {
				t.Errorf("CheckUnavailable() = %d, want %d", got, tt.want)
			}
			if !strings.Contains(stderr.String(), "[FAULT] warden: warden is unavailable: invalid enforcement mode") {
				t.Errorf("stderr = %q", stderr.String())
			}
		})
	}
}
