package hook

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/policy"
)

// Translator turns events into policy requests.
type Translator struct {
	toolKinds        map[string]string
	identifierFields map[string][]string
	scoreField       string
	defaultSession   string
}

// NewTranslator builds a translator from hook configuration. scoreField
// names the payload field carrying a complexity score.
func NewTranslator(cfg *config.HookConfig, scoreField string) *Translator {
	t := &Translator{
		toolKinds:        make(map[string]string),
		identifierFields: make(map[string][]string),
		scoreField:       scoreField,
		defaultSession:   config.DefaultSessionID,
	}
	if cfg == nil {
		cfg = &config.HookConfig{
			ToolKinds:        config.DefaultToolKinds(),
			IdentifierFields: config.DefaultIdentifierFields(),
		}
	}
	for tool, kind := range cfg.ToolKinds {
		t.toolKinds[strings.ToLower(tool)] = kind
	}
	for kind, fields := range cfg.IdentifierFields {
		t.identifierFields[policy.Normalize(kind)] = fields
	}
	if cfg.DefaultSession != "" {
		t.defaultSession = cfg.DefaultSession
	}
	if t.scoreField == "" {
		t.scoreField = config.DefaultScoreField
	}
	return t
}

// SessionID returns the event's session, or the configured default.
func (t *Translator) SessionID(ev *Event) string {
	if id := strings.TrimSpace(ev.SessionID); id != "" {
		return id
	}
	return t.defaultSession
}

// Kind maps a tool name to a request kind. Unmapped tools keep their own
// name and fall under the rules' default class.
func (t *Translator) Kind(tool string) string {
	if kind, ok := t.toolKinds[strings.ToLower(tool)]; ok {
		return kind
	}
	return tool
}

// Request translates ev into a policy request received at at.
func (t *Translator) Request(ev *Event, at time.Time) policy.Request {
	kind := t.Kind(ev.ToolName)
	req := policy.Request{
		Kind: kind,
		Tool: ev.ToolName,
		At:   at,
	}

	for _, field := range t.identifierFields[policy.Normalize(kind)] {
		if s, ok := ev.ToolInput[field].(string); ok && strings.TrimSpace(s) != "" {
			req.Identifier = strings.TrimSpace(s)
			break
		}
	}

	if score, ok := numberField(ev.ToolInput, t.scoreField); ok {
		req.Score = &score
	} else if score, ok := numberField(ev.ToolResponse, t.scoreField); ok {
		req.Score = &score
	}

	return req
}

func numberField(m map[string]any, field string) (float64, bool) {
	if m == nil || field == "" {
		return 0, false
	}
	var f float64
	switch v := m[field].(type) {
	case float64:
		f = v
	case json.Number:
		var err error
		if f, err = v.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
