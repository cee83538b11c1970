package hook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyEvent is returned when stdin carries no event.
var ErrEmptyEvent = errors.New("empty hook event")

// Event is a host hook event.
type Event struct {
	SessionID      string         `json:"session_id"`
	HookEventName  string         `json:"hook_event_name"`
	ToolName       string         `json:"tool_name,omitempty"`
	ToolInput      map[string]any `json:"tool_input,omitempty"`
	ToolResponse   map[string]any `json:"tool_response,omitempty"`
	Prompt         string         `json:"prompt,omitempty"`
	Cwd            string         `json:"cwd,omitempty"`
	TranscriptPath string         `json:"transcript_path,omitempty"`
}

// EventError reports an event that could not be decoded.
type EventError struct {
	Cause error
}

// Error implements the error interface.
func (e *EventError) Error() string {
	return fmt.Sprintf("invalid hook event: %v", e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *EventError) Unwrap() error {
	return e.Cause
}

// ParseEvent decodes one event from r. Unknown fields are ignored.
func ParseEvent(r io.Reader) (*Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &EventError{Cause: err}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, &EventError{Cause: ErrEmptyEvent}
	}

	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, &EventError{Cause: err}
	}
	return &ev, nil
}
