package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store persists session state. Implementations must be safe for concurrent
// use; each Save replaces the whole record.
type Store interface {
	// Load returns the state for sessionID, or nil if none exists.
	Load(ctx context.Context, sessionID string) (*State, error)

	// Save replaces the state for state.SessionID.
	Save(ctx context.Context, state *State) error

	// Delete removes the state for sessionID. No-op if absent.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of all stored sessions.
	List(ctx context.Context) ([]string, error)

	// Cleanup removes sessions not written since olderThan and returns how
	// many were removed.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

func encodeState(state *State) ([]byte, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if state.SessionID == "" {
		return nil, ErrEmptySessionID
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	state.normalize()
	return &state, nil
}
