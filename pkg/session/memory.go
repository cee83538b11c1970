package session

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. State is lost when the
// process exits, so it only suits tests and hosts that embed the gatekeeper.
type MemoryStore struct {
	mu      sync.RWMutex
	states  map[string]memoryEntry
	nowFunc func() time.Time
}

type memoryEntry struct {
	state   *State
	updated time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:  make(map[string]memoryEntry),
		nowFunc: time.Now,
	}
}

// Load returns a copy of the stored state, or nil if absent.
func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.states[sessionID]
	if !ok {
		return nil, nil
	}
	return entry.state.Clone(), nil
}

// Save stores a copy of state.
func (m *MemoryStore) Save(ctx context.Context, state *State) error {
	if state == nil {
		return ErrNilState
	}
	if state.SessionID == "" {
		return ErrEmptySessionID
	}

	cp := state.Clone()
	cp.normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[state.SessionID] = memoryEntry{state: cp, updated: m.nowFunc()}
	return nil
}

// Delete removes a session.
func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, sessionID)
	return nil
}

// List returns stored session ids in sorted order.
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Cleanup removes sessions last saved before olderThan.
func (m *MemoryStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, entry := range m.states {
		if entry.updated.Before(olderThan) {
			delete(m.states, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
