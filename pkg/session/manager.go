package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Violation kinds recorded by the manager itself.
const (
	KindStorageReadFailed = "storage-read-failed"
)

// ResetFunc is called after a session has been reset for a new cycle.
type ResetFunc func(ctx context.Context, sessionID string)

// FaultFunc is called whenever the store fails. op is "load" or "save".
type FaultFunc func(op, sessionID string, err error)

// Manager is the single writer of durable session state.
type Manager struct {
	store         Store
	logger        *slog.Logger
	now           func() time.Time
	maxViolations int
	onReset       []ResetFunc
	onFault       []FaultFunc

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source used for violation timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithMaxViolations caps the violation log. Zero or less keeps the default.
func WithMaxViolations(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxViolations = n
		}
	}
}

// WithResetHook registers fn to run after every successful BeginSession.
func WithResetHook(fn ResetFunc) Option {
	return func(m *Manager) {
		m.onReset = append(m.onReset, fn)
	}
}

// WithFaultHook registers fn to run on every storage failure.
func WithFaultHook(fn FaultFunc) Option {
	return func(m *Manager) {
		m.onFault = append(m.onFault, fn)
	}
}

// NewManager creates a lifecycle manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		logger:        slog.Default(),
		now:           time.Now,
		maxViolations: DefaultMaxViolations,
		locks:         make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session.manager")
	return m
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// MaxViolations returns the violation cap.
func (m *Manager) MaxViolations() int {
	return m.maxViolations
}

// BeginSession resets the session to its initial state and persists it.
// The returned state is valid even when the write fails.
func (m *Manager) BeginSession(ctx context.Context, sessionID string) (*State, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	state := New(sessionID)
	if err := m.store.Save(ctx, state); err != nil {
		fault := &StorageFault{Op: "save", SessionID: sessionID, Cause: err}
		m.fault(fault)
		return state, fault
	}

	for _, fn := range m.onReset {
		fn(ctx, sessionID)
	}

	m.logger.Debug("session started", "session_id", sessionID)
	return state, nil
}

// LoadOrInit returns the session's current state. An absent session is
// started. A failed read yields a fresh initial state carrying a storage
// violation rather than an error, so stale or missing data never widens what
// is allowed.
func (m *Manager) LoadOrInit(ctx context.Context, sessionID string) (*State, error) {
	return m.LoadOrInitAt(ctx, sessionID, m.now())
}

// LoadOrInitAt is LoadOrInit with the storage violation stamped at, the time
// of the request being decided.
func (m *Manager) LoadOrInitAt(ctx context.Context, sessionID string, at time.Time) (*State, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}

	state, err := m.store.Load(ctx, sessionID)
	if err != nil {
		fault := &StorageFault{Op: "load", SessionID: sessionID, Cause: err}
		m.fault(fault)

		fresh := New(sessionID)
		fresh.AddViolation(Violation{
			At:       at,
			Kind:     KindStorageReadFailed,
			Category: CategoryStorage,
			Detail:   err.Error(),
		}, m.maxViolations)
		return fresh, nil
	}

	if state == nil {
		return m.BeginSession(ctx, sessionID)
	}
	if state.SessionID != sessionID {
		m.logger.Warn("stored state has mismatched session id",
			"session_id", sessionID,
			"stored_session_id", state.SessionID,
		)
		state.SessionID = sessionID
	}
	return state, nil
}

// Apply persists next as the session's state in a single write.
func (m *Manager) Apply(ctx context.Context, next *State) error {
	if next == nil {
		return ErrNilState
	}
	if next.SessionID == "" {
		return ErrEmptySessionID
	}

	next.trimViolations(m.maxViolations)
	if err := m.store.Save(ctx, next); err != nil {
		fault := &StorageFault{Op: "save", SessionID: next.SessionID, Cause: err}
		m.fault(fault)
		return fault
	}
	return nil
}

// WithLock runs fn while holding the session's in-process lock. The lock is
// released on every exit path, including a panic in fn.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := m.acquire(sessionID)
	defer m.release(sessionID, lock)

	return fn(ctx)
}

func (m *Manager) acquire(sessionID string) *sessionLock {
	m.locksMu.Lock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		m.locks[sessionID] = lock
	}
	lock.refs++
	m.locksMu.Unlock()

	lock.mu.Lock()
	return lock
}

func (m *Manager) release(sessionID string, lock *sessionLock) {
	lock.mu.Unlock()

	m.locksMu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(m.locks, sessionID)
	}
	m.locksMu.Unlock()
}

func (m *Manager) fault(f *StorageFault) {
	m.logger.Error("session storage failure",
		"session_id", f.SessionID,
		"op", f.Op,
		"error", f.Cause,
	)
	for _, fn := range m.onFault {
		fn(f.Op, f.SessionID, f.Cause)
	}
}
