package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySessionID indicates a missing session identifier.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrNilState indicates a nil state was passed to a store.
	ErrNilState = errors.New("state cannot be nil")
)

// StorageFault indicates the state store could not be read or written.
// It is never a policy outcome.
type StorageFault struct {
	Op        string
	SessionID string
	Cause     error
}

// Error returns the error message.
func (e *StorageFault) Error() string {
	return fmt.Sprintf("session %q: storage %s failed: %v", e.SessionID, e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageFault) Unwrap() error {
	return e.Cause
}
