package tier

import (
	"errors"
	"fmt"
)

var (
	// ErrTierNotFound indicates no tier range contains the score.
	ErrTierNotFound = errors.New("no tier matches score")

	// ErrNoCatalog indicates no catalog is loaded.
	ErrNoCatalog = errors.New("tier catalog not loaded")

	// ErrEmptyCatalog indicates the catalog declares no tiers.
	ErrEmptyCatalog = errors.New("tier catalog declares no tiers")
)

// LoadError indicates the catalog document could not be read or parsed.
type LoadError struct {
	Path  string
	Cause error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load tier catalog %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// DefinitionError indicates a structurally invalid tier definition.
type DefinitionError struct {
	Tier    string
	Message string
}

// Error returns the error message.
func (e *DefinitionError) Error() string {
	if e.Tier == "" {
		return fmt.Sprintf("tier definition: %s", e.Message)
	}
	return fmt.Sprintf("tier %q: %s", e.Tier, e.Message)
}
