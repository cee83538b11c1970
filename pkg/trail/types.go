package trail

import (
	"context"
	"time"
)

// Record is one decision in a session's trail.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Time      time.Time `json:"time"`

	// Request
	Tool       string   `json:"tool,omitempty"`
	Kind       string   `json:"kind"`
	Identifier string   `json:"identifier,omitempty"`
	Score      *float64 `json:"score,omitempty"`

	// Decision
	Class       string   `json:"class"`
	Outcome     string   `json:"outcome"`
	Rule        string   `json:"rule,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Missing     []string `json:"missing,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Category    string   `json:"category,omitempty"`
	Advisory    bool     `json:"advisory,omitempty"`

	// Session after the decision
	Tier        string `json:"tier,omitempty"`
	ActionCount int64  `json:"action_count"`
}

// Blocked reports whether the engine blocked the action, regardless of
// whether advisory mode let it proceed.
func (r *Record) Blocked() bool {
	return r.Outcome == "block"
}

// Query filters trail records. Zero values match everything.
type Query struct {
	SessionID string
	Outcome   string

	// Time range, inclusive.
	StartTime *time.Time
	EndTime   *time.Time

	// Limit caps the result size. Zero means DefaultQueryLimit.
	Limit int
}

// DefaultQueryLimit is applied when a Query does not set Limit.
const DefaultQueryLimit = 100

// Storage persists trail records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Query returns matching records, oldest first.
	// Returns an empty slice if nothing matches.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteSession removes every record of a session.
	DeleteSession(ctx context.Context, sessionID string) (int64, error)

	// DeleteOlderThan removes records recorded before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}
