package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/warden/pkg/trail"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// Retention is how long trail records are kept. Zero keeps them until
	// their session resets.
	Retention time.Duration

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// StaleAfter removes session state untouched for longer than this.
	// Zero disables session cleanup.
	StaleAfter time.Duration
}

// SessionCleaner removes stale session state. session.Store implements it.
type SessionCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)
}

// Result reports what a pruning pass removed.
type Result struct {
	Records  int64
	Sessions int
}

// Pruner enforces retention on trail records and session state.
type Pruner struct {
	storage  trail.Storage
	sessions SessionCleaner
	config   *Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewPruner creates a pruner for storage.
func NewPruner(storage trail.Storage, config *Config, logger *slog.Logger) *Pruner {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "trail.retention"),
		now:     time.Now,
	}
}

// WithSessions attaches a session store to clean alongside the trail.
func (p *Pruner) WithSessions(sessions SessionCleaner) *Pruner {
	p.sessions = sessions
	return p
}

// Prune deletes trail records older than the retention period, then stale
// sessions. It stops at the first error and returns what was removed so far.
func (p *Pruner) Prune(ctx context.Context) (Result, error) {
	var result Result

	if p.config.Retention > 0 && p.storage != nil {
		cutoff := p.now().Add(-p.config.Retention)
		deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return result, fmt.Errorf("prune trail records: %w", err)
		}
		result.Records = deleted
		p.logger.Debug("pruned trail records",
			"deleted_count", deleted,
			"cutoff_time", cutoff,
		)
	}

	if p.config.StaleAfter > 0 && p.sessions != nil {
		removed, err := p.sessions.Cleanup(ctx, p.now().Add(-p.config.StaleAfter))
		if err != nil {
			return result, fmt.Errorf("prune stale sessions: %w", err)
		}
		result.Sessions = removed
	}

	if result.Records > 0 || result.Sessions > 0 {
		p.logger.Info("retention pruning completed",
			"records_deleted", result.Records,
			"sessions_deleted", result.Sessions,
			"retention", p.config.Retention,
			"stale_after", p.config.StaleAfter,
		)
	}

	return result, nil
}
