package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/warden/pkg/trail"
)

// Config contains configuration for the trail recorder.
type Config struct {
	// AsyncBuffer is the size of the write queue.
	// Default: 64
	AsyncBuffer int

	// WriteTimeout bounds each storage write, and how long a reset waits for
	// queue space.
	// Default: 2 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  64,
		WriteTimeout: 2 * time.Second,
	}
}

// DropFunc is notified when records are dropped because the queue is full.
type DropFunc func(n int)

type entry struct {
	record *trail.Record
	reset  string
}

// Recorder queues trail records for a single background writer.
type Recorder struct {
	storage trail.Storage
	config  *Config
	logger  *slog.Logger
	now     func() time.Time

	queue chan entry
	done  chan struct{}
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
	onDrop  DropFunc
}

// NewRecorder starts a recorder writing to storage.
func NewRecorder(storage trail.Storage, config *Config, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		logger:  logger.With("component", "trail.recorder"),
		now:     time.Now,
		queue:   make(chan entry, config.AsyncBuffer),
		done:    make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// OnDrop registers a callback for dropped records. It must be called before
// the first Record.
func (r *Recorder) OnDrop(fn DropFunc) {
	r.onDrop = fn
}

// Record enqueues a record without blocking. Records without an ID get a
// random UUID; records without a time get the current time.
func (r *Recorder) Record(record *trail.Record) error {
	if record == nil {
		return trail.ErrNilRecord
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return trail.ErrRecorderClosed
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Time.IsZero() {
		record.Time = r.now().UTC()
	}

	select {
	case r.queue <- entry{record: record}:
		return nil
	default:
		r.dropped.Add(1)
		if r.onDrop != nil {
			r.onDrop(1)
		}
		r.logger.Warn("trail queue full, dropping record",
			"record_id", record.ID,
			"session_id", record.SessionID,
			"capacity", r.config.AsyncBuffer,
		)
		return trail.ErrBufferFull
	}
}

// Reset queues deletion of a session's trail behind any records already
// queued. It waits up to WriteTimeout for queue space.
func (r *Recorder) Reset(ctx context.Context, sessionID string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return trail.ErrRecorderClosed
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.queue <- entry{reset: sessionID}:
		return nil
	case <-timer.C:
		return trail.ErrBufferFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns the number of records dropped so far.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting records, writes everything still queued and waits
// for the worker to exit. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()

	if n := r.dropped.Load(); n > 0 {
		r.logger.Warn("trail recorder closed with dropped records", "dropped", n)
	}
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case e := <-r.queue:
			r.write(e)
		case <-r.done:
			for {
				select {
				case e := <-r.queue:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if e.record == nil {
		n, err := r.storage.DeleteSession(ctx, e.reset)
		if err != nil {
			r.logger.Error("failed to reset session trail",
				"session_id", e.reset,
				"error", err,
			)
			return
		}
		r.logger.Debug("session trail reset",
			"session_id", e.reset,
			"deleted", n,
		)
		return
	}

	start := time.Now()
	if err := r.storage.Store(ctx, e.record); err != nil {
		r.logger.Error("failed to store trail record",
			"record_id", e.record.ID,
			"session_id", e.record.SessionID,
			"error", err,
		)
		return
	}

	r.logger.Debug("trail record written",
		"record_id", e.record.ID,
		"session_id", e.record.SessionID,
		"outcome", e.record.Outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
