package tier

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// ReloadFunc is notified after every load attempt.
type ReloadFunc func(c *Catalog, err error)

// Holder owns the current catalog for a catalog file and swaps it atomically
// on reload. A failed reload keeps the last good catalog; a failed initial
// load leaves Current nil so callers degrade to "tier undetermined".
type Holder struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[Catalog]

	mu        sync.Mutex
	observers []ReloadFunc
}

// NewHolder creates a holder for the catalog file at path.
func NewHolder(path string, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Holder{
		path:   path,
		logger: logger.With("component", "tier.holder"),
	}
}

// NewStaticHolder wraps an already built catalog (no file backing).
func NewStaticHolder(c *Catalog) *Holder {
	h := &Holder{logger: slog.Default().With("component", "tier.holder")}
	h.current.Store(c)
	return h
}

// Path returns the catalog file path.
func (h *Holder) Path() string {
	return h.path
}

// OnReload registers a callback invoked after every load attempt.
func (h *Holder) OnReload(fn ReloadFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// Current returns the active catalog, or nil if none could be loaded.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Load reads the catalog file. On failure the holder keeps whatever catalog
// it already had (nil on first load) and returns the error.
func (h *Holder) Load() error {
	if h.path == "" {
		return &LoadError{Path: h.path, Cause: ErrNoCatalog}
	}

	c, err := LoadFile(h.path)
	if err != nil {
		h.logger.Error("tier catalog load failed",
			"path", h.path,
			"error", err,
			"keeping_previous", h.current.Load() != nil,
		)
		h.notify(nil, err)
		return err
	}

	for _, issue := range c.Validate() {
		h.logger.Warn("tier catalog issue",
			"path", h.path,
			"kind", issue.Kind,
			"tier", issue.Tier,
			"other", issue.Other,
			"message", issue.Message,
		)
	}

	h.current.Store(c)
	h.logger.Info("tier catalog loaded",
		"path", h.path,
		"tier_count", c.Len(),
		"step_count", len(c.AllSteps()),
	)
	h.notify(c, nil)

	return nil
}

func (h *Holder) notify(c *Catalog, err error) {
	h.mu.Lock()
	observers := make([]ReloadFunc, len(h.observers))
	copy(observers, h.observers)
	h.mu.Unlock()

	for _, fn := range observers {
		fn(c, err)
	}
}
