package tier

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const lowOnly = `
tiers:
  - name: low
    range: [0, 100]
    allow_direct_actions: true
`

const strictOnly = `
tiers:
  - name: strict
    range: [0, 100]
    required_steps: [plan]
`

func writeCatalog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHolder_LoadAndKeepPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	writeCatalog(t, path, lowOnly)

	h := NewHolder(path, nil)
	var reloads atomic.Int32
	h.OnReload(func(c *Catalog, err error) { reloads.Add(1) })

	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := h.Current().Lookup("low"); !ok {
		t.Fatal("Current() missing tier low")
	}

	writeCatalog(t, path, "tiers: [broken")
	if err := h.Load(); err == nil {
		t.Fatal("Load() of broken catalog error = nil")
	}
	if _, ok := h.Current().Lookup("low"); !ok {
		t.Error("failed reload should keep previous catalog")
	}
	if got := reloads.Load(); got != 2 {
		t.Errorf("reload callbacks = %d, want 2", got)
	}
}

func TestHolder_MissingFileLeavesNil(t *testing.T) {
	h := NewHolder(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	if err := h.Load(); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
	if h.Current() != nil {
		t.Error("Current() should be nil after failed initial load")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	writeCatalog(t, path, lowOnly)

	h := NewHolder(path, nil)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := DefaultWatcherConfig()
	cfg.DebounceInterval = 20 * time.Millisecond
	w, err := NewWatcher(cfg, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx, h) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	writeCatalog(t, path, strictOnly)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := h.Current().Lookup("strict"); ok {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if _, ok := h.Current().Lookup("strict"); !ok {
		t.Fatal("catalog was not reloaded after file change")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestDebouncer_CoalescesEvents(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback calls = %d, want 1", got)
	}
}
