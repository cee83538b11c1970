package recorder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"mercator-hq/warden/pkg/trail"
	"mercator-hq/warden/pkg/trail/storage"
)

func TestRecorder_AssignsIDAndDrainsOnClose(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil, nil)

	for i := 0; i < 10; i++ {
		if err := r.Record(&trail.Record{SessionID: "abc", Kind: "read", Class: "read", Outcome: "allow"}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, err := store.Query(context.Background(), &trail.Query{SessionID: "abc"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("stored %d records, want 10", len(got))
	}

	seen := map[string]bool{}
	for _, rec := range got {
		if _, err := uuid.Parse(rec.ID); err != nil {
			t.Errorf("record ID %q is not a UUID", rec.ID)
		}
		if seen[rec.ID] {
			t.Errorf("duplicate record ID %q", rec.ID)
		}
		seen[rec.ID] = true
		if rec.Time.IsZero() {
			t.Error("record time not set")
		}
	}
}

func TestRecorder_KeepsGivenIDAndTime(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil, nil)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := r.Record(&trail.Record{ID: "fixed", SessionID: "abc", Time: at, Outcome: "allow"}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	r.Close()

	got, _ := store.Query(context.Background(), nil)
	if len(got) != 1 || got[0].ID != "fixed" || !got[0].Time.Equal(at) {
		t.Errorf("stored %+v", got)
	}
}

func TestRecorder_ResetIsOrdered(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil, nil)
	ctx := context.Background()

	r.Record(&trail.Record{SessionID: "abc", Outcome: "allow"})
	r.Record(&trail.Record{SessionID: "other", Outcome: "allow"})
	if err := r.Reset(ctx, "abc"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	r.Record(&trail.Record{SessionID: "abc", Outcome: "block"})
	r.Close()

	got, _ := store.Query(ctx, &trail.Query{SessionID: "abc"})
	if len(got) != 1 || got[0].Outcome != "block" {
		t.Errorf("session trail after reset = %+v, want only the post-reset record", got)
	}
	if n, _ := store.Count(ctx, &trail.Query{SessionID: "other"}); n != 1 {
		t.Errorf("other session count = %d, want 1", n)
	}
}

func TestRecorder_ClosedRejects(t *testing.T) {
	r := NewRecorder(storage.NewMemoryStorage(), nil, nil)
	r.Close()

	if err := r.Record(&trail.Record{}); !errors.Is(err, trail.ErrRecorderClosed) {
		t.Errorf("Record() after Close error = %v", err)
	}
	if err := r.Reset(context.Background(), "abc"); !errors.Is(err, trail.ErrRecorderClosed) {
		t.Errorf("Reset() after Close error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := r.Record(nil); !errors.Is(err, trail.ErrNilRecord) {
		t.Errorf("Record(nil) error = %v", err)
	}
}

// blockingStorage holds every Store call until release is closed.
type blockingStorage struct {
	*storage.MemoryStorage
	release chan struct{}
	once    sync.Once
	started chan struct{}
}

func (b *blockingStorage) Store(ctx context.Context, rec *trail.Record) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return b.MemoryStorage.Store(ctx, rec)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStorage{
		MemoryStorage: storage.NewMemoryStorage(),
		release:       make(chan struct{}),
		started:       make(chan struct{}),
	}
	r := NewRecorder(store, &Config{AsyncBuffer: 1, WriteTimeout: time.Second}, nil)

	var dropped atomic.Int32
	r.OnDrop(func(n int) { dropped.Add(int32(n)) })

	// First record occupies the worker, second fills the queue.
	r.Record(&trail.Record{SessionID: "abc"})
	<-store.started
	if err := r.Record(&trail.Record{SessionID: "abc"}); err != nil {
		t.Fatalf("second Record() error = %v", err)
	}

	if err := r.Record(&trail.Record{SessionID: "abc"}); !errors.Is(err, trail.ErrBufferFull) {
		t.Errorf("third Record() error = %v, want ErrBufferFull", err)
	}
	if r.Dropped() != 1 || dropped.Load() != 1 {
		t.Errorf("Dropped() = %d, callback = %d; want 1", r.Dropped(), dropped.Load())
	}

	close(store.release)
	r.Close()

	if n, _ := store.Count(context.Background(), nil); n != 2 {
		t.Errorf("stored %d records, want 2", n)
	}
}
