package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"mercator-hq/warden/pkg/session"
	"mercator-hq/warden/pkg/trail"
	"mercator-hq/warden/pkg/trail/storage"
)

func seed(t *testing.T, store trail.Storage, now time.Time) {
	t.Helper()
	for id, age := range map[string]time.Duration{
		"old-1": 10 * 24 * time.Hour,
		"old-2": 8 * 24 * time.Hour,
		"new-1": time.Hour,
	} {
		if err := store.Store(context.Background(), &trail.Record{
			ID: id, SessionID: "abc", Time: now.Add(-age), Outcome: "allow",
		}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPruner_Prune(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		retention time.Duration
		wantGone  int64
		wantLeft  int64
	}{
		{"seven days", 7 * 24 * time.Hour, 2, 1},
		{"nine days", 9 * 24 * time.Hour, 1, 2},
		{"keep forever", 0, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStorage()
			seed(t, store, now)

			p := NewPruner(store, &Config{Retention: tt.retention}, nil)
			p.now = func() time.Time { return now }

			result, err := p.Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if result.Records != tt.wantGone {
				t.Errorf("Records = %d, want %d", result.Records, tt.wantGone)
			}
			if left, _ := store.Count(context.Background(), nil); left != tt.wantLeft {
				t.Errorf("remaining = %d, want %d", left, tt.wantLeft)
			}
		})
	}
}

func TestPruner_StaleSessions(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewMemoryStore()
	if err := sessions.Save(ctx, session.New("abc")); err != nil {
		t.Fatal(err)
	}

	p := NewPruner(storage.NewMemoryStorage(), &Config{StaleAfter: time.Nanosecond}, nil).WithSessions(sessions)
	time.Sleep(5 * time.Millisecond)

	result, err := p.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if result.Sessions != 1 {
		t.Errorf("Sessions = %d, want 1", result.Sessions)
	}
	if st, _ := sessions.Load(ctx, "abc"); st != nil {
		t.Error("stale session survived pruning")
	}
}

type failingStorage struct{ *storage.MemoryStorage }

func (failingStorage) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk on fire")
}

func TestPruner_Error(t *testing.T) {
	p := NewPruner(failingStorage{storage.NewMemoryStorage()}, &Config{Retention: time.Hour}, nil)
	if _, err := p.Prune(context.Background()); err == nil {
		t.Error("Prune() error = nil, want error")
	}
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{"daily", "0 3 * * *", true, false},
		{"descriptor", "@hourly", true, false},
		{"empty", "", false, false},
		{"invalid", "invalid cron", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPruner(storage.NewMemoryStorage(), &Config{PruneSchedule: tt.schedule, Retention: time.Hour}, nil)
			s := NewScheduler(p, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Fatalf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if s.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", s.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning && s.NextRun() == nil {
				t.Error("NextRun() = nil for running scheduler")
			}

			s.Stop()
			if s.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_RunsPruning(t *testing.T) {
	store := storage.NewMemoryStorage()
	seed(t, store, time.Now())

	p := NewPruner(store, &Config{PruneSchedule: "@every 1s", Retention: 24 * time.Hour}, nil)
	s := NewScheduler(p, nil)

	done := make(chan Result, 1)
	s.OnPrune(func(r Result, err error) {
		if err == nil {
			select {
			case done <- r:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	select {
	case r := <-done:
		if r.Records != 2 {
			t.Errorf("scheduled pass removed %d records, want 2", r.Records)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled pruning did not run")
	}
}
