package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mercator-hq/warden/pkg/trail"
)

func backends(t *testing.T) map[string]trail.Storage {
	t.Helper()

	sqlite, err := NewSQLiteStorage(&SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "nested", "trail.db"),
	}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]trail.Storage{
		"memory": NewMemoryStorage(),
		"sqlite": sqlite,
	}
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(id, session, outcome string, offset time.Duration) *trail.Record {
	return &trail.Record{
		ID:          id,
		SessionID:   session,
		Time:        base.Add(offset),
		Tool:        "Edit",
		Kind:        "mutate",
		Class:       "mutate",
		Outcome:     outcome,
		ActionCount: 1,
	}
}

func TestStorage_StoreAndQuery(t *testing.T) {
	ctx := context.Background()
	score := 42.5

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			full := &trail.Record{
				ID:          "r1",
				SessionID:   "abc",
				Time:        base,
				Tool:        "Task",
				Kind:        "invoke-agent",
				Identifier:  "plan",
				Score:       &score,
				Class:       "orchestrate",
				Outcome:     "block",
				Rule:        "prerequisites",
				Reason:      "missing-prerequisites",
				Missing:     []string{"plan", "review"},
				Explanation: "tier high requires plan, review",
				Category:    "policy",
				Advisory:    true,
				Tier:        "high",
				ActionCount: 3,
			}
			if err := s.Store(ctx, full); err != nil {
				t.Fatalf("Store() error = %v", err)
			}

			got, err := s.Query(ctx, &trail.Query{SessionID: "abc"})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("Query() returned %d records, want 1", len(got))
			}
			r := got[0]
			if !r.Time.Equal(full.Time) {
				t.Errorf("Time = %v, want %v", r.Time, full.Time)
			}
			r.Time = full.Time
			if !reflect.DeepEqual(r, full) {
				t.Errorf("Query() = %+v, want %+v", r, full)
			}
			if !r.Blocked() {
				t.Error("Blocked() = false for a block record")
			}
		})
	}
}

func TestStorage_Filters(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range []*trail.Record{
				record("a2", "a", "allow", 2*time.Minute),
				record("a1", "a", "block", time.Minute),
				record("a3", "a", "allow-and-record", 3*time.Minute),
				record("b1", "b", "allow", time.Minute),
			} {
				if err := s.Store(ctx, r); err != nil {
					t.Fatalf("Store(%s) error = %v", r.ID, err)
				}
			}

			got, err := s.Query(ctx, &trail.Query{SessionID: "a"})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if ids := idsOf(got); !reflect.DeepEqual(ids, []string{"a1", "a2", "a3"}) {
				t.Errorf("session a ids = %v, want oldest first", ids)
			}

			blocked, _ := s.Query(ctx, &trail.Query{Outcome: "block"})
			if ids := idsOf(blocked); !reflect.DeepEqual(ids, []string{"a1"}) {
				t.Errorf("blocked ids = %v", ids)
			}

			start := base.Add(2 * time.Minute)
			late, _ := s.Query(ctx, &trail.Query{StartTime: &start})
			if ids := idsOf(late); !reflect.DeepEqual(ids, []string{"a2", "a3"}) {
				t.Errorf("late ids = %v", ids)
			}

			limited, _ := s.Query(ctx, &trail.Query{Limit: 2})
			if len(limited) != 2 {
				t.Errorf("limited query returned %d records, want 2", len(limited))
			}

			n, err := s.Count(ctx, nil)
			if err != nil || n != 4 {
				t.Errorf("Count(nil) = %d, %v; want 4", n, err)
			}
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, r := range []*trail.Record{
				record("a1", "a", "allow", 0),
				record("a2", "a", "allow", time.Hour),
				record("b1", "b", "allow", 0),
				record("b2", "b", "allow", 2*time.Hour),
			} {
				if err := s.Store(ctx, r); err != nil {
					t.Fatalf("Store() error = %v", err)
				}
			}

			n, err := s.DeleteSession(ctx, "a")
			if err != nil || n != 2 {
				t.Fatalf("DeleteSession(a) = %d, %v; want 2", n, err)
			}

			n, err = s.DeleteOlderThan(ctx, base.Add(time.Hour))
			if err != nil || n != 1 {
				t.Fatalf("DeleteOlderThan() = %d, %v; want 1", n, err)
			}

			left, _ := s.Query(ctx, &trail.Query{})
			if ids := idsOf(left); !reflect.DeepEqual(ids, []string{"b2"}) {
				t.Errorf("remaining ids = %v, want [b2]", ids)
			}
		})
	}
}

func TestStorage_NilRecord(t *testing.T) {
	for name, s := range backends(t) {
		if err := s.Store(context.Background(), nil); !errors.Is(err, trail.ErrNilRecord) {
			t.Errorf("%s: Store(nil) error = %v, want ErrNilRecord", name, err)
		}
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trail.db")
	ctx := context.Background()

	s, err := NewSQLiteStorage(&SQLiteConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	if err := s.Store(ctx, record("r1", "abc", "allow", 0)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = NewSQLiteStorage(&SQLiteConfig{Path: path}, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	n, err := s.Count(ctx, &trail.Query{SessionID: "abc"})
	if err != nil || n != 1 {
		t.Errorf("Count() after reopen = %d, %v; want 1", n, err)
	}
}

func idsOf(records []*trail.Record) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}
