package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/warden/pkg/trail"
)

// MemoryStorage implements trail.Storage in memory.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*trail.Record
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *trail.Record) error {
	if record == nil {
		return trail.ErrNilRecord
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, copyRecord(record))
	return nil
}

// Query returns matching records, oldest first.
func (s *MemoryStorage) Query(ctx context.Context, query *trail.Query) ([]*trail.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*trail.Record{}
	for _, record := range s.records {
		if matches(record, query) {
			results = append(results, copyRecord(record))
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Time.Before(results[j].Time)
	})

	if limit := limitOf(query); len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *trail.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, record := range s.records {
		if matches(record, query) {
			n++
		}
	}
	return n, nil
}

// DeleteSession removes every record of a session.
func (s *MemoryStorage) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	return s.deleteWhere(func(r *trail.Record) bool { return r.SessionID == sessionID }), nil
}

// DeleteOlderThan removes records recorded before cutoff.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteWhere(func(r *trail.Record) bool { return r.Time.Before(cutoff) }), nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) deleteWhere(drop func(*trail.Record) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if drop(record) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = nil
	}
	s.records = kept
	return deleted
}

func matches(record *trail.Record, query *trail.Query) bool {
	if query == nil {
		return true
	}
	if query.SessionID != "" && record.SessionID != query.SessionID {
		return false
	}
	if query.Outcome != "" && record.Outcome != query.Outcome {
		return false
	}
	if query.StartTime != nil && record.Time.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Time.After(*query.EndTime) {
		return false
	}
	return true
}

func copyRecord(record *trail.Record) *trail.Record {
	c := *record
	if record.Missing != nil {
		c.Missing = append([]string(nil), record.Missing...)
	}
	if record.Score != nil {
		v := *record.Score
		c.Score = &v
	}
	return &c
}
