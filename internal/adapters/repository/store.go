// Package repository holds the current dataset behind a generation guard.
//
// Every load asks for a generation with Begin before it starts fetching and
// hands its result to Commit when done. Only the most recently issued
// generation may publish, so a slow fetch that finishes after a newer one
// is dropped instead of overwriting fresher data.
package repository

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/pkg/metrics"
)

// Snapshot is an immutable view of the published dataset.
type Snapshot struct {
	Generation uint64
	Records    []model.Record
	Source     string
	LoadedAt   time.Time
}

// Store publishes datasets under a generation guard.
type Store struct {
	mu     sync.Mutex
	issued uint64
	now    func() time.Time

	snapshot atomic.Pointer[Snapshot]
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{Records: []model.Record{}})
	return s
}

// Begin issues the next generation.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Latest returns the most recently issued generation.
func (s *Store) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Commit publishes records when gen is still the latest generation and
// reports whether it did.
func (s *Store) Commit(gen uint64, source string, records []model.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.issued {
		metrics.RecordStaleDiscarded()
		return false
	}

	cp := make([]model.Record, len(records))
	copy(cp, records)
	s.snapshot.Store(&Snapshot{
		Generation: gen,
		Records:    cp,
		Source:     source,
		LoadedAt:   s.now(),
	})
	metrics.UpdateRecordsLoaded(len(cp))
	return true
}

// Snapshot returns the published dataset. Callers must not mutate Records.
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Records returns a copy of the published records.
func (s *Store) Records() []model.Record {
	snap := s.snapshot.Load()
	out := make([]model.Record, len(snap.Records))
	copy(out, snap.Records)
	return out
}
