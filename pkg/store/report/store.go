package report

import (
	"sync/atomic"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/domain"
)

// Store tracks the current report and the sequence number of the next one.
// Both fields live in one immutable snapshot that is swapped atomically, so
// readers never observe a path from one generation paired with the sequence
// of another.
type Store struct {
	current atomic.Pointer[domain.Snapshot]
	now     func() time.Time
}

// NewStore creates an empty store whose first report gets firstSequence.
// Values below 1 start at 1.
func NewStore(firstSequence int) *Store {
	if firstSequence < 1 {
		firstSequence = 1
	}
	s := &Store{now: time.Now}
	s.current.Store(&domain.Snapshot{NextSequence: firstSequence})
	return s
}

func (s *Store) Snapshot() domain.Snapshot {
	return *s.current.Load()
}

func (s *Store) NextSequence() int {
	return s.current.Load().NextSequence
}

// RecordGeneration makes path the current report and advances the sequence.
func (s *Store) RecordGeneration(path string) domain.Snapshot {
	for {
		old := s.current.Load()
		next := &domain.Snapshot{
			Path:         path,
			NextSequence: old.NextSequence + 1,
			GeneratedAt:  s.now(),
		}
		if s.current.CompareAndSwap(old, next) {
			return *next
		}
	}
}
