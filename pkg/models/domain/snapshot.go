package domain

import "time"

// Snapshot is a consistent view of the report store.
// An empty Path means no report has been generated yet.
type Snapshot struct {
	Path         string
	NextSequence int
	GeneratedAt  time.Time
}

func (s Snapshot) Available() bool {
	return s.Path != ""
}
