package backup

import "sync"

// RunStats accumulates run counters behind a mutex. Workers never touch
// it; the collector applies each settled Outcome exactly once, so
// Downloaded + SkippedDuplicates + Errors always equals the number of
// settled items and never exceeds Total.
type RunStats struct {
	mu         sync.Mutex
	total      int
	downloaded int
	processed  int
	skipped    int
	errors     int
}

// AddTotal counts items handed to a worker.
func (s *RunStats) AddTotal(n int) {
	s.mu.Lock()
	s.total += n
	s.mu.Unlock()
}

// Apply folds one settled outcome into the counters. A duplicate only
// ever advances the skip counter; it is never also a download.
func (s *RunStats) Apply(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case o.Err != nil:
		s.errors++
	case o.Duplicate:
		s.skipped++
	default:
		s.downloaded++
		if o.Processed {
			s.processed++
		}
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (s *RunStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		TotalItems:        s.total,
		Downloaded:        s.downloaded,
		Processed:         s.processed,
		SkippedDuplicates: s.skipped,
		Errors:            s.errors,
	}
}

// Snapshot is a frozen view of RunStats. The JSON keys are the stable
// vocabulary of run reports; external tooling parses them.
type Snapshot struct {
	TotalItems        int `json:"total_items"`
	Downloaded        int `json:"downloaded"`
	Processed         int `json:"processed"`
	SkippedDuplicates int `json:"skipped_duplicates"`
	Errors            int `json:"errors"`
}

// Settled reports how many items have reached a terminal outcome.
func (s Snapshot) Settled() int {
	return s.Downloaded + s.SkippedDuplicates + s.Errors
}
