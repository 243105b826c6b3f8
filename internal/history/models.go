package history

import "time"

// Run kinds.
const (
	KindBackup  = "backup"
	KindTakeout = "takeout"
)

// Run statuses. Aborted marks a run stopped early by an interrupt or an
// enumeration failure; work settled before the stop is still recorded.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
	StatusFailed    = "failed"
)

// Item outcomes.
const (
	OutcomeDownloaded = "downloaded"
	OutcomeConverted  = "converted"
	OutcomeDuplicate  = "duplicate"
	OutcomeFailed     = "failed"
)

// Run is one backup or takeout run.
type Run struct {
	ID         string
	Kind       string
	AlbumID    string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Total      int
	Downloaded int
	Processed  int
	Skipped    int
	Errors     int
}

// Duration returns how long the run took, or how long it has been running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}

// RunItem is one settled item inside a run.
type RunItem struct {
	ID           int64
	RunID        string
	ItemID       string
	Filename     string
	Outcome      string
	ErrorMessage string
	RecordedAt   time.Time
}
