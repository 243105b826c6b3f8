package backup

import "photovault/internal/history"

// Outcome is the settled result of one media item. Exactly one of
// Duplicate, Downloaded, or Err describes how the item ended; Processed
// qualifies a download whose artifact was converted.
type Outcome struct {
	ItemID     string
	Name       string // final filename once derived, the API filename before that
	Path       string // artifact location on disk, empty when nothing was written
	Duplicate  bool   // refused by the dedup gate, no transfer attempted
	Downloaded bool   // payload landed on disk
	Processed  bool   // HEIC artifact converted to JPEG
	Err        error  // terminal per-item failure; the run continues
}

// historyLabel maps the outcome onto the label stored in run history.
func (o Outcome) historyLabel() string {
	switch {
	case o.Err != nil:
		return history.OutcomeFailed
	case o.Duplicate:
		return history.OutcomeDuplicate
	case o.Processed:
		return history.OutcomeConverted
	default:
		return history.OutcomeDownloaded
	}
}
