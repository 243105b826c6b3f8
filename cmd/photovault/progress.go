package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"

	"photovault/internal/backup"
	"photovault/internal/logging"
)

// newRunProgress picks the progress surface for a run: an interactive bar
// on a terminal, sampled log records otherwise. Both run on the collector
// goroutine, so neither needs locking. The finish func stops the bar once
// the run settles.
func newRunProgress(out io.Writer, logger *slog.Logger, jsonOut bool) (backup.ProgressFunc, func()) {
	if !jsonOut && writerIsTerminal(out) {
		return newBarProgress(out)
	}
	return newLogProgress(logger), func() {}
}

// newBarProgress renders a pb bar that grows its total while enumeration
// is still paging. The bar starts on the first settled item so a run that
// fails before processing never draws one.
func newBarProgress(out io.Writer) (backup.ProgressFunc, func()) {
	bar := pb.New(0)
	bar.SetTemplateString(`{{counters . }} {{bar . }} {{percent . }}`)
	bar.SetWriter(out)

	started := false
	progress := func(snapshot backup.Snapshot, _ backup.Outcome) {
		if !started {
			bar.Start()
			started = true
		}
		bar.SetTotal(int64(snapshot.TotalItems))
		bar.SetCurrent(int64(snapshot.Settled()))
	}
	finish := func() {
		if started {
			bar.Finish()
		}
	}
	return progress, finish
}

// newLogProgress emits a progress record when the completion percentage
// crosses a 10% bucket, so logs stay readable on large libraries.
func newLogProgress(logger *slog.Logger) backup.ProgressFunc {
	sampler := logging.NewProgressSampler(10)
	return func(snapshot backup.Snapshot, _ backup.Outcome) {
		percent := float64(-1)
		if snapshot.TotalItems > 0 {
			percent = float64(snapshot.Settled()) / float64(snapshot.TotalItems) * 100
		}
		if !sampler.ShouldLog(percent, "processing") {
			return
		}
		logger.Info("run progress",
			logging.Int("settled", snapshot.Settled()),
			logging.Int("total_items", snapshot.TotalItems),
			logging.Int("downloaded", snapshot.Downloaded),
			logging.Int("skipped_duplicates", snapshot.SkippedDuplicates),
			logging.Int("errors", snapshot.Errors))
	}
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
