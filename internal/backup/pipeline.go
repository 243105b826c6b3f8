package backup

import (
	"context"
	"encoding/json"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"photovault/internal/fileutil"
	"photovault/internal/history"
	"photovault/internal/ledger"
	"photovault/internal/library"
	"photovault/internal/logging"
	"photovault/internal/media"
	"photovault/internal/services"
)

// run holds the state of one Run invocation. The collector goroutine is
// the only writer of stats and history after processing starts; workers
// hand everything back as Outcome values.
type run struct {
	o        *Orchestrator
	id       string
	opts     RunOptions
	logger   *slog.Logger
	stats    *RunStats
	started  time.Time
	detached context.Context
	histRun  *history.Run
	mirrorOn bool

	enumErr     error
	interrupted bool
}

func (r *run) beginHistory(ctx context.Context) {
	if r.o.history == nil {
		return
	}
	histRun, err := r.o.history.BeginRun(ctx, history.KindBackup, r.opts.AlbumID)
	if err != nil {
		r.logger.Warn("history unavailable for this run", logging.Error(err))
		return
	}
	r.histRun = histRun
}

// process streams the listing through the worker pool and blocks until
// every dispatched item has settled. Workers run on the detached context
// so an interrupt stops dispatch without abandoning in-flight items.
func (r *run) process(ctx context.Context) {
	workers := r.o.cfg.Backup.Workers
	if workers < 1 {
		workers = 1
	}

	items := make(chan *library.MediaItem)
	outcomes := make(chan Outcome)

	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			for item := range items {
				outcomes <- r.processItem(r.detached, item)
			}
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for outcome := range outcomes {
			r.settle(outcome)
		}
	}()

	iterator := r.o.source.Items(ctx, r.opts.AlbumID)
	dispatched := false
dispatch:
	for iterator.Next() {
		item := iterator.Item()
		select {
		case items <- item:
			r.stats.AddTotal(1)
			if !dispatched {
				dispatched = true
				r.o.setPhase(r.logger, PhaseProcessing)
			}
		case <-ctx.Done():
			break dispatch
		}
	}
	close(items)
	wg.Wait()
	close(outcomes)
	<-collectorDone

	if ctx.Err() != nil {
		r.interrupted = true
		r.logger.Info("run interrupted; in-flight items were drained",
			logging.String(logging.FieldEventType, "run_interrupted"),
			logging.Int("settled", r.stats.Snapshot().Settled()))
		return
	}
	if err := iterator.Err(); err != nil {
		r.enumErr = err
		logging.ErrorWithContext(r.logger, "enumeration stopped early", "enumeration_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "items listed before the failure were still processed"))
	}
}

// settle applies one outcome to the counters, history, and progress.
// Runs on the collector goroutine only.
func (r *run) settle(outcome Outcome) {
	r.stats.Apply(outcome)
	r.recordHistory(outcome)

	if r.o.progress != nil {
		r.o.progress(r.stats.Snapshot(), outcome)
	}

	logger := r.logger.With(logging.String(logging.FieldItemID, outcome.ItemID))
	switch {
	case outcome.Err != nil:
		logging.ErrorWithContext(logger, "item failed", services.FailureKind(outcome.Err),
			logging.String("filename", outcome.Name),
			logging.Error(outcome.Err),
			logging.String(logging.FieldImpact, "item skipped; run continues"))
	case outcome.Duplicate:
		logger.Debug("duplicate skipped", logging.String("filename", outcome.Name))
	default:
		logger.Debug("item stored",
			logging.String("filename", outcome.Name),
			logging.Bool("converted", outcome.Processed))
	}
}

func (r *run) recordHistory(outcome Outcome) {
	if r.histRun == nil {
		return
	}
	message := ""
	if outcome.Err != nil {
		message = outcome.Err.Error()
	}
	err := r.o.history.RecordItem(r.detached, r.histRun.ID, outcome.ItemID, outcome.Name, outcome.historyLabel(), message)
	if err != nil {
		r.logger.Warn("history item not recorded",
			logging.Error(err),
			logging.String(logging.FieldItemID, outcome.ItemID))
	}
}

// processItem settles one media item. Failures land in the Outcome; only
// the dedup gate can finish the item before a transfer is attempted.
func (r *run) processItem(ctx context.Context, item *library.MediaItem) Outcome {
	o := r.o
	outcome := Outcome{ItemID: item.ID, Name: item.Filename}

	ctx = services.WithItemID(ctx, item.ID)
	logger := logging.WithContext(ctx, r.logger)

	claimed := false
	if o.cfg.Dedup.Enabled {
		if !o.ledger.Claim(item.ID) {
			outcome.Duplicate = true
			return outcome
		}
		claimed = true
	}
	// A failed item must not pin its identity; the next run retries it.
	defer func() {
		if claimed && outcome.Err != nil {
			o.ledger.Release(item.ID)
		}
	}()

	locator, original := item.DownloadLocator()
	finalName := media.DeriveFilename(original, item.MediaMetadata.CreationTime)
	destPath := filepath.Join(o.cfg.PhotosDir(), finalName)
	outcome.Name = finalName

	if err := o.fetcher.Fetch(ctx, locator, destPath); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Downloaded = true
	outcome.Path = destPath

	if o.converter != nil && media.NeedsConversion(finalName) {
		converted, err := o.converter.ConvertToJPEG(ctx, destPath)
		if err != nil {
			logging.WarnWithContext(logger, "conversion failed; keeping original", "conversion_failed",
				logging.String("filename", finalName),
				logging.Error(err))
		} else {
			destPath = converted
			finalName = filepath.Base(converted)
			outcome.Path = converted
			outcome.Name = finalName
			outcome.Processed = true
		}
	}

	if o.cfg.Dedup.Enabled {
		record := ledger.Record{
			Filename:     finalName,
			DownloadTime: float64(time.Now().UnixMilli()) / 1000.0,
		}
		digest, err := media.HashFile(destPath, o.cfg.Dedup.HashAlgorithm, o.cfg.Backup.ChunkSize)
		if err != nil {
			logging.WarnWithContext(logger, "hash failed; recording without digest", "hash_failed",
				logging.String("filename", finalName),
				logging.Error(err))
		} else {
			record.Hash = digest
		}
		if err := o.ledger.Commit(item.ID, record); err != nil {
			logger.Warn("ledger journal append failed; record is in memory only",
				logging.Error(err))
		}
		claimed = false
	}

	if err := r.writeSidecar(item, finalName); err != nil {
		logger.Warn("metadata sidecar not written",
			logging.String("filename", finalName),
			logging.Error(err))
	}

	if r.mirrorOn {
		objectName := path.Join("photos", finalName)
		if err := o.mirror.Upload(ctx, destPath, objectName); err != nil {
			logger.Warn("mirror upload failed",
				logging.String("object", objectName),
				logging.Error(err))
		}
	}

	return outcome
}

// writeSidecar stores the flattened item descriptor next to the ledger,
// named after the final artifact's stem.
func (r *run) writeSidecar(item *library.MediaItem, finalName string) error {
	stem := strings.TrimSuffix(finalName, filepath.Ext(finalName))
	sidecarPath := filepath.Join(r.o.cfg.MetadataDir(), stem+".json")

	data, err := json.MarshalIndent(item.Metadata(), "", "  ")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "backup", "sidecar", "marshal metadata", err)
	}
	if err := fileutil.WriteFileAtomic(sidecarPath, append(data, '\n'), 0o644); err != nil {
		return services.Wrap(services.ErrPersistence, "backup", "sidecar", "write sidecar", err)
	}
	return nil
}

// finalize snapshots the ledger, writes the run report, closes the
// history row, and notifies. Persistence failures here are logged and
// swallowed; the run's work is already on disk.
func (r *run) finalize() *Report {
	if err := r.o.ledger.Save(); err != nil {
		logging.WarnWithContext(r.logger, "ledger snapshot failed", "ledger_save_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "journal is kept; next run replays it"))
	}

	finished := time.Now().UTC()
	report := &Report{
		RunID:           r.id,
		StartedAt:       r.started,
		FinishedAt:      finished,
		DurationSeconds: finished.Sub(r.started).Seconds(),
		AlbumID:         r.opts.AlbumID,
		Interrupted:     r.interrupted,
		Stats:           r.stats.Snapshot(),
		Config:          reportConfig(r.o.cfg),
	}
	if reportPath, err := report.WriteFile(r.o.cfg); err != nil {
		r.logger.Warn("run report not written", logging.Error(err))
	} else {
		report.Path = reportPath
		r.logger.Info("run report written", logging.String("path", reportPath))
	}

	r.finishHistory(report)

	duration := finished.Sub(r.started)
	snapshot := report.Stats
	if err := r.o.notifier.NotifyRunCompleted(r.detached, snapshot.Downloaded, snapshot.SkippedDuplicates, snapshot.Errors, duration); err != nil {
		r.logger.Debug("completion notification not delivered", logging.Error(err))
	}

	r.logger.Info("backup run complete",
		logging.Int("total_items", snapshot.TotalItems),
		logging.Int("downloaded", snapshot.Downloaded),
		logging.Int("processed", snapshot.Processed),
		logging.Int("skipped_duplicates", snapshot.SkippedDuplicates),
		logging.Int("errors", snapshot.Errors),
		logging.Duration("duration", duration))

	return report
}

func (r *run) finishHistory(report *Report) {
	if r.histRun == nil {
		return
	}
	status := history.StatusCompleted
	if r.interrupted || r.enumErr != nil {
		status = history.StatusAborted
	}
	snapshot := report.Stats
	err := r.o.history.FinishRun(r.detached, r.histRun.ID, status,
		snapshot.TotalItems, snapshot.Downloaded, snapshot.Processed, snapshot.SkippedDuplicates, snapshot.Errors)
	if err != nil {
		r.logger.Warn("history row not finished", logging.Error(err))
	}
}
