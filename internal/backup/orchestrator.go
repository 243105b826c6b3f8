package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"photovault/internal/config"
	"photovault/internal/fileutil"
	"photovault/internal/ledger"
	"photovault/internal/logging"
	"photovault/internal/media"
	"photovault/internal/mirror"
	"photovault/internal/notifications"
	"photovault/internal/preflight"
	"photovault/internal/services"
	"photovault/internal/transfer"
)

// ProgressFunc observes every settled item. The snapshot counters move
// monotonically, but TotalItems can still grow while enumeration runs.
// Called from the collector goroutine, never concurrently.
type ProgressFunc func(snapshot Snapshot, outcome Outcome)

// Deps carries the orchestrator collaborators. Source and Ledger are
// required; nil fields otherwise get production defaults (or a noop
// where the configuration disables the concern).
type Deps struct {
	Source    Source
	Fetcher   Fetcher
	Converter Converter
	Ledger    *ledger.Ledger
	History   History
	Notifier  notifications.Service
	Mirror    mirror.Service
	Logger    *slog.Logger
	Progress  ProgressFunc
}

// Orchestrator drives backup runs end to end. It handles one run at a
// time; the run lock enforces the same across processes.
type Orchestrator struct {
	cfg       *config.Config
	source    Source
	fetcher   Fetcher
	converter Converter
	ledger    *ledger.Ledger
	history   History
	notifier  notifications.Service
	mirror    mirror.Service
	logger    *slog.Logger
	progress  ProgressFunc

	mu    sync.Mutex
	phase Phase
}

// RunOptions scope a single Run invocation.
type RunOptions struct {
	// AlbumID restricts the run to one album; empty means the whole
	// library.
	AlbumID string
	// DryRun enumerates and counts without locking, downloading, or
	// writing anything.
	DryRun bool
}

// New wires an orchestrator. The default fetcher is built after
// authentication so it can reuse the authenticated session.
func New(cfg *config.Config, deps Deps) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("backup: config is required")
	}
	if deps.Source == nil {
		return nil, errors.New("backup: source is required")
	}
	if deps.Ledger == nil {
		return nil, errors.New("backup: ledger is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "backup")

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	mirrorSvc := deps.Mirror
	if mirrorSvc == nil {
		svc, err := mirror.NewService(cfg, logger)
		if err != nil {
			return nil, err
		}
		mirrorSvc = svc
	}

	converter := deps.Converter
	if converter == nil && cfg.Processing.ConvertHEIC {
		conv, err := media.NewHEIFConverter(cfg.Processing.HEIFTool, cfg.Processing.JPEGQuality)
		if err != nil {
			logger.Warn("HEIC conversion unavailable", logging.Error(err))
		} else {
			converter = conv
		}
	}

	return &Orchestrator{
		cfg:       cfg,
		source:    deps.Source,
		fetcher:   deps.Fetcher,
		converter: converter,
		ledger:    deps.Ledger,
		history:   deps.History,
		notifier:  notifier,
		mirror:    mirrorSvc,
		logger:    logger,
		progress:  deps.Progress,
		phase:     PhaseIdle,
	}, nil
}

// Phase reports the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) setPhase(logger *slog.Logger, phase Phase) {
	o.mu.Lock()
	o.phase = phase
	o.mu.Unlock()
	logger.Debug("phase transition", logging.String(logging.FieldPhase, string(phase)))
}

// Run executes one backup run. Only authentication and setup failures
// produce a nil report; any run that reaches processing finalizes and
// returns its report, paired with the enumeration error when the listing
// stopped early.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	started := time.Now().UTC()
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, o.logger)
	// Finalization and notifications must survive an interrupt.
	detached := context.WithoutCancel(ctx)

	logger.Info("backup run starting",
		logging.String("scope", scopeLabel(opts.AlbumID)),
		logging.Bool("dry_run", opts.DryRun))

	o.setPhase(logger, PhaseAuthenticating)
	if err := o.source.Authenticate(ctx); err != nil {
		o.setPhase(logger, PhaseFailed)
		logging.ErrorWithContext(logger, "authentication failed", "auth_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, `check credentials and run "photovault login"`),
			logging.String(logging.FieldImpact, "run aborted before any transfer"))
		if nerr := o.notifier.NotifyRunFailed(detached, err, "authentication"); nerr != nil {
			logger.Debug("failure notification not delivered", logging.Error(nerr))
		}
		return nil, err
	}

	if opts.DryRun {
		return o.dryRun(ctx, logger, opts, started, runID)
	}

	if o.fetcher == nil {
		o.fetcher = transfer.NewDownloader(o.sessionClient(), transfer.SettingsFromConfig(o.cfg.Backup), o.logger)
	}

	unlock, err := fileutil.Lock(o.cfg.LockPath())
	if err != nil {
		o.setPhase(logger, PhaseFailed)
		if errors.Is(err, fileutil.ErrLocked) {
			return nil, services.Wrap(services.ErrValidation, "backup", "lock",
				"another run is already active", err)
		}
		return nil, services.Wrap(services.ErrValidation, "backup", "lock",
			"acquire run lock", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("run lock release failed", logging.Error(err))
		}
	}()

	if err := o.preflight(ctx, logger); err != nil {
		o.setPhase(logger, PhaseFailed)
		if nerr := o.notifier.NotifyRunFailed(detached, err, "preflight"); nerr != nil {
			logger.Debug("failure notification not delivered", logging.Error(nerr))
		}
		return nil, err
	}
	if err := o.cfg.EnsureDirectories(); err != nil {
		o.setPhase(logger, PhaseFailed)
		return nil, services.Wrap(services.ErrValidation, "backup", "setup",
			"create backup directories", err)
	}

	r := &run{
		o:        o,
		id:       runID,
		opts:     opts,
		logger:   logger,
		stats:    &RunStats{},
		started:  started,
		detached: detached,
		mirrorOn: o.checkMirror(ctx, logger),
	}
	r.beginHistory(ctx)

	if err := o.notifier.NotifyRunStarted(ctx, scopeLabel(opts.AlbumID)); err != nil {
		logger.Debug("start notification not delivered", logging.Error(err))
	}

	o.setPhase(logger, PhaseEnumerating)
	r.process(ctx)

	o.setPhase(logger, PhaseFinalizing)
	report := r.finalize()
	o.setPhase(logger, PhaseDone)

	return report, r.enumErr
}

// dryRun walks the listing and counts what a real run would do. Nothing
// is locked or written; the returned report stays in memory.
func (o *Orchestrator) dryRun(ctx context.Context, logger *slog.Logger, opts RunOptions, started time.Time, runID string) (*Report, error) {
	o.setPhase(logger, PhaseEnumerating)

	stats := &RunStats{}
	iterator := o.source.Items(ctx, opts.AlbumID)
	for iterator.Next() {
		item := iterator.Item()
		stats.AddTotal(1)
		if o.cfg.Dedup.Enabled && o.ledger.Contains(item.ID) {
			stats.Apply(Outcome{ItemID: item.ID, Name: item.Filename, Duplicate: true})
			continue
		}
		logger.Debug("would download",
			logging.String(logging.FieldItemID, item.ID),
			logging.String("filename", item.Filename))
	}
	enumErr := iterator.Err()

	finished := time.Now().UTC()
	snapshot := stats.Snapshot()
	report := &Report{
		RunID:           runID,
		StartedAt:       started,
		FinishedAt:      finished,
		DurationSeconds: finished.Sub(started).Seconds(),
		AlbumID:         opts.AlbumID,
		DryRun:          true,
		Stats:           snapshot,
		Config:          reportConfig(o.cfg),
	}

	logger.Info("dry run complete",
		logging.Int("total_items", snapshot.TotalItems),
		logging.Int("would_download", snapshot.TotalItems-snapshot.SkippedDuplicates),
		logging.Int("skipped_duplicates", snapshot.SkippedDuplicates))

	o.setPhase(logger, PhaseDone)
	return report, enumErr
}

// preflight runs the environment checks, logging every failure and
// aborting only on a fatal one.
func (o *Orchestrator) preflight(ctx context.Context, logger *slog.Logger) error {
	results := preflight.RunAll(ctx, o.cfg)
	for _, result := range results {
		if result.Passed {
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.Bool("fatal", result.Fatal))
	}
	if failed, ok := preflight.FatalFailure(results); ok {
		return services.Wrap(services.ErrValidation, "backup", "preflight",
			fmt.Sprintf("%s: %s", failed.Name, failed.Detail), nil)
	}
	return nil
}

// checkMirror verifies the mirror bucket when mirroring is enabled. A
// missing or unreachable bucket downgrades the run to local-only.
func (o *Orchestrator) checkMirror(ctx context.Context, logger *slog.Logger) bool {
	if !o.mirror.Enabled() {
		return false
	}
	if err := o.mirror.EnsureBucket(ctx); err != nil {
		logging.WarnWithContext(logger, "mirror unavailable; run continues local-only", "mirror_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "artifacts will not be mirrored this run"))
		return false
	}
	return true
}

// sessionClient returns the source's authenticated HTTP client when it
// exposes one; otherwise a vanilla client. Per-attempt timeouts live in
// the downloader, not here.
func (o *Orchestrator) sessionClient() *http.Client {
	if provider, ok := o.source.(interface{ HTTPClient() *http.Client }); ok {
		if client := provider.HTTPClient(); client != nil {
			return client
		}
	}
	return &http.Client{}
}

func scopeLabel(albumID string) string {
	if albumID == "" {
		return "entire library"
	}
	return "album " + albumID
}
