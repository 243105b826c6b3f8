package takeout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"photovault/internal/config"
	"photovault/internal/fileutil"
	"photovault/internal/history"
	"photovault/internal/logging"
	"photovault/internal/media"
	"photovault/internal/notifications"
	"photovault/internal/services"
)

// Stats accumulates counters across every archive of one import.
// Duplicates are payload-identical files seen earlier in the same
// import; Converted counts HEIC files that became JPEGs and is a subset
// of Processed.
type Stats struct {
	TotalFiles int
	Processed  int
	Duplicates int
	Converted  int
	Errors     int
}

// Converter turns a HEIC/HEIF artifact into a JPEG and reports the new
// path. *media.HEIFConverter satisfies it.
type Converter interface {
	ConvertToJPEG(ctx context.Context, src string) (string, error)
}

// History receives the import's run row. *history.Store satisfies it;
// nil disables persistence.
type History interface {
	BeginRun(ctx context.Context, kind, albumID string) (*history.Run, error)
	FinishRun(ctx context.Context, runID, status string, total, downloaded, processed, skipped, errored int) error
}

// Deps carries the importer collaborators. Nil fields get production
// defaults (or a noop where the configuration disables the concern).
type Deps struct {
	Converter Converter
	History   History
	Notifier  notifications.Service
	Logger    *slog.Logger
}

// Importer processes takeout archives into the backup root.
type Importer struct {
	cfg       *config.Config
	converter Converter
	history   History
	notifier  notifications.Service
	logger    *slog.Logger
}

// New wires an importer.
func New(cfg *config.Config, deps Deps) (*Importer, error) {
	if cfg == nil {
		return nil, errors.New("takeout: config is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "takeout")

	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
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

	return &Importer{
		cfg:       cfg,
		converter: converter,
		history:   deps.History,
		notifier:  notifier,
		logger:    logger,
	}, nil
}

// Process imports every archive named by args. Each argument is a zip
// file or a directory whose *.zip entries are imported in sorted order.
// Per-file and per-archive failures are counted and isolated; only
// setup problems (bad arguments, a held run lock) fail the whole
// import.
func (i *Importer) Process(ctx context.Context, args []string) (*Stats, error) {
	archives, err := expandArchives(args)
	if err != nil {
		return nil, err
	}

	unlock, err := fileutil.Lock(i.cfg.LockPath())
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return nil, services.Wrap(services.ErrValidation, "takeout", "lock",
				"another run is already active", err)
		}
		return nil, services.Wrap(services.ErrValidation, "takeout", "lock",
			"acquire run lock", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			i.logger.Warn("run lock release failed", logging.Error(err))
		}
	}()

	if err := i.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "takeout", "setup",
			"create backup directories", err)
	}

	logger := logging.WithContext(ctx, i.logger)
	detached := context.WithoutCancel(ctx)
	logger.Info("takeout import starting", logging.Int("archives", len(archives)))

	histID := ""
	if i.history != nil {
		histRun, err := i.history.BeginRun(ctx, history.KindTakeout, "")
		if err != nil {
			logger.Warn("history unavailable for this import", logging.Error(err))
		} else {
			histID = histRun.ID
		}
	}

	stats := &Stats{}
	seen := make(map[string]struct{})
	for _, archive := range archives {
		if ctx.Err() != nil {
			logger.Info("import interrupted",
				logging.String(logging.FieldEventType, "run_interrupted"),
				logging.Int("processed", stats.Processed))
			break
		}
		if err := i.processArchive(ctx, archive, stats, seen); err != nil {
			stats.Errors++
			logging.ErrorWithContext(logger, "archive not processed", "archive_failed",
				logging.String("archive", filepath.Base(archive)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "archive skipped; import continues"))
		}
	}

	if histID != "" {
		status := history.StatusCompleted
		if ctx.Err() != nil {
			status = history.StatusAborted
		}
		err := i.history.FinishRun(detached, histID, status,
			stats.TotalFiles, stats.Processed, stats.Converted, stats.Duplicates, stats.Errors)
		if err != nil {
			logger.Warn("history row not finished", logging.Error(err))
		}
	}
	if err := i.notifier.NotifyTakeoutCompleted(detached, stats.Processed, stats.Duplicates, stats.Errors); err != nil {
		logger.Debug("completion notification not delivered", logging.Error(err))
	}

	logger.Info("takeout import complete",
		logging.Int("total_files", stats.TotalFiles),
		logging.Int("processed", stats.Processed),
		logging.Int("duplicates", stats.Duplicates),
		logging.Int("converted", stats.Converted),
		logging.Int("errors", stats.Errors))

	return stats, nil
}

// expandArchives resolves the argument list to concrete zip paths.
func expandArchives(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, services.Wrap(services.ErrValidation, "takeout", "args",
			"no archives given", nil)
	}

	var archives []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "takeout", "args",
				fmt.Sprintf("stat %s", arg), err)
		}
		if info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(arg, "*.zip"))
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "takeout", "args",
					fmt.Sprintf("scan %s", arg), err)
			}
			sort.Strings(matches)
			archives = append(archives, matches...)
			continue
		}
		if !strings.EqualFold(filepath.Ext(arg), ".zip") {
			return nil, services.Wrap(services.ErrValidation, "takeout", "args",
				fmt.Sprintf("%s is neither a zip archive nor a directory", arg), nil)
		}
		archives = append(archives, arg)
	}
	if len(archives) == 0 {
		return nil, services.Wrap(services.ErrValidation, "takeout", "args",
			"no zip archives found", nil)
	}
	return archives, nil
}
