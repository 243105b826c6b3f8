package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"photovault/internal/backup"
	"photovault/internal/config"
	"photovault/internal/history"
	"photovault/internal/ledger"
	"photovault/internal/library"
	"photovault/internal/logging"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var albumID string
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the cloud library to the local vault",
		Long: "Backup enumerates the cloud library (or one album), downloads every " +
			"item not yet in the dedup ledger, converts HEIC to JPEG when enabled, " +
			"and writes metadata sidecars plus a run report. Interrupting a run " +
			"finishes the items already in flight and records the partial result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runBackup(cmd, cfg, backup.RunOptions{AlbumID: albumID, DryRun: dryRun}, jsonOut)
		},
	}

	cmd.Flags().StringVar(&albumID, "album", "", "Back up a single album by ID")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Enumerate and count without downloading or writing")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write the run report as JSON to stdout")
	return cmd
}

func runBackup(cmd *cobra.Command, cfg *config.Config, opts backup.RunOptions, jsonOut bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := newRunLogger(cfg, jsonOut, opts.DryRun)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	led := ledger.Open(cfg.LedgerPath(), logger)
	defer led.Close()

	deps := backup.Deps{
		Source: backup.NewClientSource(library.NewClient(cfg.Library, logger)),
		Ledger: led,
		Logger: logger,
	}

	if !opts.DryRun {
		store, err := history.Open(cfg)
		if err != nil {
			logger.Warn("run history unavailable", logging.Error(err))
		} else {
			defer store.Close()
			deps.History = store
		}
	}

	progress, finishProgress := newRunProgress(cmd.OutOrStdout(), logger, jsonOut)
	deps.Progress = progress

	orchestrator, err := backup.New(cfg, deps)
	if err != nil {
		return err
	}

	report, err := orchestrator.Run(signalCtx, opts)
	finishProgress()
	if report == nil {
		return err
	}
	if err != nil {
		// Listing stopped early; everything settled before the stop is
		// already on disk and in the report.
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	if jsonOut {
		return writeJSON(cmd, report)
	}
	printRunSummary(cmd.OutOrStdout(), report)
	return nil
}

func printRunSummary(out io.Writer, report *backup.Report) {
	stats := report.Stats
	duration := time.Duration(report.DurationSeconds * float64(time.Second)).Round(time.Second)

	if report.DryRun {
		fmt.Fprintf(out, "Dry run: %d items, %d would download, %d already backed up\n",
			stats.TotalItems, stats.TotalItems-stats.SkippedDuplicates, stats.SkippedDuplicates)
		return
	}

	fmt.Fprintf(out, "Run %s finished in %s: %d items, %d downloaded (%d converted), %d duplicates skipped, %d errors\n",
		report.RunID, duration, stats.TotalItems, stats.Downloaded, stats.Processed,
		stats.SkippedDuplicates, stats.Errors)
	if report.Interrupted {
		fmt.Fprintln(out, "Run was interrupted; re-run to back up the remaining items")
	}
	if report.Path != "" {
		fmt.Fprintf(out, "Report: %s\n", report.Path)
	}
}
