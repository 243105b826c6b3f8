package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"photovault/internal/history"
	"photovault/internal/logging"
	"photovault/internal/takeout"
)

func newTakeoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "takeout <archive-or-dir>...",
		Short: "Import Google Takeout archives into the vault",
		Long: "Takeout extracts each zip archive (a directory argument expands to " +
			"its *.zip files), deduplicates by content hash, names files by their " +
			"capture date, and files them into photos/ and videos/ alongside their " +
			"metadata sidecars.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			deps := takeout.Deps{Logger: logger}
			store, err := history.Open(cfg)
			if err != nil {
				logger.Warn("run history unavailable", logging.Error(err))
			} else {
				defer store.Close()
				deps.History = store
			}

			importer, err := takeout.New(cfg, deps)
			if err != nil {
				return err
			}
			stats, err := importer.Process(signalCtx, args)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %d of %d files (%d duplicates skipped, %d converted, %d errors)\n",
				stats.Processed, stats.TotalFiles, stats.Duplicates, stats.Converted, stats.Errors)
			return nil
		},
	}
}
