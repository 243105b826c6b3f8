package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"photovault/internal/config"
	"photovault/internal/history"
	"photovault/internal/ledger"
	"photovault/internal/logging"
	"photovault/internal/preflight"
)

type statusView struct {
	ConfigPath     string      `json:"config_path"`
	ConfigExists   bool        `json:"config_exists"`
	BackupRoot     string      `json:"backup_root"`
	FreeSpaceBytes uint64      `json:"free_space_bytes,omitempty"`
	LedgerEntries  int         `json:"ledger_entries"`
	DedupEnabled   bool        `json:"dedup_enabled"`
	MirrorEnabled  bool        `json:"mirror_enabled"`
	Checks         []checkView `json:"checks"`
	LastRun        *runView    `json:"last_run,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show vault health, preflight checks, and the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			view := buildStatusView(cmd, ctx, cfg)
			if jsonOut {
				return writeJSON(cmd, view)
			}
			renderStatus(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output status as JSON")
	return cmd
}

func buildStatusView(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) statusView {
	view := statusView{
		ConfigPath:    ctx.configPath,
		ConfigExists:  ctx.configExists,
		BackupRoot:    cfg.Paths.BackupRoot,
		DedupEnabled:  cfg.Dedup.Enabled,
		MirrorEnabled: cfg.Mirror.Enabled,
	}

	for _, result := range preflight.RunAll(cmd.Context(), cfg) {
		view.Checks = append(view.Checks, checkView{
			Name:   result.Name,
			Passed: result.Passed,
			Fatal:  result.Fatal,
			Detail: result.Detail,
		})
	}

	if free, err := preflight.FreeSpace(cfg.Paths.BackupRoot); err == nil {
		view.FreeSpaceBytes = free
	}

	// The ledger and the history database are only opened when they
	// already exist; status never creates vault state.
	if _, err := os.Stat(cfg.LedgerPath()); err == nil {
		led := ledger.Open(cfg.LedgerPath(), logging.NewNop())
		view.LedgerEntries = led.Len()
		_ = led.Close()
	}
	if _, err := os.Stat(history.DBPath(cfg)); err == nil {
		if store, err := history.Open(cfg); err == nil {
			if run, err := store.LastRun(cmd.Context()); err == nil && run != nil {
				v := newRunView(*run)
				view.LastRun = &v
			}
			_ = store.Close()
		}
	}

	return view
}

func renderStatus(out io.Writer, view statusView) {
	colorize := shouldColorize(out)
	lines := renderSectionHeader("PhotoVault", colorize)

	configKind, configMsg := statusInfo, view.ConfigPath
	if !view.ConfigExists {
		configKind = statusWarn
		configMsg = view.ConfigPath + " (missing; defaults in use)"
	}
	lines = append(lines, renderStatusLine("Config", configKind, configMsg, colorize))
	lines = append(lines, renderStatusLine("Backup root", statusInfo, view.BackupRoot, colorize))
	if view.FreeSpaceBytes > 0 {
		lines = append(lines, renderStatusLine("Free space", statusInfo,
			humanize.IBytes(view.FreeSpaceBytes)+" available", colorize))
	}
	lines = append(lines, renderStatusLine("Dedup ledger", statusInfo,
		fmt.Sprintf("%d entries (enabled: %s)", view.LedgerEntries, yesNo(view.DedupEnabled)), colorize))
	lines = append(lines, renderStatusLine("Mirror", statusInfo, yesNo(view.MirrorEnabled), colorize))

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Preflight", colorize)...)
	for _, check := range view.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusWarn
			if check.Fatal {
				kind = statusError
			}
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Last run", colorize)...)
	if view.LastRun == nil {
		lines = append(lines, statusIndent+"No runs recorded yet")
	} else {
		run := view.LastRun
		kind := statusOK
		switch run.Status {
		case history.StatusFailed:
			kind = statusError
		case history.StatusAborted, history.StatusRunning:
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine("Run", statusInfo,
			fmt.Sprintf("%s (%s, %s)", run.ID, run.Kind, run.StartedAt.Local().Format("2006-01-02 15:04")), colorize))
		lines = append(lines, renderStatusLine("Status", kind, run.Status, colorize))
		lines = append(lines, renderStatusLine("Items", statusInfo,
			fmt.Sprintf("%d total, %d downloaded, %d skipped, %d errors",
				run.Total, run.Downloaded, run.Skipped, run.Errors), colorize))
		lines = append(lines, renderStatusLine("Duration", statusInfo, run.Duration, colorize))
	}

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
