package preflight

import (
	"context"

	"photovault/internal/config"
)

// Result reports the outcome of a single preflight check. Fatal marks
// failures that must stop a run; everything else is advisory.
type Result struct {
	Name   string
	Passed bool
	Fatal  bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBackupRoot(cfg.Paths.BackupRoot),
		CheckDiskSpace(cfg.Paths.BackupRoot, cfg.Preflight.MinFreeSpaceGB),
		CheckCredentialsFile(cfg.Library.CredentialsFile),
	}

	if cfg.Processing.ConvertHEIC {
		results = append(results, CheckConverterTool(cfg.Processing.HEIFTool))
	}

	return results
}

// FatalFailure returns the first failed check that must stop a run, if any.
func FatalFailure(results []Result) (Result, bool) {
	for _, result := range results {
		if !result.Passed && result.Fatal {
			return result, true
		}
	}
	return Result{}, false
}
