package backup

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"photovault/internal/config"
	"photovault/internal/fileutil"
	"photovault/internal/services"
)

// Report is the per-run summary written under logs/ during Finalizing.
// Dry runs build one in memory but never write it.
type Report struct {
	RunID           string       `json:"run_id"`
	StartedAt       time.Time    `json:"started_at"`
	FinishedAt      time.Time    `json:"finished_at"`
	DurationSeconds float64      `json:"duration_seconds"`
	AlbumID         string       `json:"album_id,omitempty"`
	DryRun          bool         `json:"dry_run,omitempty"`
	Interrupted     bool         `json:"interrupted,omitempty"`
	Stats           Snapshot     `json:"stats"`
	Config          ReportConfig `json:"config"`

	// Path is where the report landed on disk, set after a successful
	// write. Never serialized; the file cannot know its own name.
	Path string `json:"-"`
}

// ReportConfig embeds the settings that shaped the run so a report stays
// interpretable after the configuration changes.
type ReportConfig struct {
	BackupRoot    string `json:"backup_root"`
	Workers       int    `json:"workers"`
	RetryAttempts int    `json:"retry_attempts"`
	ConvertHEIC   bool   `json:"convert_heic"`
	JPEGQuality   int    `json:"jpeg_quality"`
	DedupEnabled  bool   `json:"dedup_enabled"`
	HashAlgorithm string `json:"hash_algorithm"`
	MirrorEnabled bool   `json:"mirror_enabled"`
}

func reportConfig(cfg *config.Config) ReportConfig {
	return ReportConfig{
		BackupRoot:    cfg.Paths.BackupRoot,
		Workers:       cfg.Backup.Workers,
		RetryAttempts: cfg.Backup.RetryAttempts,
		ConvertHEIC:   cfg.Processing.ConvertHEIC,
		JPEGQuality:   cfg.Processing.JPEGQuality,
		DedupEnabled:  cfg.Dedup.Enabled,
		HashAlgorithm: cfg.Dedup.HashAlgorithm,
		MirrorEnabled: cfg.Mirror.Enabled,
	}
}

// WriteFile writes the report atomically to
// logs/backup_report_<unix>.json and returns the path.
func (r *Report) WriteFile(cfg *config.Config) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", services.Wrap(services.ErrPersistence, "backup", "report", "marshal report", err)
	}
	path := filepath.Join(cfg.LogDir(), fmt.Sprintf("backup_report_%d.json", r.FinishedAt.Unix()))
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", services.Wrap(services.ErrPersistence, "backup", "report", "write report file", err)
	}
	return path, nil
}
