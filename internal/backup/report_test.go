package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"photovault/internal/history"
	"photovault/internal/testsupport"
)

func TestReportWriteFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	finished := time.Unix(1700000000, 0).UTC()
	report := &Report{
		RunID:           "run-1",
		StartedAt:       finished.Add(-time.Minute),
		FinishedAt:      finished,
		DurationSeconds: 60,
		Stats:           Snapshot{TotalItems: 2, Downloaded: 2},
		Config:          reportConfig(cfg),
	}

	path, err := report.WriteFile(cfg)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if got := filepath.Base(path); got != "backup_report_1700000000.json" {
		t.Fatalf("report filename = %q", got)
	}
	if filepath.Dir(path) != cfg.LogDir() {
		t.Fatalf("report written outside logs dir: %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded struct {
		RunID  string `json:"run_id"`
		Config struct {
			BackupRoot string `json:"backup_root"`
		} `json:"config"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if decoded.RunID != "run-1" {
		t.Fatalf("run_id = %q", decoded.RunID)
	}
	if decoded.Config.BackupRoot != cfg.Paths.BackupRoot {
		t.Fatalf("config snapshot backup_root = %q", decoded.Config.BackupRoot)
	}
}

func TestOutcomeHistoryLabel(t *testing.T) {
	cases := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{"failed", Outcome{Err: errTest}, history.OutcomeFailed},
		{"duplicate", Outcome{Duplicate: true}, history.OutcomeDuplicate},
		{"converted", Outcome{Downloaded: true, Processed: true}, history.OutcomeConverted},
		{"downloaded", Outcome{Downloaded: true}, history.OutcomeDownloaded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.outcome.historyLabel(); got != tc.want {
				t.Fatalf("historyLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}
