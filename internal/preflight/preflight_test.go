package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"photovault/internal/config"
	"photovault/internal/testsupport"
)

func TestCheckBackupRoot_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckBackupRoot(dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckBackupRoot_MissingButCreatable(t *testing.T) {
	result := CheckBackupRoot(filepath.Join(t.TempDir(), "vault"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable root, got: %s", result.Detail)
	}
}

func TestCheckBackupRoot_MissingParent(t *testing.T) {
	result := CheckBackupRoot(filepath.Join(t.TempDir(), "nope", "vault"))
	if result.Passed {
		t.Fatal("expected failure when parent missing")
	}
	if !result.Fatal {
		t.Fatal("expected missing parent to be fatal")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckBackupRoot_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckBackupRoot(f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if !result.Fatal {
		t.Fatal("expected file-as-root to be fatal")
	}
}

func TestCheckDiskSpace_Disabled(t *testing.T) {
	result := CheckDiskSpace(t.TempDir(), 0)
	if !result.Passed {
		t.Fatalf("expected pass when disabled, got: %s", result.Detail)
	}
}

func TestCheckDiskSpace_ReportsFree(t *testing.T) {
	result := CheckDiskSpace(t.TempDir(), 1)
	// Whatever the CI volume holds, the check must produce a detail and
	// never mark itself fatal.
	if result.Fatal {
		t.Fatal("disk space must never be fatal")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckCredentialsFile_Missing(t *testing.T) {
	result := CheckCredentialsFile(filepath.Join(t.TempDir(), "credentials.json"))
	if result.Passed {
		t.Fatal("expected failure for missing credentials")
	}
	if result.Fatal {
		t.Fatal("missing credentials must stay advisory")
	}
}

func TestCheckCredentialsFile_OK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	result := CheckCredentialsFile(path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckConverterTool_Missing(t *testing.T) {
	result := CheckConverterTool("definitely-not-a-real-binary-name")
	if result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if result.Fatal {
		t.Fatal("missing converter must stay advisory")
	}
}

func TestCheckConverterTool_Found(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	result := CheckConverterTool(cfg.Processing.HEIFTool)
	if !result.Passed {
		t.Fatalf("expected pass for stubbed binary, got: %s", result.Detail)
	}
	if result.Detail == "" {
		t.Fatal("expected resolved path in detail")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SkipsConverterWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BackupRoot = t.TempDir()
	cfg.Processing.ConvertHEIC = false

	results := RunAll(context.Background(), &cfg)
	for _, r := range results {
		if r.Name == "HEIC converter" {
			t.Fatal("converter check must be skipped when conversion is disabled")
		}
	}
}

func TestFatalFailure(t *testing.T) {
	results := []Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Fatal: false},
		{Name: "c", Passed: false, Fatal: true, Detail: "broken"},
	}
	failure, found := FatalFailure(results)
	if !found {
		t.Fatal("expected a fatal failure")
	}
	if failure.Name != "c" {
		t.Fatalf("expected check c, got %s", failure.Name)
	}

	if _, found := FatalFailure(results[:2]); found {
		t.Fatal("advisory failures must not be fatal")
	}
}
