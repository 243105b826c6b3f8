package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"photovault/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantRoot := filepath.Join(tempHome, "photovault")
	if cfg.Paths.BackupRoot != wantRoot {
		t.Fatalf("unexpected backup root: got %q want %q", cfg.Paths.BackupRoot, wantRoot)
	}
	if cfg.Library.CredentialsFile != filepath.Join(tempHome, ".config", "photovault", "credentials.json") {
		t.Fatalf("unexpected credentials file: %q", cfg.Library.CredentialsFile)
	}
	if cfg.Library.TokenFile != filepath.Join(tempHome, ".config", "photovault", "token.json") {
		t.Fatalf("unexpected token file: %q", cfg.Library.TokenFile)
	}
	if cfg.Backup.Workers != config.Default().Backup.Workers {
		t.Fatalf("unexpected worker count: %d", cfg.Backup.Workers)
	}
	if !cfg.Processing.ConvertHEIC {
		t.Fatal("expected HEIC conversion enabled by default")
	}
	if !cfg.Dedup.Enabled {
		t.Fatal("expected dedup enabled by default")
	}
	if cfg.Dedup.HashAlgorithm != "sha256" {
		t.Fatalf("unexpected hash algorithm: %q", cfg.Dedup.HashAlgorithm)
	}
	if cfg.Mirror.Enabled {
		t.Fatal("expected mirror disabled by default")
	}
	if cfg.LedgerPath() != filepath.Join(wantRoot, "metadata", "deduplication.json") {
		t.Fatalf("unexpected ledger path: %q", cfg.LedgerPath())
	}
	if cfg.LockPath() != filepath.Join(wantRoot, ".photovault.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.PhotosDir(), cfg.VideosDir(), cfg.AlbumsDir(), cfg.MetadataDir(), cfg.LogDir(), cfg.TempDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "photovault.toml")

	type payload struct {
		Paths struct {
			BackupRoot string `toml:"backup_root"`
		} `toml:"paths"`
		Backup struct {
			Workers       int `toml:"workers"`
			RetryAttempts int `toml:"retry_attempts"`
		} `toml:"backup"`
		Processing struct {
			ConvertHEIC bool `toml:"convert_heic"`
		} `toml:"processing"`
	}
	custom := payload{}
	custom.Paths.BackupRoot = filepath.Join(tempDir, "archive")
	custom.Backup.Workers = 2
	custom.Backup.RetryAttempts = 7
	custom.Processing.ConvertHEIC = false
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.BackupRoot != filepath.Join(tempDir, "archive") {
		t.Fatalf("expected backup root from file, got %q", cfg.Paths.BackupRoot)
	}
	if cfg.Backup.Workers != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.Backup.Workers)
	}
	if cfg.Backup.RetryAttempts != 7 {
		t.Fatalf("expected 7 retry attempts, got %d", cfg.Backup.RetryAttempts)
	}
	if cfg.Processing.ConvertHEIC {
		t.Fatal("expected HEIC conversion disabled by file override")
	}
	if cfg.Backup.ChunkSize != config.Default().Backup.ChunkSize {
		t.Fatalf("expected default chunk size, got %d", cfg.Backup.ChunkSize)
	}
}

func TestLoadHonoursEnvFallbacks(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	envRoot := filepath.Join(tempHome, "elsewhere")
	t.Setenv("PHOTOVAULT_BACKUP_ROOT", envRoot)
	t.Setenv("PHOTOVAULT_MIRROR_SECRET_KEY", "env-secret")

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "photovault.toml")
	contents := strings.Join([]string{
		"[mirror]",
		"enabled = true",
		`endpoint = "minio.example.net:9000"`,
		`access_key = "photo"`,
		`bucket = "backups"`,
	}, "\n")
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.BackupRoot != envRoot {
		t.Fatalf("expected backup root from env, got %q", cfg.Paths.BackupRoot)
	}
	if cfg.Mirror.SecretKey != "env-secret" {
		t.Fatalf("expected mirror secret from env, got %q", cfg.Mirror.SecretKey)
	}
}

func TestBackupRootFromFileWinsOverEnv(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("PHOTOVAULT_BACKUP_ROOT", filepath.Join(tempDir, "from-env"))

	configPath := filepath.Join(tempDir, "photovault.toml")
	fileRoot := filepath.Join(tempDir, "from-file")
	contents := "[paths]\nbackup_root = \"" + fileRoot + "\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.BackupRoot != fileRoot {
		t.Fatalf("expected explicit backup root to win, got %q", cfg.Paths.BackupRoot)
	}
}

func TestLoadHonoursConfigPathEnv(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "alt.toml")
	contents := "[backup]\nworkers = 9\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("PHOTOVAULT_CONFIG", configPath)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found via PHOTOVAULT_CONFIG")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Backup.Workers != 9 {
		t.Fatalf("expected 9 workers, got %d", cfg.Backup.Workers)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "backup_root") {
		t.Fatalf("sample config missing backup_root key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Backup.Workers != config.Default().Backup.Workers {
		t.Fatalf("expected sample workers to match defaults, got %d", cfg.Backup.Workers)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Backup.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive workers")
	}

	cfg = config.Default()
	cfg.Backup.RetryDelaySeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative retry delay")
	}

	cfg = config.Default()
	cfg.Library.PageSize = 101
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for page size above API limit")
	}

	cfg = config.Default()
	cfg.Processing.JPEGQuality = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero jpeg quality")
	}

	cfg = config.Default()
	cfg.Dedup.HashAlgorithm = "crc32"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported hash algorithm")
	}

	cfg = config.Default()
	cfg.Mirror.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when mirror enabled without endpoint")
	}

	cfg = config.Default()
	cfg.Notifications.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero notification timeout")
	}
}
