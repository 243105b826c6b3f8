package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Library contains configuration for the cloud photo library API.
type Library struct {
	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`
	PageSize        int    `toml:"page_size"`
}

// Paths contains the backup destination configuration. All content
// directories (photos, videos, metadata, logs, temp) live under BackupRoot.
type Paths struct {
	BackupRoot string `toml:"backup_root"`
}

// Backup contains transfer and concurrency tuning.
type Backup struct {
	Workers           int `toml:"workers"`
	ChunkSize         int `toml:"chunk_size"`
	RetryAttempts     int `toml:"retry_attempts"`
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
	TimeoutSeconds    int `toml:"timeout_seconds"`
}

// Processing contains media normalization settings.
type Processing struct {
	ConvertHEIC bool   `toml:"convert_heic"`
	JPEGQuality int    `toml:"jpeg_quality"`
	HEIFTool    string `toml:"heif_tool"`
}

// Dedup contains the content deduplication settings.
type Dedup struct {
	Enabled       bool   `toml:"enabled"`
	HashAlgorithm string `toml:"hash_algorithm"`
}

// Mirror contains configuration for the optional S3-compatible mirror.
type Mirror struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Preflight contains thresholds for environment checks.
type Preflight struct {
	MinFreeSpaceGB int `toml:"min_free_space_gb"`
}

// Config encapsulates all configuration values for PhotoVault.
//
// Configuration sections by subsystem:
//   - Library: cloud photo library API credentials and paging
//   - Paths: the backup root every run writes under
//   - Backup: worker count, chunk size, retry policy, per-attempt timeout
//   - Processing: HEIC conversion toggle, JPEG quality, converter binary
//   - Dedup: ledger toggle and hash algorithm
//   - Mirror: optional S3-compatible replica of downloaded artifacts
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - Preflight: disk space thresholds
type Config struct {
	Library       Library       `toml:"library"`
	Paths         Paths         `toml:"paths"`
	Backup        Backup        `toml:"backup"`
	Processing    Processing    `toml:"processing"`
	Dedup         Dedup         `toml:"dedup"`
	Mirror        Mirror        `toml:"mirror"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Preflight     Preflight     `toml:"preflight"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/photovault/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	// Backup root precedence is file value, then $PHOTOVAULT_BACKUP_ROOT,
	// then the built-in default; normalize needs an absent key to stay empty.
	cfg.Paths.BackupRoot = ""

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	if env := strings.TrimSpace(os.Getenv("PHOTOVAULT_CONFIG")); env != "" {
		expanded, err := expandPath(env)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(expanded); err == nil && !info.IsDir() {
			return expanded, true, nil
		}
		return expanded, false, nil
	}

	defaultPath, err := expandPath("~/.config/photovault/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photovault.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// PhotosDir returns the directory receiving downloaded photo artifacts.
func (c *Config) PhotosDir() string { return filepath.Join(c.Paths.BackupRoot, "photos") }

// VideosDir returns the directory receiving video artifacts (takeout imports).
func (c *Config) VideosDir() string { return filepath.Join(c.Paths.BackupRoot, "videos") }

// AlbumsDir returns the directory reserved for album exports.
func (c *Config) AlbumsDir() string { return filepath.Join(c.Paths.BackupRoot, "albums") }

// MetadataDir returns the directory holding per-item metadata sidecars and
// the deduplication ledger.
func (c *Config) MetadataDir() string { return filepath.Join(c.Paths.BackupRoot, "metadata") }

// LogDir returns the directory holding log files, run reports, and history.
func (c *Config) LogDir() string { return filepath.Join(c.Paths.BackupRoot, "logs") }

// TempDir returns the staging directory used for archive extraction.
func (c *Config) TempDir() string { return filepath.Join(c.Paths.BackupRoot, "temp") }

// LedgerPath returns the deduplication ledger snapshot location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.MetadataDir(), "deduplication.json")
}

// LockPath returns the lock file guarding the backup root against
// concurrent runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.BackupRoot, ".photovault.lock")
}

// EnsureDirectories creates the backup root layout.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.BackupRoot,
		c.PhotosDir(),
		c.VideosDir(),
		c.AlbumsDir(),
		c.MetadataDir(),
		c.LogDir(),
		c.TempDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
