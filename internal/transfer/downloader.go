package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"photovault/internal/config"
	"photovault/internal/logging"
	"photovault/internal/services"
)

// Settings tunes download behaviour.
type Settings struct {
	ChunkSize      int
	Attempts       int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// SettingsFromConfig maps the backup section onto transfer settings.
func SettingsFromConfig(backup config.Backup) Settings {
	return Settings{
		ChunkSize:      backup.ChunkSize,
		Attempts:       backup.RetryAttempts,
		RetryDelay:     time.Duration(backup.RetryDelaySeconds) * time.Second,
		RequestTimeout: time.Duration(backup.TimeoutSeconds) * time.Second,
	}
}

// Downloader fetches item bytes over HTTP with retry and atomic placement.
type Downloader struct {
	client   *http.Client
	settings Settings
	logger   *slog.Logger
}

// NewDownloader constructs a downloader. A nil client falls back to
// http.DefaultClient; zero settings fall back to safe minimums.
func NewDownloader(client *http.Client, settings Settings, logger *slog.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if settings.ChunkSize <= 0 {
		settings.ChunkSize = 8192
	}
	if settings.Attempts <= 0 {
		settings.Attempts = 1
	}
	if settings.RetryDelay < 0 {
		settings.RetryDelay = 0
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{
		client:   client,
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "transfer"),
	}
}

// Fetch downloads url to dest. Every attempt streams into dest+".partial"
// and renames on completion, so dest either holds the full payload or does
// not exist. Attempts beyond the first wait the fixed retry delay; when the
// budget is exhausted the returned error carries the transfer marker and
// the attempt count.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= d.settings.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := d.fetchOnce(ctx, url, dest)
		if err == nil {
			if attempt > 1 {
				d.logger.Info("download recovered",
					logging.Int("attempt", attempt),
					logging.String("destination", filepath.Base(dest)))
			}
			return nil
		}
		lastErr = err
		d.logger.Warn("download attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("attempts_allowed", d.settings.Attempts),
			logging.String("destination", filepath.Base(dest)),
			logging.Error(err))

		if attempt < d.settings.Attempts {
			select {
			case <-time.After(d.settings.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return services.Wrap(services.ErrTransfer, "transfer", "fetch",
		fmt.Sprintf("%d attempts failed for %s", d.settings.Attempts, filepath.Base(dest)), lastErr)
}

func (d *Downloader) fetchOnce(ctx context.Context, url, dest string) error {
	reqCtx := ctx
	if d.settings.RequestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, d.settings.RequestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	partial := dest + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("create partial file: %w", err)
	}

	buf := make([]byte, d.settings.ChunkSize)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		_ = out.Close()
		_ = os.Remove(partial)
		return fmt.Errorf("stream body: %w", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(partial)
		return fmt.Errorf("sync partial file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("close partial file: %w", err)
	}

	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}
