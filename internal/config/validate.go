package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownHashAlgorithms = map[string]struct{}{
	"sha256": {},
	"sha512": {},
	"sha1":   {},
	"md5":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateDedup(); err != nil {
		return err
	}
	if err := c.validateMirror(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validatePreflight(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if c.Library.PageSize < 1 || c.Library.PageSize > 100 {
		return errors.New("library.page_size must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if err := ensurePositiveMap(map[string]int{
		"backup.workers":         c.Backup.Workers,
		"backup.chunk_size":      c.Backup.ChunkSize,
		"backup.retry_attempts":  c.Backup.RetryAttempts,
		"backup.timeout_seconds": c.Backup.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Backup.RetryDelaySeconds < 0 {
		return errors.New("backup.retry_delay_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.JPEGQuality < 1 || c.Processing.JPEGQuality > 100 {
		return errors.New("processing.jpeg_quality must be between 1 and 100")
	}
	if c.Processing.ConvertHEIC && strings.TrimSpace(c.Processing.HEIFTool) == "" {
		return errors.New("processing.heif_tool must be set when processing.convert_heic is true")
	}
	return nil
}

func (c *Config) validateDedup() error {
	if _, ok := knownHashAlgorithms[c.Dedup.HashAlgorithm]; !ok {
		return fmt.Errorf("dedup.hash_algorithm %q is not supported (sha256, sha512, sha1, md5)", c.Dedup.HashAlgorithm)
	}
	return nil
}

func (c *Config) validateMirror() error {
	if !c.Mirror.Enabled {
		return nil
	}
	if c.Mirror.Endpoint == "" {
		return errors.New("mirror.endpoint must be set when mirror.enabled is true")
	}
	if c.Mirror.Bucket == "" {
		return errors.New("mirror.bucket must be set when mirror.enabled is true")
	}
	if c.Mirror.AccessKey == "" || c.Mirror.SecretKey == "" {
		return errors.New("mirror.access_key and mirror.secret_key must be set when mirror.enabled is true (PHOTOVAULT_MIRROR_SECRET_KEY is honoured)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePreflight() error {
	if c.Preflight.MinFreeSpaceGB < 0 {
		return errors.New("preflight.min_free_space_gb must not be negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
