package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeProcessing()
	c.normalizeDedup()
	c.normalizeMirror()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if c.Paths.BackupRoot == "" {
		if value, ok := os.LookupEnv("PHOTOVAULT_BACKUP_ROOT"); ok {
			c.Paths.BackupRoot = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.BackupRoot) == "" {
		c.Paths.BackupRoot = defaultBackupRoot
	}
	var err error
	if c.Paths.BackupRoot, err = expandPath(c.Paths.BackupRoot); err != nil {
		return fmt.Errorf("paths.backup_root: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	var err error
	if strings.TrimSpace(c.Library.CredentialsFile) == "" {
		c.Library.CredentialsFile = defaultCredentialsFile
	}
	if c.Library.CredentialsFile, err = expandPath(c.Library.CredentialsFile); err != nil {
		return fmt.Errorf("library.credentials_file: %w", err)
	}
	if strings.TrimSpace(c.Library.TokenFile) == "" {
		c.Library.TokenFile = defaultTokenFile
	}
	if c.Library.TokenFile, err = expandPath(c.Library.TokenFile); err != nil {
		return fmt.Errorf("library.token_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeProcessing() {
	// Decoding starts from Default(), so absent keys keep their defaults;
	// explicit zero values in the file fall through to Validate.
	c.Processing.HEIFTool = strings.TrimSpace(c.Processing.HEIFTool)
	if c.Processing.HEIFTool == "" {
		c.Processing.HEIFTool = defaultHEIFTool
	}
}

func (c *Config) normalizeDedup() {
	c.Dedup.HashAlgorithm = strings.ToLower(strings.TrimSpace(c.Dedup.HashAlgorithm))
	if c.Dedup.HashAlgorithm == "" {
		c.Dedup.HashAlgorithm = defaultHashAlgorithm
	}
}

func (c *Config) normalizeMirror() {
	c.Mirror.Endpoint = strings.TrimSpace(c.Mirror.Endpoint)
	c.Mirror.AccessKey = strings.TrimSpace(c.Mirror.AccessKey)
	c.Mirror.Bucket = strings.TrimSpace(c.Mirror.Bucket)
	c.Mirror.Prefix = strings.Trim(strings.TrimSpace(c.Mirror.Prefix), "/")
	if c.Mirror.SecretKey == "" {
		if value, ok := os.LookupEnv("PHOTOVAULT_MIRROR_SECRET_KEY"); ok {
			c.Mirror.SecretKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
