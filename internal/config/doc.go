// Package config loads, normalizes, and validates PhotoVault configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PHOTOVAULT_BACKUP_ROOT. The Config type centralizes every knob the CLI
// needs, so the backup root layout, library API credentials, and transfer
// tuning are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
