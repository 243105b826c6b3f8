// Package services defines shared utilities consumed by the backup pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp media item IDs and run identifiers for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across components (fatal auth failures,
//     per-item transfer exhaustion, tolerated persistence errors).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
