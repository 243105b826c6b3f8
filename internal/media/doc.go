// Package media classifies library items and normalizes their artifacts.
//
// It decides whether an item is a photo or a video, derives the
// timestamp-prefixed filename an artifact is stored under, computes the
// content hashes the dedup ledger records, and mediates access to the
// external HEIF conversion tool.
//
// Prefer this package over ad-hoc exec.Command usage when converting HEIC
// originals so timeout handling and fallback behaviour remain consistent.
package media
