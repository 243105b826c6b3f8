// Package mirror replicates finished artifacts to S3-compatible object
// storage.
//
// The mirror is strictly secondary: uploads happen after an item has
// settled locally, and any failure is reported to the caller as a warning
// condition, never as a run failure. When mirroring is disabled the noop
// implementation keeps call sites unconditional.
package mirror
