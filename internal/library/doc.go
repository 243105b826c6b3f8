// Package library talks to the Google Photos Library API.
//
// It owns the OAuth2 session (installed-app credentials, cached token,
// transparent refresh with persistence), enumerates albums and media items
// with pull-based pagination, and derives the download locator and sidecar
// metadata for each item. Enumeration never materializes the whole library:
// callers advance an ItemIterator and pages are fetched on demand.
//
// Authentication failures are marked fatal; listing failures are marked as
// enumeration errors so the orchestrator can preserve completed work.
package library
