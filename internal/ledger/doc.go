// Package ledger tracks which library items have already been backed up.
//
// Each committed record maps an item identity to the content hash, final
// filename, and download time of the artifact on disk. Runs consult the
// ledger before transferring an item so reruns skip everything that is
// already present.
//
// # Storage
//
// The ledger lives as a single JSON object at
// <backup_root>/metadata/deduplication.json, keyed by item identity. The
// snapshot is written atomically and only at the end of a run; in between,
// every commit appends one JSON line to a sidecar journal
// (deduplication.json.journal) so records survive a crash that happens
// before the final snapshot. Opening the ledger replays the journal on top
// of the snapshot and Save folds both back into one file.
//
// # Claims
//
// Workers claim an identity before downloading it. A claim is an in-memory
// reservation: it keeps two workers from transferring the same
// never-before-seen item in parallel, and it is released (or promoted to a
// committed record) when the item settles.
package ledger
