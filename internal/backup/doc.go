// Package backup drives a full backup run against the remote photo
// library.
//
// The Orchestrator authenticates, takes the run lock, and streams the
// remote listing through a bounded worker pool: a single enumerator
// goroutine dispatches media items onto an unbuffered channel, workers
// settle each item (dedup gate, download, optional HEIC conversion,
// hashing, ledger commit, metadata sidecar, mirror upload), and one
// collector folds the resulting Outcomes into the run counters and the
// history store. Workers never share mutable state; everything crosses
// back as an Outcome value.
//
// An interrupt stops dispatch but lets in-flight items finish on a
// detached context, so Ctrl-C never leaves half-settled artifacts
// behind. Every run that gets past authentication ends in Finalizing,
// which snapshots the ledger and writes a JSON report under logs/
// regardless of how the run went.
package backup
