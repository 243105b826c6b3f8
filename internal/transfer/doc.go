// Package transfer downloads item bytes to the backup tree.
//
// Downloads stream through a fixed-size buffer into a .partial sibling and
// reach their destination only via rename, so an interrupted transfer never
// leaves a truncated artifact under the final name. Failed attempts retry
// with a fixed delay up to the configured budget; exhaustion surfaces as a
// transfer error that the orchestrator records against the single item.
package transfer
