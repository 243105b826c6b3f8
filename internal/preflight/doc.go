// Package preflight provides readiness checks for the filesystem paths and
// external tools a backup run depends on.
//
// These checks run in two contexts:
//   - The backup orchestrator calls RunAll before dispatching any work.
//     Fatal failures (an unusable backup root) stop the run before a single
//     network call; advisory ones are logged and the run continues.
//   - The CLI "photovault status" command renders the same results so a
//     doomed configuration is visible without starting a run.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
