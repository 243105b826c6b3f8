// Package history persists backup run outcomes in SQLite.
//
// Every run gets one row in runs plus one row per settled item in
// run_items, written as items finish so an interrupted run still leaves a
// usable record. The store backs the "photovault history" command and the
// last-run summary in "photovault status".
//
// History is observability, not state: a write failure is logged by the
// caller and never fails the run, and deleting the database loses nothing
// but the audit trail.
package history
