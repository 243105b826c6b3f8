// Package notifications delivers backup lifecycle events via pluggable
// notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The Service methods cover the run milestones (started, completed,
// failed, takeout import done) so orchestration code can emit consistent,
// user-friendly messages without duplicating HTTP glue.
//
// Extend this package if you need alternative transports; all backup code
// depends only on the simple Service interface.
package notifications
