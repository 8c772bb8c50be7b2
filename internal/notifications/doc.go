// Package notifications delivers orchestration events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover routing fallbacks, gate starvation,
// generation outcomes, and recovery actions so callers emit consistent
// messages without duplicating HTTP glue.
//
// Sink failures must never block core operations: callers log the returned
// error at debug level and move on.
package notifications
