// Package notifications delivers pipeline events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled.
// Enumerated event types cover stage completion and failures so the pipeline
// emits consistent messages without duplicating HTTP glue.
package notifications
