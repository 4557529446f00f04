// Package services defines shared utilities consumed by the harvest stages and
// the remote API integration.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and channel identifiers
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures as
//     transient, exhausted, protocol violations, missing resources, or fatal
//     configuration and input problems.
//
// Use these helpers when wiring new stage logic so skip-and-continue behaviour
// and diagnostics stay uniform across the pipeline.
package services
