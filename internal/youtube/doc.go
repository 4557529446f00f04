// Package youtube is a small client for the read-only YouTube Data API v3
// endpoints the harvester needs: channel search, channel details, playlist
// items, and video details.
//
// Every request waits on a shared token bucket and carries its own timeout.
// Non-200 responses become *APIError values that unwrap to the services
// markers (transient, missing resource, validation) so callers can decide
// whether to retry without inspecting status codes. Retrying itself is left
// to the backoff package.
package youtube
