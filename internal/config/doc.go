// Package config loads, normalizes, and validates ytharvest configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files (or YAML when the file extension says so), and
// honours environment fallbacks such as YOUTUBE_API_KEY. The Config type
// centralizes every knob the harvest stages and CLI need, so table paths, the
// subscriber band, batch sizes, and retry policy are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
