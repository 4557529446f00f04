// Package features derives numeric and categorical attributes from raw video
// fields.
//
// Every function is pure and total. Malformed input degrades to a zero value
// (0 seconds, an empty weekday) instead of an error, so a single odd record
// can never stop an enrichment run.
package features
