// Package enrich turns channel ids into sample videos and video ids into full
// records.
//
// Batch is the shared primitive: deduplicate, split into API-sized batches,
// retry each through backoff, and merge by key. Absent ids stay absent; the
// Report lists them so callers handle incompleteness explicitly. Selector
// draws one video per channel from the first page of its uploads playlist.
package enrich
