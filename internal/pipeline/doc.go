// Package pipeline runs the two harvesting stages end to end.
//
// Discover samples channels inside the configured subscriber band and saves
// them to the channel table. Enrich loads that table, selects one upload per
// channel, fetches video details in batches, derives features, and writes one
// output row per channel. Run chains the two.
//
// Every stage execution gets a uuid run id carried through the context into
// logs, the run ledger, and notifications. Stages hold an exclusive file lock
// on the table they write so concurrent invocations fail fast instead of
// interleaving.
package pipeline
