// Package store persists harvesting state in SQLite.
//
// A Store holds two things: saved channel sets, exposed through ChannelSet as
// a catalog.ChannelTable, and the run ledger that records every stage
// execution with its outcome and counts. The schema is embedded and versioned;
// a database created by a different version is rejected with
// ErrSchemaMismatch rather than migrated.
package store
