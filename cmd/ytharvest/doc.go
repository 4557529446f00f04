// Package main hosts the ytharvest CLI entrypoint and command graph.
//
// The Cobra-based command tree maps terminal invocations onto the harvesting
// pipeline: discover and enrich run the two stages separately, run chains
// them, concat merges per-band output files, and runs lists the ledger.
// Configuration resolution and logging setup live here so subcommands only
// render results.
package main
