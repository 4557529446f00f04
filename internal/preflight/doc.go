// Package preflight provides readiness checks for the paths and remote
// services ytharvest depends on.
//
// The CLI "ytharvest preflight" command runs RunAll before a long harvest so
// a bad API key or an unwritable table directory shows up in seconds instead
// of after the first search. Optional services are only probed when
// configured.
package preflight
