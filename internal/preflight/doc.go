// Package preflight provides readiness checks for the filesystem paths and
// outbound services inkwell depends on.
//
// The daemon runs RunAll before booting and logs failures as warnings; the
// CLI "inkwell status" command shows the same results as a table. Checks for
// disabled features are skipped.
package preflight
