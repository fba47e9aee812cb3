// Package logs reads inkwelld log output for the CLI.
//
// Client pulls structured events from a running daemon's /api/logs endpoint
// and can follow them by polling with the returned sequence cursor. When the
// daemon is not reachable, LastLines reads the tail of inkwell.log instead.
package logs
