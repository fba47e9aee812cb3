// Package daemon owns the inkwelld process lifecycle around a booted server.
//
// It takes a flock-based instance lock on the data directory before anything
// touches the database, records the process id, serves the ReadyServer until
// the context ends, and releases everything on the way out. Boot sequencing
// itself lives in internal/boot.
package daemon
