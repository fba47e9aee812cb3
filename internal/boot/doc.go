// Package boot sequences inkwell startup.
//
// Orchestrator.Boot runs each stage in order, fans the auxiliary services
// out concurrently once permissions are loaded, builds the HTTP handler, and
// returns a ReadyServer. The first fatal stage aborts the sequence; stages
// that report recoverable problems are logged through the Reporter and the
// sequence continues. Theme validation runs after the server is ready in its
// own cancellation scope and can never fail a boot.
//
// Every collaborator is an interface on Deps so tests can substitute doubles.
package boot
