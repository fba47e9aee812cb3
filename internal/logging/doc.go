// Package logging assembles structured slog loggers and formatting helpers used
// across inkwell.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so boot stages and HTTP handlers
// can tag log lines with stage names and request IDs. Reporter is the single
// place where recoverable problems (deprecated config, theme findings, broken
// apps) are turned into log lines instead of errors.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing guarantees as the rest
// of the system.
package logging
