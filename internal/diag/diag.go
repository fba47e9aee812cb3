// Package diag carries the message/context/help triples that configuration
// checks, theme validation, and app loading hand to the logging boundary.
package diag

import "strings"

// Issue is a single finding. Context names where the problem was found and
// Help tells the operator what to do about it.
type Issue struct {
	Message string
	Context string
	Help    string
}

// Report groups findings by severity.
type Report struct {
	Errors   []Issue
	Warnings []Issue
}

// Empty reports whether the report carries no findings at all.
func (r Report) Empty() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// AddError appends an error-level finding.
func (r *Report) AddError(message, context, help string) {
	r.Errors = append(r.Errors, Issue{Message: message, Context: context, Help: help})
}

// AddWarning appends a warning-level finding.
func (r *Report) AddWarning(message, context, help string) {
	r.Warnings = append(r.Warnings, Issue{Message: message, Context: context, Help: help})
}

// Merge folds other into r.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// String renders the issue on one line for CLI output.
func (i Issue) String() string {
	parts := []string{strings.TrimSpace(i.Message)}
	if ctx := strings.TrimSpace(i.Context); ctx != "" {
		parts = append(parts, "("+ctx+")")
	}
	if help := strings.TrimSpace(i.Help); help != "" {
		parts = append(parts, "- "+help)
	}
	return strings.Join(parts, " ")
}
