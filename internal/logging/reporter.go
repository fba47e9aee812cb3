package logging

import (
	"log/slog"
	"strings"
)

// Reporter turns recoverable problems into log lines. Each call carries a
// message, the context where the problem was found, and optional help text.
type Reporter struct {
	Logger    *slog.Logger
	EventType string
}

// NewReporter builds a Reporter tagging lines with the given event type.
func NewReporter(logger *slog.Logger, eventType string) *Reporter {
	if logger == nil {
		logger = NewNop()
	}
	return &Reporter{Logger: logger, EventType: eventType}
}

// LogError records an error-level problem.
func (r *Reporter) LogError(message, context, help string) {
	ErrorWithContext(r.logger(), message, r.eventType("error"), r.attrs(context, help)...)
}

// LogWarn records a warning.
func (r *Reporter) LogWarn(message, context, help string) {
	WarnWithContext(r.logger(), message, r.eventType("warning"), r.attrs(context, help)...)
}

func (r *Reporter) attrs(context, help string) []Attr {
	attrs := make([]Attr, 0, 2)
	if ctx := strings.TrimSpace(context); ctx != "" {
		attrs = append(attrs, String(FieldContext, ctx))
	}
	if hint := strings.TrimSpace(help); hint != "" {
		attrs = append(attrs, String(FieldErrorHint, hint))
	}
	return attrs
}

func (r *Reporter) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return NewNop()
	}
	return r.Logger
}

func (r *Reporter) eventType(suffix string) string {
	if r == nil || r.EventType == "" {
		return suffix
	}
	return r.EventType + "_" + suffix
}
