package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LogEvent is a structured log line retained for the /api/logs endpoint.
type LogEvent struct {
	Sequence  uint64            `json:"seq"`
	Timestamp time.Time         `json:"ts"`
	Level     string            `json:"level"`
	Message   string            `json:"msg"`
	Component string            `json:"component,omitempty"`
	Stage     string            `json:"stage,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// StreamHub stores the most recent log events in a bounded buffer.
type StreamHub struct {
	mu       sync.Mutex
	capacity int
	buffer   []LogEvent
	nextSeq  uint64
}

// NewStreamHub constructs a bounded in-memory log buffer.
func NewStreamHub(capacity int) *StreamHub {
	if capacity <= 0 {
		capacity = 512
	}
	return &StreamHub{capacity: capacity}
}

// Publish appends a new log event, evicting the oldest when full.
func (h *StreamHub) Publish(evt LogEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
}

// Tail returns up to limit of the most recent events, oldest first.
func (h *StreamHub) Tail(limit int) []LogEvent {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.buffer) {
		limit = len(h.buffer)
	}
	out := make([]LogEvent, limit)
	copy(out, h.buffer[len(h.buffer)-limit:])
	return out
}

// StreamHandler publishes records into a StreamHub.
type StreamHandler struct {
	hub   *StreamHub
	level slog.Level
	attrs []slog.Attr
	group []string
}

// NewStreamHandler returns a handler that records events at or above level.
func NewStreamHandler(hub *StreamHub, level slog.Level) *StreamHandler {
	return &StreamHandler{hub: hub, level: level}
}

func (h *StreamHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.hub != nil && level >= h.level
}

func (h *StreamHandler) Handle(_ context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.group, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.group, attr)
		return true
	})
	evt := LogEvent{
		Timestamp: record.Time.UTC(),
		Level:     levelName(record.Level),
		Message:   record.Message,
	}
	for _, kv := range dedupeKVsByKey(kvs) {
		switch kv.key {
		case FieldComponent:
			evt.Component = attrString(kv.value)
		case FieldStage:
			evt.Stage = attrString(kv.value)
		default:
			if evt.Fields == nil {
				evt.Fields = make(map[string]string)
			}
			evt.Fields[kv.key] = attrString(kv.value)
		}
	}
	h.hub.Publish(evt)
	return nil
}

func (h *StreamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *StreamHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.group = append(append([]string(nil), h.group...), name)
	return &clone
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
