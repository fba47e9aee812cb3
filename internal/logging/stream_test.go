package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestStreamHubEvictsOldest(t *testing.T) {
	hub := NewStreamHub(2)
	hub.Publish(LogEvent{Message: "one"})
	hub.Publish(LogEvent{Message: "two"})
	hub.Publish(LogEvent{Message: "three"})

	events := hub.Tail(10)
	if len(events) != 2 {
		t.Fatalf("expected capacity-bounded tail, got %d", len(events))
	}
	if events[0].Message != "two" || events[1].Message != "three" {
		t.Fatalf("unexpected order: %+v", events)
	}
	if events[1].Sequence != 3 {
		t.Fatalf("expected sequence 3, got %d", events[1].Sequence)
	}
	if got := hub.Tail(1); len(got) != 1 || got[0].Message != "three" {
		t.Fatalf("unexpected limited tail: %+v", got)
	}
}

func TestStreamHandlerSplitsComponentAndStage(t *testing.T) {
	hub := NewStreamHub(4)
	logger := slog.New(NewStreamHandler(hub, slog.LevelInfo)).With(String(FieldComponent, "boot"))
	logger.Debug("dropped")
	logger.InfoContext(context.Background(), "stage started", String(FieldStage, "permissions"), Int("attempt", 1))

	events := hub.Tail(0)
	if len(events) != 1 {
		t.Fatalf("expected debug record to be filtered, got %d events", len(events))
	}
	evt := events[0]
	if evt.Component != "boot" || evt.Stage != "permissions" {
		t.Fatalf("unexpected component/stage: %+v", evt)
	}
	if evt.Fields["attempt"] != "1" {
		t.Fatalf("expected attempt field, got %v", evt.Fields)
	}
}

func TestTeeLoggerDuplicatesRecords(t *testing.T) {
	first := NewStreamHub(4)
	second := NewStreamHub(4)
	logger := TeeLogger(slog.New(NewStreamHandler(first, slog.LevelInfo)), NewStreamHandler(second, slog.LevelWarn))

	logger.Info("info only")
	logger.Warn("both")

	if got := len(first.Tail(0)); got != 2 {
		t.Fatalf("expected 2 events in base hub, got %d", got)
	}
	if got := second.Tail(0); len(got) != 1 || got[0].Message != "both" {
		t.Fatalf("expected only warn in tee hub, got %+v", got)
	}
}

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	inner := NewStreamHandler(NewStreamHub(1), slog.LevelInfo)
	if h := newFanoutHandler(nil, inner); h != slog.Handler(inner) {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestDisplayLabel(t *testing.T) {
	cases := map[string]string{
		FieldEventType:    "Event",
		FieldErrorHint:    "Hint",
		"theme_name":      "Theme Name",
		"sitemap.entries": "Sitemap Entries",
	}
	for key, want := range cases {
		if got := displayLabel(key); got != want {
			t.Fatalf("displayLabel(%q) = %q, want %q", key, got, want)
		}
	}
}
