package logs_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"inkwell/internal/logging"
	"inkwell/internal/logs"
)

func TestNewClientRequiresBind(t *testing.T) {
	if _, err := logs.NewClient("  ", ""); !errors.Is(err, logs.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchBuildsQueryAndDecodes(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/logs" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(logs.Response{
			Events: []logging.LogEvent{{Sequence: 7, Level: "INFO", Message: "hello"}},
			Next:   7,
		})
	}))
	defer srv.Close()

	client, err := logs.NewClient(srv.URL, "s3cret")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.Fetch(context.Background(), logs.Query{Since: 3, Limit: 50, Level: "warn", Component: "boot"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Message != "hello" || resp.Next != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotAuth != "Bearer s3cret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	for key, want := range map[string]string{"since": "3", "limit": "50", "level": "warn", "component": "boot"} {
		if got := gotQuery.Get(key); got != want {
			t.Fatalf("query %s: got %q want %q", key, got, want)
		}
	}
}

func TestFetchUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := logs.NewClient(srv.URL, "")
	if _, err := client.Fetch(context.Background(), logs.Query{}); !errors.Is(err, logs.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFollowAdvancesCursor(t *testing.T) {
	var calls atomic.Int32
	var sinces []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		sinces = append(sinces, r.URL.Query().Get("since"))
		_ = json.NewEncoder(w).Encode(logs.Response{
			Events: []logging.LogEvent{{Sequence: uint64(n), Message: "tick"}},
			Next:   uint64(n),
		})
	}))
	defer srv.Close()

	client, _ := logs.NewClient(srv.URL, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen int
	err := client.Follow(ctx, logs.Query{}, 10*time.Millisecond, func(events []logging.LogEvent) error {
		seen += len(events)
		if seen == 3 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if seen != 3 {
		t.Fatalf("expected 3 events, got %d", seen)
	}
	if sinces[0] != "" || sinces[1] != "1" || sinces[2] != "2" {
		t.Fatalf("cursor did not advance: %v", sinces)
	}
}

func TestIsUnavailable(t *testing.T) {
	client, _ := logs.NewClient("127.0.0.1:1", "")
	_, err := client.Fetch(context.Background(), logs.Query{})
	if !logs.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if logs.IsUnavailable(errors.New("other")) {
		t.Fatal("plain errors are not unavailability")
	}
}
