package apps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"inkwell/internal/settings"
)

type memSettings struct {
	values  map[string]*string
	readErr error
}

func (m *memSettings) Read(_ context.Context, key string, _ settings.Access) (settings.Setting, error) {
	if m.readErr != nil {
		return settings.Setting{}, m.readErr
	}
	return settings.Setting{Key: key, Value: m.values[key]}, nil
}

func (m *memSettings) Write(_ context.Context, key, value string, _ settings.Access) (settings.Setting, error) {
	m.values[key] = &value
	return settings.Setting{Key: key, Value: &value}, nil
}

type captured struct{ message, where string }

type captureReporter struct{ errors []captured }

func (c *captureReporter) LogError(message, where, _ string) {
	c.errors = append(c.errors, captured{message, where})
}

func strPtr(s string) *string { return &s }

func writeApp(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if manifest == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestInitLoadsActiveApps(t *testing.T) {
	root := t.TempDir()
	writeApp(t, root, "kudos", `{"name":"kudos","version":"0.1.0"}`)
	writeApp(t, root, "broken", `{`)
	writeApp(t, root, "unnamed", `{"version":"1.0.0"}`)

	st := &memSettings{values: map[string]*string{
		settings.KeyActiveApps: strPtr(`["kudos","broken","missing","unnamed","../etc"]`),
	}}
	reporter := &captureReporter{}
	svc := New(root, st, reporter, nil)

	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	loaded := svc.Loaded()
	if len(loaded) != 2 || loaded[0].Name != "kudos" || loaded[1].Name != "unnamed" {
		t.Fatalf("unexpected loaded apps: %+v", loaded)
	}
	if got := *st.values[settings.KeyInstalledApps]; got != `["kudos","unnamed"]` {
		t.Fatalf("unexpected installedApps: got %q", got)
	}
	if len(reporter.errors) != 3 {
		t.Fatalf("expected three reported failures, got %+v", reporter.errors)
	}
	for i, want := range []string{"broken", "missing", "../etc"} {
		if reporter.errors[i].where != want {
			t.Fatalf("unexpected failure context: got %q want %q", reporter.errors[i].where, want)
		}
	}
}

func TestInitNoActiveApps(t *testing.T) {
	st := &memSettings{values: map[string]*string{settings.KeyActiveApps: nil}}
	if err := New(t.TempDir(), st, nil, nil).Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := *st.values[settings.KeyInstalledApps]; got != "[]" {
		t.Fatalf("unexpected installedApps: got %q", got)
	}
}

func TestInitSettingsFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	st := &memSettings{readErr: boom}
	if err := New(t.TempDir(), st, nil, nil).Init(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInitMalformedActiveApps(t *testing.T) {
	st := &memSettings{values: map[string]*string{settings.KeyActiveApps: strPtr("kudos")}}
	if err := New(t.TempDir(), st, nil, nil).Init(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
