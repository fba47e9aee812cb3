package theme

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkwell/internal/testsupport"
)

func writeTheme(t *testing.T, root, name string, files map[string]string) {
	t.Helper()
	testsupport.WriteTree(t, filepath.Join(root, name), files)
}

func TestValidateCleanTheme(t *testing.T) {
	root := t.TempDir()
	writeTheme(t, root, "casper", map[string]string{
		"index.html":   "{{.Title}}",
		"post.html":    "{{.Post.Title}}",
		"package.json": `{"name":"casper","version":"1.0.0"}`,
	})

	report, err := NewValidator(nil).Validate(context.Background(), root)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !report.Empty() {
		t.Fatalf("expected no findings, got %+v", report)
	}
}

func TestValidateFindings(t *testing.T) {
	root := t.TempDir()
	writeTheme(t, root, "broken", map[string]string{
		"index.html":   "ok",
		"package.json": `{"name":"broken"}`,
	})
	writeTheme(t, root, "bare", map[string]string{
		"index.html": "ok",
		"post.html":  "ok",
	})
	writeTheme(t, root, "garbled", map[string]string{
		"index.html":   "ok",
		"post.html":    "ok",
		"package.json": "{",
	})
	writeTheme(t, root, ".hidden", nil)
	if err := os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	report, err := NewValidator(nil).Validate(context.Background(), root)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("unexpected errors: %+v", report.Errors)
	}
	if report.Errors[0].Context != "broken" || !strings.Contains(report.Errors[0].Message, "post.html") {
		t.Fatalf("unexpected error: %+v", report.Errors[0])
	}

	got := map[string]string{}
	for _, w := range report.Warnings {
		got[w.Context] = w.Message
	}
	if len(report.Warnings) != 3 {
		t.Fatalf("unexpected warnings: %+v", report.Warnings)
	}
	if got["broken"] != "package.json has no version" {
		t.Fatalf("unexpected broken warning: %q", got["broken"])
	}
	if got["bare"] != "missing package.json" {
		t.Fatalf("unexpected bare warning: %q", got["bare"])
	}
	if !strings.HasPrefix(got["garbled"], "unreadable package.json") {
		t.Fatalf("unexpected garbled warning: %q", got["garbled"])
	}
}

func TestValidateEmptyDirectory(t *testing.T) {
	report, err := NewValidator(nil).Validate(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.Warnings) != 1 || len(report.Errors) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestValidateMissingPathFailsCall(t *testing.T) {
	_, err := NewValidator(nil).Validate(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing theme path")
	}
}

func TestValidateHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	writeTheme(t, root, "casper", map[string]string{"index.html": "", "post.html": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewValidator(nil).Validate(ctx, root); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestListSorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	names, err := List(root)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(names, ",") != "alpha,mid,zeta" {
		t.Fatalf("unexpected order: %v", names)
	}
}
