package testsupport_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkwell/internal/testsupport"
)

func TestNewConfigIsolatesPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPing("https://ping.example.com/rpc"))
	base := testsupport.BaseDir(cfg)
	for _, path := range []string{cfg.Paths.ContentDir, cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Database.Path} {
		if !strings.HasPrefix(path, base) {
			t.Fatalf("%s escapes %s", path, base)
		}
	}
	if !cfg.Ping.Enabled || len(cfg.Ping.Services) != 1 {
		t.Fatalf("ping option not applied: %+v", cfg.Ping)
	}
}

func TestWriteTheme(t *testing.T) {
	root := t.TempDir()
	dir := testsupport.WriteTheme(t, root, "casper", map[string]string{"assets/app.css": "body{}"})
	for _, name := range []string{"index.html", "post.html", "assets/app.css"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestWriteTreeCreatesEmptyRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "themes", "bare")
	testsupport.WriteTree(t, root, nil)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s, err=%v", root, err)
	}
}

func TestMustOpenStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if st.Path() != cfg.Database.Path {
		t.Fatalf("unexpected db path %q", st.Path())
	}
}
