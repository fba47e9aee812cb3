package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates root and writes files (slash-separated paths relative to
// root), creating parent directories as needed.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", root, err)
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// WriteTheme installs a theme named name under themePath with the templates
// every theme needs plus any extra files.
func WriteTheme(t testing.TB, themePath, name string, extra map[string]string) string {
	t.Helper()
	files := map[string]string{
		"index.html": `{{.Site.Title}}`,
		"post.html":  `{{.Post.Title}}`,
	}
	for k, v := range extra {
		files[k] = v
	}
	dir := filepath.Join(themePath, name)
	WriteTree(t, dir, files)
	return dir
}
