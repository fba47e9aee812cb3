// Package testsupport builds throwaway inkwell installations for tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"inkwell/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose directories and database live under a
// per-test temp directory. The site URL is public so pings are not skipped.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Site.URL = "https://blog.example.com"
	cfgVal.Paths.ContentDir = filepath.Join(base, "content")
	cfgVal.Paths.ThemePath = filepath.Join(base, "content", "themes")
	cfgVal.Paths.AppsDir = filepath.Join(base, "content", "apps")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Database.Path = filepath.Join(base, "data", "inkwell.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSiteURL overrides the public site URL.
func WithSiteURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Site.URL = url
	}
}

// WithPing enables pinging the given services.
func WithPing(services ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ping.Enabled = true
		b.cfg.Ping.Services = services
	}
}

// WithDataDir moves the data directory and database, e.g. somewhere unwritable.
func WithDataDir(dir string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.DataDir = dir
		b.cfg.Database.Path = filepath.Join(dir, "inkwell.db")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ContentDir)
}
