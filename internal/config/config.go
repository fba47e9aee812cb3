package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains listener and response settings.
type Server struct {
	Bind string `toml:"bind"`
	// Compress enables gzip responses. Unset means enabled.
	Compress        *bool `toml:"compress"`
	ShutdownTimeout int   `toml:"shutdown_timeout"`
	// APIToken guards /admin and /api. Empty disables authentication.
	APIToken string `toml:"api_token"`

	// Gzip is the pre-1.0 spelling of Compress.
	Gzip *bool `toml:"gzip"`
}

// CompressEnabled reports whether responses should be gzip encoded.
func (s Server) CompressEnabled() bool {
	return s.Compress == nil || *s.Compress
}

// Site describes the public identity of the blog.
type Site struct {
	URL   string `toml:"url"`
	Title string `toml:"title"`
	// Locale selects the message catalogue, as a BCP 47 tag.
	Locale string `toml:"locale"`
}

// Paths contains directory configuration.
type Paths struct {
	ContentDir string `toml:"content_dir"`
	ThemePath  string `toml:"theme_path"`
	AppsDir    string `toml:"apps_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`

	// ThemesDir is the pre-1.0 spelling of ThemePath.
	ThemesDir string `toml:"themes_dir"`
}

// Database contains SQLite settings.
type Database struct {
	Path          string `toml:"path"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`

	// Filename was resolved relative to paths.data_dir; use Path instead.
	Filename string `toml:"filename"`
}

// Sitemap toggles sitemap generation.
type Sitemap struct {
	Enabled bool `toml:"enabled"`
}

// Ping configures outbound update notifications.
type Ping struct {
	Enabled  bool     `toml:"enabled"`
	Services []string `toml:"services"`
	Timeout  int      `toml:"timeout"`
}

// Boot bounds the startup sequence. Timeout is in seconds; zero disables it.
type Boot struct {
	Timeout int `toml:"timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for inkwell.
//
// Configuration sections by subsystem:
//   - Server: listener address, compression, shutdown grace period
//   - Site: public URL and title used by the sitemap and pings
//   - Paths: content, theme, app, data, and log directories
//   - Database: SQLite location and busy timeout
//   - Sitemap / Ping: auxiliary services started during boot
//   - Boot: optional deadline for the startup sequence
//   - Logging: log format and level
type Config struct {
	Server   Server   `toml:"server"`
	Site     Site     `toml:"site"`
	Paths    Paths    `toml:"paths"`
	Database Database `toml:"database"`
	Sitemap  Sitemap  `toml:"sitemap"`
	Ping     Ping     `toml:"ping"`
	Boot     Boot     `toml:"boot"`
	Logging  Logging  `toml:"logging"`

	// UpdateCheck is no longer honoured.
	UpdateCheck *bool `toml:"update_check"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/inkwell/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("inkwell.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the server writes to. The theme
// and apps directories are created on a best-effort basis; an empty theme
// directory is reported by theme validation rather than failing here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ContentDir, c.Paths.DataDir, c.Paths.LogDir, filepath.Dir(c.Database.Path)} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, dir := range []string{c.Paths.ThemePath, c.Paths.AppsDir} {
		if strings.TrimSpace(dir) != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
	}
	return nil
}

// ShutdownTimeout returns the HTTP graceful shutdown window.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

// BootTimeout returns the startup deadline, or zero when unbounded.
func (c *Config) BootTimeout() time.Duration {
	return time.Duration(c.Boot.Timeout) * time.Second
}

// PingTimeout returns the per-request timeout for outbound pings.
func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.Ping.Timeout) * time.Second
}

// BusyTimeout returns the SQLite busy timeout.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond
}

// LockPath is the instance lock guarding the data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "inkwelld.lock")
}

// PIDPath is where the daemon records its process id.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.DataDir, "inkwelld.pid")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
