package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	c.normalizeSite()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizePing()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if value, ok := os.LookupEnv("INKWELL_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Server.APIToken = value
	}
	c.Server.APIToken = strings.TrimSpace(c.Server.APIToken)
	if c.Server.Compress == nil && c.Server.Gzip != nil {
		value := *c.Server.Gzip
		c.Server.Compress = &value
	}
}

func (c *Config) normalizeSite() {
	if value, ok := os.LookupEnv("INKWELL_SITE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Site.URL = value
	}
	c.Site.URL = strings.TrimRight(strings.TrimSpace(c.Site.URL), "/")
	if c.Site.URL == "" {
		c.Site.URL = defaultSiteURL
	}
	c.Site.Title = strings.TrimSpace(c.Site.Title)
	if c.Site.Title == "" {
		c.Site.Title = defaultSiteTitle
	}
	c.Site.Locale = strings.TrimSpace(c.Site.Locale)
	if c.Site.Locale == "" {
		c.Site.Locale = defaultSiteLocale
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ContentDir, err = expandPath(c.Paths.ContentDir); err != nil {
		return fmt.Errorf("paths.content_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ThemePath) == "" {
		c.Paths.ThemePath = strings.TrimSpace(c.Paths.ThemesDir)
	}
	if strings.TrimSpace(c.Paths.ThemePath) == "" && c.Paths.ContentDir != "" {
		c.Paths.ThemePath = filepath.Join(c.Paths.ContentDir, "themes")
	}
	if c.Paths.ThemePath, err = expandPath(c.Paths.ThemePath); err != nil {
		return fmt.Errorf("paths.theme_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.AppsDir) == "" && c.Paths.ContentDir != "" {
		c.Paths.AppsDir = filepath.Join(c.Paths.ContentDir, "apps")
	}
	if c.Paths.AppsDir, err = expandPath(c.Paths.AppsDir); err != nil {
		return fmt.Errorf("paths.apps_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDatabase() error {
	path := strings.TrimSpace(c.Database.Path)
	if path == "" {
		name := strings.TrimSpace(c.Database.Filename)
		if name == "" {
			name = defaultDatabaseFile
		}
		if filepath.IsAbs(name) {
			path = name
		} else {
			path = filepath.Join(c.Paths.DataDir, name)
		}
	}
	var err error
	if c.Database.Path, err = expandPath(path); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePing() {
	services := make([]string, 0, len(c.Ping.Services))
	seen := make(map[string]struct{}, len(c.Ping.Services))
	for _, svc := range c.Ping.Services {
		svc = strings.TrimSpace(svc)
		if svc == "" {
			continue
		}
		if _, ok := seen[svc]; ok {
			continue
		}
		seen[svc] = struct{}{}
		services = append(services, svc)
	}
	c.Ping.Services = services
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
