package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validatePing(); err != nil {
		return err
	}
	if err := c.validateBoot(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if !strings.Contains(c.Server.Bind, ":") {
		return fmt.Errorf("server.bind must be host:port, got %q", c.Server.Bind)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

func (c *Config) validateSite() error {
	if err := validateHTTPURL(c.Site.URL); err != nil {
		return fmt.Errorf("site.url: %w", err)
	}
	if _, err := language.Parse(c.Site.Locale); err != nil {
		return fmt.Errorf("site.locale: %w", err)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ContentDir == "" {
		return errors.New("paths.content_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.BusyTimeoutMS < 0 {
		return errors.New("database.busy_timeout_ms must be zero or positive")
	}
	return nil
}

func (c *Config) validatePing() error {
	if c.Ping.Timeout <= 0 {
		return errors.New("ping.timeout must be positive")
	}
	if !c.Ping.Enabled {
		return nil
	}
	for _, svc := range c.Ping.Services {
		if err := validateHTTPURL(svc); err != nil {
			return fmt.Errorf("ping.services: %w", err)
		}
	}
	return nil
}

func (c *Config) validateBoot() error {
	if c.Boot.Timeout < 0 {
		return errors.New("boot.timeout must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q is missing a host", raw)
	}
	return nil
}
