package config

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/diag"
)

// Loader adapts Load to the boot sequence. Resolved and Exists describe the
// most recent successful load.
type Loader struct {
	Logger *slog.Logger
	// Preloaded, when set, is validated again and returned instead of reading
	// source. The daemon reads its config before boot to set up logging and
	// the instance lock.
	Preloaded *Config

	Resolved string
	Exists   bool
}

// Load reads the configuration at source, or the default search path when
// source is empty.
func (l *Loader) Load(ctx context.Context, source string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Preloaded != nil {
		if err := l.Preloaded.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return l.Preloaded, nil
	}
	cfg, resolved, exists, err := Load(source)
	if err != nil {
		return nil, err
	}
	l.Resolved = resolved
	l.Exists = exists
	if l.Logger != nil {
		if exists {
			l.Logger.Debug("configuration loaded", slog.String("config_path", resolved))
		} else {
			l.Logger.Info("no configuration file found, using defaults", slog.String("config_path", resolved))
		}
	}
	return cfg, nil
}

// CheckDeprecated reports deprecated keys present in cfg.
func (l *Loader) CheckDeprecated(cfg *Config) []diag.Issue {
	return cfg.Deprecations()
}
