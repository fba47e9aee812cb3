package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"inkwell/internal/config"
	"inkwell/internal/i18n"
	"inkwell/internal/logging"
	"inkwell/internal/permissions"
	"inkwell/internal/settings"
	"inkwell/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) flagPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.flagPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := i18n.New(cfg.Site.Locale).Init(context.Background()); err != nil {
			c.configErr = fmt.Errorf("load messages: %w", err)
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// openSettings opens the existing database read-mostly and loads the settings
// cache. It refuses to create a database that inkwelld has never booted.
func (c *commandContext) openSettings(ctx context.Context) (*settings.Service, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("database %s does not exist; start inkwelld once to create it", cfg.Database.Path)
		}
		return nil, nil, fmt.Errorf("stat database: %w", err)
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeFn := func() { _ = st.Close() }

	logger := logging.NewNop()
	perms := permissions.New(st, logger)
	if err := perms.Init(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("load permissions: %w", err)
	}
	svc, err := settings.New(st, perms, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := svc.Init(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	return svc, closeFn, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
