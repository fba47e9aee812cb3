package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkwell/internal/apps"
	"inkwell/internal/boot"
	"inkwell/internal/config"
	"inkwell/internal/i18n"
	"inkwell/internal/logging"
	"inkwell/internal/permissions"
	"inkwell/internal/ping"
	"inkwell/internal/settings"
	"inkwell/internal/sitemap"
	"inkwell/internal/store"
	"inkwell/internal/theme"
	"inkwell/internal/web"
)

const welcomeSlug = "welcome"

// Runtime holds the collaborators wired for one boot.
type Runtime struct {
	Deps     boot.Deps
	Loader   *config.Loader
	Store    *store.Store
	Settings *settings.Service
	Apps     *apps.Service
	Sitemap  *sitemap.Generator
	Ping     *ping.Pinger
}

// Assemble wires every boot collaborator around cfg. Nothing touches disk
// until the returned Deps are booted.
func Assemble(cfg *config.Config, logger *slog.Logger, hub *logging.StreamHub) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	st := store.New()
	perms := permissions.New(st, logger)
	settingsSvc, err := settings.New(st, perms, logger)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	reporter := logging.NewReporter(logger, "boot")

	appsSvc := apps.New(cfg.Paths.AppsDir, settingsSvc, reporter, logger)
	sitemaps := sitemap.New(st, cfg.Site.URL, cfg.Sitemap.Enabled, logger)
	pinger := ping.New(ping.Options{
		Enabled:   cfg.Ping.Enabled,
		Services:  cfg.Ping.Services,
		Timeout:   cfg.PingTimeout(),
		SiteTitle: cfg.Site.Title,
		SiteURL:   cfg.Site.URL,
	}, logger)
	loader := &config.Loader{Logger: logger, Preloaded: cfg}

	rt := &Runtime{
		Loader:   loader,
		Store:    st,
		Settings: settingsSvc,
		Apps:     appsSvc,
		Sitemap:  sitemaps,
		Ping:     pinger,
	}
	rt.Deps = boot.Deps{
		Locale:      i18n.New(cfg.Site.Locale),
		Config:      loader,
		Persistence: st,
		Migrations:  &store.Migrator{Store: st},
		Settings:    settingsSvc,
		Permissions: perms,
		FirstRun: &boot.FirstRun{
			Settings:   settingsSvc,
			Logger:     logger,
			OnFirstRun: rt.seedWelcomePost,
		},
		Apps:    appsSvc,
		Sitemap: sitemaps,
		Ping:    pinger,
		Server: &web.Builder{
			Settings: settingsSvc,
			Content:  st,
			Sitemap:  sitemaps,
			Apps:     appsSvc,
			Hub:      hub,
			Logger:   logger,
		},
		Themes:   theme.NewValidator(logger),
		Reporter: reporter,
		Logger:   logger,
	}
	return rt, nil
}

// seedWelcomePost publishes a starter post on a fresh installation.
func (rt *Runtime) seedWelcomePost(ctx context.Context, _ string) error {
	now := time.Now().UTC()
	_, err := rt.Store.InsertPost(ctx, store.Post{
		Slug:        welcomeSlug,
		Title:       "Welcome to inkwell",
		HTML:        "<p>This is your first post. Edit or delete it, then start writing.</p>",
		Status:      store.PostStatusPublished,
		PublishedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("seed welcome post: %w", err)
	}
	return rt.Sitemap.Refresh(ctx)
}

// Close releases the store.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Store == nil {
		return nil
	}
	return rt.Store.Close()
}
