package boot

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"inkwell/internal/config"
	"inkwell/internal/diag"
	"inkwell/internal/settings"
)

// Stage names, in execution order.
const (
	StageLocale          = "i18n"
	StageConfig          = "config"
	StageDeprecations    = "config-deprecations"
	StagePersistence     = "persistence"
	StageMigrations      = "migrations"
	StageDefaults        = "settings-defaults"
	StageSettingsCache   = "settings-cache"
	StagePermissions     = "permissions"
	StageServices        = "services"
	StageServer          = "server"
	StageThemeValidation = "theme-validation"
)

// Localizer loads the message catalogue used by later stages.
type Localizer interface {
	Init(ctx context.Context) error
}

// ConfigLoader loads configuration and reports deprecated keys.
type ConfigLoader interface {
	Load(ctx context.Context, source string) (*config.Config, error)
	CheckDeprecated(cfg *config.Config) []diag.Issue
}

// Persistence opens the backing store.
type Persistence interface {
	Init(ctx context.Context, cfg *config.Config) error
}

// Migrations brings the schema up to date.
type Migrations interface {
	Init(ctx context.Context) error
}

// Settings is the settings API used during boot.
type Settings interface {
	PopulateDefaults(ctx context.Context) error
	Init(ctx context.Context) error
	Read(ctx context.Context, key string, access settings.Access) (settings.Setting, error)
	Write(ctx context.Context, key, value string, access settings.Access) (settings.Setting, error)
}

// Permissions loads the role/permission map.
type Permissions interface {
	Init(ctx context.Context) error
}

// Service is an auxiliary subsystem started during the fan-out stage.
type Service interface {
	Init(ctx context.Context) error
}

// FirstRunner guarantees the installation hash exists and returns it.
type FirstRunner interface {
	Ensure(ctx context.Context) (string, error)
}

// ThemeValidator inspects installed themes.
type ThemeValidator interface {
	Validate(ctx context.Context, themePath string) (diag.Report, error)
}

// ServerBuilder assembles the HTTP handler once every subsystem is ready.
type ServerBuilder interface {
	Build(ctx context.Context, cfg *config.Config) (http.Handler, error)
}

// Reporter is where recoverable problems end up.
type Reporter interface {
	LogError(message, context, help string)
	LogWarn(message, context, help string)
}

// Observer is notified around every stage.
type Observer interface {
	StageStarted(stage string)
	StageFinished(outcome Outcome)
}

// Deps are the collaborators the orchestrator sequences. FirstRun defaults to
// a FirstRun over Settings. Locale, Themes, Observer, and Logger are optional.
type Deps struct {
	Locale      Localizer
	Config      ConfigLoader
	Persistence Persistence
	Migrations  Migrations
	Settings    Settings
	Permissions Permissions
	FirstRun    FirstRunner
	Apps        Service
	Sitemap     Service
	Ping        Service
	Server      ServerBuilder
	Themes      ThemeValidator
	Reporter    Reporter
	Observer    Observer
	Logger      *slog.Logger
}

func (d Deps) validate() error {
	var missing []error
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, errors.New(name))
		}
	}
	check(d.Config != nil, "config loader")
	check(d.Persistence != nil, "persistence")
	check(d.Migrations != nil, "migrations")
	check(d.Settings != nil, "settings")
	check(d.Permissions != nil, "permissions")
	check(d.Apps != nil, "apps")
	check(d.Sitemap != nil, "sitemap")
	check(d.Ping != nil, "ping")
	check(d.Server != nil, "server builder")
	check(d.Reporter != nil, "reporter")
	if len(missing) > 0 {
		return errors.Join(append([]error{errors.New("boot: missing dependencies")}, missing...)...)
	}
	return nil
}
