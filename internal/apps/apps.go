// Package apps loads the apps named by the activeApps setting.
//
// An app is a directory under paths.apps_dir with a package.json manifest.
// A broken app is reported and skipped; only settings failures are fatal.
package apps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"inkwell/internal/i18n"
	"inkwell/internal/logging"
	"inkwell/internal/settings"
)

// Settings is the subset of the settings API apps needs.
type Settings interface {
	Read(ctx context.Context, key string, access settings.Access) (settings.Setting, error)
	Write(ctx context.Context, key, value string, access settings.Access) (settings.Setting, error)
}

// Reporter receives per-app load failures.
type Reporter interface {
	LogError(message, context, help string)
}

// App is a loaded app manifest.
type App struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Dir         string `json:"-"`
}

// Service tracks which apps are loaded.
type Service struct {
	dir      string
	settings Settings
	reporter Reporter
	logger   *slog.Logger

	mu     sync.RWMutex
	loaded []App
}

// New returns an apps service reading manifests under dir.
func New(dir string, st Settings, reporter Reporter, logger *slog.Logger) *Service {
	return &Service{
		dir:      dir,
		settings: st,
		reporter: reporter,
		logger:   logging.NewComponentLogger(logger, "apps"),
	}
}

// Init loads every active app and records the loaded set in installedApps.
func (s *Service) Init(ctx context.Context) error {
	active, err := s.readList(ctx, settings.KeyActiveApps)
	if err != nil {
		return err
	}

	var loaded []App
	for _, name := range active {
		if err := ctx.Err(); err != nil {
			return err
		}
		app, err := s.load(name)
		if err != nil {
			s.report(i18n.T("apps.load_failed", name, err), name, i18n.T("apps.load_failed.help"))
			continue
		}
		loaded = append(loaded, app)
	}

	names := make([]string, 0, len(loaded))
	for _, app := range loaded {
		names = append(names, app.Name)
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode %s: %w", settings.KeyInstalledApps, err)
	}
	if _, err := s.settings.Write(ctx, settings.KeyInstalledApps, string(encoded), settings.Internal); err != nil {
		return fmt.Errorf("write %s: %w", settings.KeyInstalledApps, err)
	}

	s.mu.Lock()
	s.loaded = loaded
	s.mu.Unlock()

	s.logger.Info("apps loaded",
		logging.String(logging.FieldEventType, "apps_loaded"),
		logging.Int("active", len(active)),
		logging.Int("loaded", len(loaded)),
	)
	return nil
}

// Loaded returns the apps loaded by the last Init, sorted by name.
func (s *Service) Loaded() []App {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]App(nil), s.loaded...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) readList(ctx context.Context, key string) ([]string, error) {
	setting, err := s.settings.Read(ctx, key, settings.Internal)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if setting.Value == nil || strings.TrimSpace(*setting.Value) == "" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(*setting.Value), &names); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return names, nil
}

func (s *Service) load(name string) (App, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return App{}, errors.New("invalid app name")
	}
	dir := filepath.Join(s.dir, name)
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return App{}, err
	}
	var app App
	if err := json.Unmarshal(data, &app); err != nil {
		return App{}, fmt.Errorf("decode package.json: %w", err)
	}
	if app.Name == "" {
		app.Name = name
	}
	app.Dir = dir
	return app, nil
}

func (s *Service) report(message, where, help string) {
	if s.reporter != nil {
		s.reporter.LogError(message, where, help)
		return
	}
	logging.ErrorWithContext(s.logger, message, "app_load_failed",
		logging.String(logging.FieldContext, where),
		logging.String(logging.FieldErrorHint, help),
	)
}
