// Package settings provides the cached key/value settings API. Every key is
// declared in the embedded defaults registry; internal keys are invisible to
// role-based callers, and immutable keys can be written exactly once.
package settings

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"inkwell/internal/logging"
	"inkwell/internal/store"
)

//go:embed defaults.json
var defaultsJSON []byte

// Well-known keys.
const (
	KeyDBHash        = "dbHash"
	KeyTitle         = "title"
	KeyDescription   = "description"
	KeyPostsPerPage  = "postsPerPage"
	KeyActiveTheme   = "activeTheme"
	KeyActiveApps    = "activeApps"
	KeyInstalledApps = "installedApps"
)

var (
	ErrNotReady     = errors.New("settings: cache not initialized")
	ErrNotFound     = errors.New("settings: unknown key")
	ErrNotPermitted = errors.New("settings: not permitted")
)

// Access describes who is asking. Internal callers bypass permission checks.
type Access struct {
	Internal bool
	Role     string
}

// Internal is the access used by boot-time subsystems.
var Internal = Access{Internal: true}

// AsRole returns role-scoped access.
func AsRole(role string) Access {
	return Access{Role: role}
}

// Setting is a cached setting value. A nil Value means unset.
type Setting struct {
	Key       string
	Value     *string
	Type      string
	UpdatedAt time.Time
}

// String returns the value, or "" when unset.
func (s Setting) String() string {
	if s.Value == nil {
		return ""
	}
	return *s.Value
}

type definition struct {
	Key       string  `json:"-"`
	Type      string  `json:"-"`
	Default   *string `json:"defaultValue"`
	Internal  bool    `json:"internal"`
	Immutable bool    `json:"immutable"`
}

// Store is the persistence surface settings needs.
type Store interface {
	ListSettings(ctx context.Context) ([]store.SettingRow, error)
	InsertSettingIfMissing(ctx context.Context, key string, value *string, typ string) (bool, error)
	UpdateSetting(ctx context.Context, key string, value *string) (store.SettingRow, error)
	ClaimSetting(ctx context.Context, key, value string) (store.SettingRow, bool, error)
}

// Checker answers role permission questions.
type Checker interface {
	CanThis(role, action, object string) error
}

// Service is the settings API.
type Service struct {
	store  Store
	perms  Checker
	logger *slog.Logger
	defs   map[string]definition

	mu    sync.RWMutex
	cache map[string]Setting
}

// New builds a Service from the embedded defaults registry.
func New(st Store, perms Checker, logger *slog.Logger) (*Service, error) {
	defs, err := loadDefinitions(defaultsJSON)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:  st,
		perms:  perms,
		logger: logging.NewComponentLogger(logger, "settings"),
		defs:   defs,
	}, nil
}

func loadDefinitions(raw []byte) (map[string]definition, error) {
	var grouped map[string]map[string]definition
	if err := json.Unmarshal(raw, &grouped); err != nil {
		return nil, fmt.Errorf("decode settings defaults: %w", err)
	}
	defs := make(map[string]definition)
	for typ, entries := range grouped {
		for key, def := range entries {
			if _, dup := defs[key]; dup {
				return nil, fmt.Errorf("settings defaults: duplicate key %q", key)
			}
			def.Key = key
			def.Type = typ
			defs[key] = def
		}
	}
	return defs, nil
}

// PopulateDefaults inserts every registered key that is not yet stored.
// Existing values are never touched.
func (s *Service) PopulateDefaults(ctx context.Context) error {
	keys := make([]string, 0, len(s.defs))
	for key := range s.defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	inserted := 0
	for _, key := range keys {
		def := s.defs[key]
		ok, err := s.store.InsertSettingIfMissing(ctx, key, def.Default, def.Type)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}
	if inserted > 0 {
		s.logger.Info("settings defaults populated", logging.Int("inserted", inserted))
	}
	return nil
}

// Init loads every stored setting into the cache.
func (s *Service) Init(ctx context.Context) error {
	rows, err := s.store.ListSettings(ctx)
	if err != nil {
		return err
	}
	cache := make(map[string]Setting, len(rows))
	for _, row := range rows {
		cache[row.Key] = fromRow(row)
	}
	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
	s.logger.Debug("settings cache loaded", logging.Int("keys", len(cache)))
	return nil
}

// Read returns a setting. Role-scoped callers need the setting.read permission
// and never see internal keys.
func (s *Service) Read(ctx context.Context, key string, access Access) (Setting, error) {
	if err := ctx.Err(); err != nil {
		return Setting{}, err
	}
	if err := s.authorize(key, "read", access); err != nil {
		return Setting{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return Setting{}, ErrNotReady
	}
	setting, ok := s.cache[key]
	if !ok {
		return Setting{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return setting, nil
}

// Write stores value and returns the setting as persisted. For immutable keys
// the value is only written while the stored value is unset; otherwise the
// existing value is returned unchanged.
func (s *Service) Write(ctx context.Context, key, value string, access Access) (Setting, error) {
	if err := s.authorize(key, "edit", access); err != nil {
		return Setting{}, err
	}
	s.mu.RLock()
	ready := s.cache != nil
	s.mu.RUnlock()
	if !ready {
		return Setting{}, ErrNotReady
	}

	var row store.SettingRow
	if s.defs[key].Immutable {
		var (
			claimed bool
			err     error
		)
		row, claimed, err = s.store.ClaimSetting(ctx, key, value)
		if err != nil {
			return Setting{}, err
		}
		if !claimed {
			s.logger.Debug("immutable setting already set", logging.String("key", key))
		}
	} else {
		var err error
		row, err = s.store.UpdateSetting(ctx, key, &value)
		if err != nil {
			return Setting{}, err
		}
	}

	setting := fromRow(row)
	s.mu.Lock()
	s.cache[key] = setting
	s.mu.Unlock()
	return setting, nil
}

// List returns every setting visible to access, ordered by key.
func (s *Service) List(ctx context.Context, access Access) ([]Setting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !access.Internal {
		if err := s.checkRole(access.Role, "browse"); err != nil {
			return nil, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return nil, ErrNotReady
	}
	out := make([]Setting, 0, len(s.cache))
	for key, setting := range s.cache {
		if !access.Internal && s.defs[key].Internal {
			continue
		}
		out = append(out, setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Service) authorize(key, action string, access Access) error {
	def, known := s.defs[key]
	if !known {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if access.Internal {
		return nil
	}
	if def.Internal {
		return fmt.Errorf("%w: %s is internal", ErrNotPermitted, key)
	}
	return s.checkRole(access.Role, action)
}

func (s *Service) checkRole(role, action string) error {
	if s.perms == nil {
		return fmt.Errorf("%w: no permission checker", ErrNotPermitted)
	}
	if err := s.perms.CanThis(role, action, "setting"); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPermitted, err)
	}
	return nil
}

func fromRow(row store.SettingRow) Setting {
	return Setting{Key: row.Key, Value: row.Value, Type: row.Type, UpdatedAt: row.UpdatedAt}
}
