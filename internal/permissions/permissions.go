// Package permissions seeds the built-in roles and answers "may this role do
// that" questions from an in-memory map loaded at boot.
package permissions

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"inkwell/internal/logging"
	"inkwell/internal/store"
)

//go:embed fixtures.json
var fixturesJSON []byte

var (
	// ErrNotReady is returned by CanThis before Init completes.
	ErrNotReady = errors.New("permissions: not initialized")
	// ErrNoPermission is returned when the role lacks the requested grant.
	ErrNoPermission = errors.New("permissions: not allowed")
)

type fixtures struct {
	Roles []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"roles"`
	Permissions map[string][]string            `json:"permissions"`
	Grants      map[string]map[string][]string `json:"grants"`
}

// Store is the persistence surface the service needs.
type Store interface {
	SeedRole(ctx context.Context, name, description string) (int64, error)
	SeedPermission(ctx context.Context, action, object string) (int64, error)
	Grant(ctx context.Context, roleID, permissionID int64) error
	Grants(ctx context.Context) ([]store.Grant, error)
}

// Service holds the role→permission map.
type Service struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	actions map[string]map[string]struct{}
}

// New constructs an uninitialized service.
func New(st Store, logger *slog.Logger) *Service {
	return &Service{store: st, logger: logging.NewComponentLogger(logger, "permissions")}
}

// Init seeds the fixture roles and permissions (idempotently) and loads the
// actions map. It must complete before anything asks CanThis.
func (s *Service) Init(ctx context.Context) error {
	var fx fixtures
	if err := json.Unmarshal(fixturesJSON, &fx); err != nil {
		return fmt.Errorf("decode permission fixtures: %w", err)
	}

	roleIDs := make(map[string]int64, len(fx.Roles))
	for _, role := range fx.Roles {
		id, err := s.store.SeedRole(ctx, role.Name, role.Description)
		if err != nil {
			return err
		}
		roleIDs[role.Name] = id
	}

	permIDs := make(map[string]int64)
	for _, object := range sortedKeys(fx.Permissions) {
		for _, action := range fx.Permissions[object] {
			id, err := s.store.SeedPermission(ctx, action, object)
			if err != nil {
				return err
			}
			permIDs[key(action, object)] = id
		}
	}

	for _, role := range sortedKeys(fx.Grants) {
		roleID, ok := roleIDs[role]
		if !ok {
			return fmt.Errorf("permission fixtures: grant for unknown role %q", role)
		}
		for object, actions := range fx.Grants[role] {
			if len(actions) == 1 && actions[0] == "*" {
				actions = fx.Permissions[object]
			}
			for _, action := range actions {
				permID, ok := permIDs[key(action, object)]
				if !ok {
					return fmt.Errorf("permission fixtures: unknown permission %s.%s", object, action)
				}
				if err := s.store.Grant(ctx, roleID, permID); err != nil {
					return err
				}
			}
		}
	}

	grants, err := s.store.Grants(ctx)
	if err != nil {
		return err
	}
	actions := make(map[string]map[string]struct{})
	for _, g := range grants {
		if actions[g.Role] == nil {
			actions[g.Role] = make(map[string]struct{})
		}
		actions[g.Role][key(g.Action, g.Object)] = struct{}{}
	}

	s.mu.Lock()
	s.actions = actions
	s.mu.Unlock()
	s.logger.Debug("permissions loaded", logging.Int("roles", len(actions)), logging.Int("grants", len(grants)))
	return nil
}

// CanThis returns nil when role may perform action on object.
func (s *Service) CanThis(role, action, object string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.actions == nil {
		return ErrNotReady
	}
	if _, ok := s.actions[role][key(action, object)]; ok {
		return nil
	}
	return fmt.Errorf("%w: %s cannot %s %s", ErrNoPermission, role, action, object)
}

// Roles lists the loaded role names.
func (s *Service) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.actions)
}

func key(action, object string) string {
	return object + "." + action
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
