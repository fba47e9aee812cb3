package permissions_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/logging"
	"inkwell/internal/permissions"
	"inkwell/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ContentDir = filepath.Join(root, "content")
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Database.Path = filepath.Join(root, "data", "inkwell.db")
	s, err := store.Open(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCanThisBeforeInit(t *testing.T) {
	svc := permissions.New(openStore(t), logging.NewNop())
	if err := svc.CanThis("Administrator", "edit", "setting"); !errors.Is(err, permissions.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestInitSeedsFixturesIdempotently(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	svc := permissions.New(st, logging.NewNop())
	if err := svc.Init(ctx); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	first, err := st.Grants(ctx)
	if err != nil {
		t.Fatalf("Grants: %v", err)
	}
	if err := permissions.New(st, logging.NewNop()).Init(ctx); err != nil {
		t.Fatalf("second Init returned error: %v", err)
	}
	second, err := st.Grants(ctx)
	if err != nil {
		t.Fatalf("Grants: %v", err)
	}
	if len(first) == 0 || len(first) != len(second) {
		t.Fatalf("expected stable grant count, got %d then %d", len(first), len(second))
	}

	roles := svc.Roles()
	if len(roles) != 4 {
		t.Fatalf("expected 4 roles, got %v", roles)
	}
}

func TestCanThis(t *testing.T) {
	svc := permissions.New(openStore(t), logging.NewNop())
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	cases := []struct {
		role, action, object string
		allowed              bool
	}{
		{"Administrator", "edit", "setting", true},
		{"Administrator", "install", "app", true},
		{"Editor", "publish", "post", true},
		{"Editor", "edit", "setting", false},
		{"Author", "read", "setting", true},
		{"Author", "destroy", "post", false},
		{"Contributor", "add", "post", false},
		{"Nobody", "read", "setting", false},
	}
	for _, tc := range cases {
		err := svc.CanThis(tc.role, tc.action, tc.object)
		if tc.allowed && err != nil {
			t.Fatalf("%s %s %s: expected allowed, got %v", tc.role, tc.action, tc.object, err)
		}
		if !tc.allowed && !errors.Is(err, permissions.ErrNoPermission) {
			t.Fatalf("%s %s %s: expected ErrNoPermission, got %v", tc.role, tc.action, tc.object, err)
		}
	}
}
