package testsupport

import (
	"context"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/store"
)

// MustOpenStore opens and migrates a store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}
