package boot_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/boot"
	"inkwell/internal/settings"
)

func TestFirstRunGeneratesOnce(t *testing.T) {
	store := newFakeSettings(&recorder{})
	var hooks atomic.Int32
	fr := &boot.FirstRun{
		Settings: store,
		OnFirstRun: func(context.Context, string) error {
			hooks.Add(1)
			return nil
		},
	}

	first, err := fr.Ensure(context.Background())
	require.NoError(t, err)
	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())

	second, err := fr.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.writeCount(), "an existing hash must not be rewritten")
	assert.Equal(t, int32(1), hooks.Load())
}

func TestFirstRunKeepsExistingHash(t *testing.T) {
	store := newFakeSettings(&recorder{})
	existing := "already-there"
	store.values[settings.KeyDBHash] = &existing

	hash, err := (&boot.FirstRun{Settings: store}).Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, existing, hash)
	assert.Zero(t, store.writeCount())
}

func TestFirstRunConcurrentCallersConverge(t *testing.T) {
	store := newFakeSettings(&recorder{})
	var hooks atomic.Int32

	const callers = 8
	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fr := &boot.FirstRun{
				Settings: store,
				NewHash:  func() string { return fmt.Sprintf("candidate-%d", i) },
				OnFirstRun: func(context.Context, string) error {
					hooks.Add(1)
					return nil
				},
			}
			hash, err := fr.Ensure(context.Background())
			assert.NoError(t, err)
			results[i] = hash
		}()
	}
	wg.Wait()

	for _, hash := range results {
		assert.Equal(t, results[0], hash)
	}
	persisted, err := store.Read(context.Background(), settings.KeyDBHash, settings.Internal)
	require.NoError(t, err)
	require.NotNil(t, persisted.Value)
	assert.Equal(t, results[0], *persisted.Value)
	assert.Equal(t, int32(1), hooks.Load(), "only the process whose hash was stored runs first-run work")
}

func TestFirstRunHookFailure(t *testing.T) {
	store := newFakeSettings(&recorder{})
	var hooks atomic.Int32
	fr := &boot.FirstRun{
		Settings: store,
		NewHash:  func() string { return "hash-1" },
		OnFirstRun: func(context.Context, string) error {
			hooks.Add(1)
			return errBoom
		},
	}
	_, err := fr.Ensure(context.Background())
	require.ErrorIs(t, err, errBoom)

	// The hash stays claimed, so the hook is not retried.
	hash, err := fr.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)
	assert.Equal(t, int32(1), hooks.Load())
}

func TestFirstRunMissingSetting(t *testing.T) {
	store := newFakeSettings(&recorder{})
	delete(store.values, settings.KeyDBHash)

	_, err := (&boot.FirstRun{Settings: store}).Ensure(context.Background())
	require.ErrorIs(t, err, settings.ErrNotFound)
}

func TestFirstRunWithoutSettings(t *testing.T) {
	_, err := (&boot.FirstRun{}).Ensure(context.Background())
	require.Error(t, err)
}
