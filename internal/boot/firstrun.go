package boot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"inkwell/internal/logging"
	"inkwell/internal/settings"
)

// FirstRun makes sure the installation hash exists. The hash is generated
// once per database; later boots read it back unchanged.
type FirstRun struct {
	Settings Settings
	Logger   *slog.Logger
	// NewHash generates a candidate hash. Defaults to a random UUIDv4.
	NewHash func() string
	// OnFirstRun, when set, runs only in the process whose candidate was
	// persisted. An error from it fails Ensure, but the hash stays claimed:
	// the hook runs at most once per database and is not retried.
	OnFirstRun func(ctx context.Context, hash string) error
}

// Ensure returns the persisted installation hash, creating it if unset.
func (f *FirstRun) Ensure(ctx context.Context) (string, error) {
	if f == nil || f.Settings == nil {
		return "", errors.New("first run: settings unavailable")
	}
	current, err := f.Settings.Read(ctx, settings.KeyDBHash, settings.Internal)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", settings.KeyDBHash, err)
	}
	if current.Value != nil {
		return *current.Value, nil
	}

	candidate := f.newHash()
	persisted, err := f.Settings.Write(ctx, settings.KeyDBHash, candidate, settings.Internal)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", settings.KeyDBHash, err)
	}
	if persisted.Value == nil {
		return "", fmt.Errorf("write %s: persisted value is empty", settings.KeyDBHash)
	}
	hash := *persisted.Value

	logger := logging.NewComponentLogger(f.Logger, "first-run")
	if hash != candidate {
		logger.Info("installation hash set by another process", logging.String(logging.FieldEventType, "first_run_lost"))
		return hash, nil
	}
	logger.Info("installation hash generated", logging.String(logging.FieldEventType, "first_run"))
	if f.OnFirstRun != nil {
		if err := f.OnFirstRun(ctx, hash); err != nil {
			return "", fmt.Errorf("first run hook: %w", err)
		}
	}
	return hash, nil
}

func (f *FirstRun) newHash() string {
	if f.NewHash != nil {
		return f.NewHash()
	}
	return uuid.NewString()
}
