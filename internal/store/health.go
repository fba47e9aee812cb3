package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DatabaseHealth summarizes database state for `inkwell status`.
type DatabaseHealth struct {
	DBPath            string
	DatabaseExists    bool
	DatabaseReadable  bool
	IntegrityCheck    bool
	AppliedMigrations []string
	PendingMigrations []string
	SettingsCount     int
	Error             string
}

// CheckHealth returns diagnostic information about the database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.Path()}
	if health.DBPath == "" {
		return health, ErrNotOpen
	}

	info, err := os.Stat(health.DBPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("database path %q is a directory", health.DBPath)
	}
	health.DatabaseExists = true

	db, err := s.conn()
	if err != nil {
		return health, err
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping database: %w", err)
	}
	health.DatabaseReadable = true

	applied, err := s.AppliedMigrations(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.AppliedMigrations = applied
	all, err := loadMigrations()
	if err != nil {
		return health, err
	}
	done := make(map[string]struct{}, len(applied))
	for _, v := range applied {
		done[v] = struct{}{}
	}
	for _, m := range all {
		if _, ok := done[m.version]; !ok {
			health.PendingMigrations = append(health.PendingMigrations, m.version)
		}
	}

	if len(health.PendingMigrations) < len(all) {
		if err := db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM settings").Scan(&health.SettingsCount); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count settings: %w", err)
		}
	}

	var integrityResult string
	if err := db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")
	return health, nil
}
