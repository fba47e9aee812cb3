package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SettingRow is a raw settings table row. A nil Value is SQL NULL.
type SettingRow struct {
	Key       string
	Value     *string
	Type      string
	UpdatedAt time.Time
}

const settingColumns = "key, value, type, updated_at"

func scanSetting(scanner interface{ Scan(dest ...any) error }) (SettingRow, error) {
	var (
		row        SettingRow
		value      sql.NullString
		updatedRaw string
	)
	if err := scanner.Scan(&row.Key, &value, &row.Type, &updatedRaw); err != nil {
		return SettingRow{}, err
	}
	if value.Valid {
		v := value.String
		row.Value = &v
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		row.UpdatedAt = updated
	}
	return row, nil
}

// GetSetting returns a single setting or ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (SettingRow, error) {
	db, err := s.conn()
	if err != nil {
		return SettingRow{}, err
	}
	row, err := scanSetting(db.QueryRowContext(ctx, `SELECT `+settingColumns+` FROM settings WHERE key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return SettingRow{}, fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return SettingRow{}, fmt.Errorf("get setting %q: %w", key, err)
	}
	return row, nil
}

// ListSettings returns every stored setting ordered by key.
func (s *Store) ListSettings(ctx context.Context) ([]SettingRow, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT `+settingColumns+` FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []SettingRow
	for rows.Next() {
		row, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// InsertSettingIfMissing creates key with value unless it already exists.
// It reports whether a row was inserted.
func (s *Store) InsertSettingIfMissing(ctx context.Context, key string, value *string, typ string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO settings (key, value, type, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT (key) DO NOTHING`,
		key, nullableString(value), typ, nowString(),
	)
	if err != nil {
		return false, fmt.Errorf("insert setting %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// UpdateSetting overwrites the value of an existing key.
func (s *Store) UpdateSetting(ctx context.Context, key string, value *string) (SettingRow, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE settings SET value = ?, updated_at = ? WHERE key = ?`,
		nullableString(value), nowString(), key,
	)
	if err != nil {
		return SettingRow{}, fmt.Errorf("update setting %q: %w", key, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return SettingRow{}, fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	return s.GetSetting(ctx, key)
}

// ClaimSetting stores value only while key is still NULL and returns the row
// as persisted afterwards. claimed reports whether this call wrote it. Two
// writers racing on the same key both observe the winner's value.
func (s *Store) ClaimSetting(ctx context.Context, key, value string) (row SettingRow, claimed bool, err error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE settings SET value = ?, updated_at = ? WHERE key = ? AND value IS NULL`,
		value, nowString(), key,
	)
	if err != nil {
		return SettingRow{}, false, fmt.Errorf("claim setting %q: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return SettingRow{}, false, fmt.Errorf("rows affected: %w", err)
	}
	row, err = s.GetSetting(ctx, key)
	if err != nil {
		return SettingRow{}, false, err
	}
	return row, affected == 1, nil
}
