package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Grant is one role→(action, object) permission.
type Grant struct {
	Role   string
	Action string
	Object string
}

// SeedRole creates the role if missing and returns its id.
func (s *Store) SeedRole(ctx context.Context, name, description string) (int64, error) {
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO roles (name, description) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
		name, description,
	); err != nil {
		return 0, fmt.Errorf("seed role %q: %w", name, err)
	}
	return s.lookupID(ctx, `SELECT id FROM roles WHERE name = ?`, name)
}

// SeedPermission creates the (action, object) pair if missing and returns its id.
func (s *Store) SeedPermission(ctx context.Context, action, object string) (int64, error) {
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO permissions (action, object) VALUES (?, ?) ON CONFLICT (action, object) DO NOTHING`,
		action, object,
	); err != nil {
		return 0, fmt.Errorf("seed permission %s.%s: %w", object, action, err)
	}
	return s.lookupID(ctx, `SELECT id FROM permissions WHERE action = ? AND object = ?`, action, object)
}

// Grant links a role to a permission. Repeated grants are no-ops.
func (s *Store) Grant(ctx context.Context, roleID, permissionID int64) error {
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO permissions_roles (role_id, permission_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		roleID, permissionID,
	); err != nil {
		return fmt.Errorf("grant permission %d to role %d: %w", permissionID, roleID, err)
	}
	return nil
}

// Grants returns every role permission.
func (s *Store) Grants(ctx context.Context) ([]Grant, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
        SELECT r.name, p.action, p.object
        FROM permissions_roles pr
        JOIN roles r ON r.id = pr.role_id
        JOIN permissions p ON p.id = pr.permission_id
        ORDER BY r.name, p.object, p.action`)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.Role, &g.Action, &g.Object); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (s *Store) lookupID(ctx context.Context, query string, args ...any) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}
