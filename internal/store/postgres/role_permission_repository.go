package postgres

import (
	"context"
	"fmt"

	"github.com/canchahub/canchahub/internal/rbac"
)

// RolePermissionRepository implements rbac.RolePermissionRepository
type RolePermissionRepository struct {
	db *DB
}

// NewRolePermissionRepository creates a new role-permission repository
func NewRolePermissionRepository(db *DB) *RolePermissionRepository {
	return &RolePermissionRepository{db: db}
}

// Link inserts the (role, permission) pair. Inserting an existing pair
// is a no-op; the primary key makes the insert race-safe.
func (r *RolePermissionRepository) Link(ctx context.Context, link *rbac.RolePermission) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`, link.RoleID, link.PermissionID, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to link permission to role: %w", err)
	}

	return nil
}

// Unlink removes the pair. Removing an absent pair is a no-op.
func (r *RolePermissionRepository) Unlink(ctx context.Context, roleID, permissionID string) error {
	_, err := r.db.pool.Exec(ctx, `
		DELETE FROM role_permissions
		WHERE role_id = $1 AND permission_id = $2
	`, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("failed to unlink permission from role: %w", err)
	}

	return nil
}

// ListForRole retrieves all links for a role
func (r *RolePermissionRepository) ListForRole(ctx context.Context, roleID string) ([]*rbac.RolePermission, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT role_id, permission_id, created_at
		FROM role_permissions
		WHERE role_id = $1
	`, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}
	defer rows.Close()

	var links []*rbac.RolePermission
	for rows.Next() {
		var link rbac.RolePermission
		if err := rows.Scan(&link.RoleID, &link.PermissionID, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role permission: %w", err)
		}
		links = append(links, &link)
	}

	return links, rows.Err()
}
