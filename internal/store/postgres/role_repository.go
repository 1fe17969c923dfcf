package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/canchahub/canchahub/internal/rbac"
)

// RoleRepository implements rbac.RoleRepository
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create inserts a new role
func (r *RoleRepository) Create(ctx context.Context, role *rbac.Role) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO roles (id, tenant_id, name, display_name, is_active, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		role.ID, role.TenantID, role.Name, role.DisplayName,
		role.IsActive, role.IsSystem, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "roles_tenant_name_key") {
			return rbac.ErrDuplicateRoleName
		}
		return fmt.Errorf("failed to insert role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*rbac.Role, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, display_name, is_active, is_system, created_at, updated_at
		FROM roles
		WHERE id = $1
	`, id))
}

// GetByName retrieves a role by name within a tenant
func (r *RoleRepository) GetByName(ctx context.Context, tenantID, name string) (*rbac.Role, error) {
	return r.scanOne(r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, display_name, is_active, is_system, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1 AND name = $2
	`, tenantID, name))
}

// Update updates role information
func (r *RoleRepository) Update(ctx context.Context, role *rbac.Role) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE roles
		SET display_name = $2, is_active = $3, updated_at = $4
		WHERE id = $1
	`, role.ID, role.DisplayName, role.IsActive, role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}

	return nil
}

// Delete removes a role together with its permission links and user
// grants. The cascade runs as explicit deletes in one transaction so the
// role never disappears while dependents remain.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete role permission links: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE role_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete role grants: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}

	return tx.Commit(ctx)
}

// ListByTenant retrieves all roles owned by a tenant
func (r *RoleRepository) ListByTenant(ctx context.Context, tenantID string) ([]*rbac.Role, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, display_name, is_active, is_system, created_at, updated_at
		FROM roles
		WHERE tenant_id = $1
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*rbac.Role
	for rows.Next() {
		var role rbac.Role
		if err := rows.Scan(
			&role.ID, &role.TenantID, &role.Name, &role.DisplayName,
			&role.IsActive, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, &role)
	}

	return roles, rows.Err()
}

func (r *RoleRepository) scanOne(row pgx.Row) (*rbac.Role, error) {
	var role rbac.Role
	err := row.Scan(
		&role.ID, &role.TenantID, &role.Name, &role.DisplayName,
		&role.IsActive, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}
