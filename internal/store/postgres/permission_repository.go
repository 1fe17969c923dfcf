package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/canchahub/canchahub/internal/rbac"
)

// PermissionRepository implements rbac.PermissionRepository
type PermissionRepository struct {
	db *DB
}

// NewPermissionRepository creates a new permission repository
func NewPermissionRepository(db *DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// Create inserts a new permission
func (r *PermissionRepository) Create(ctx context.Context, p *rbac.Permission) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO permissions (id, tenant_id, action, resource, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		p.ID, p.TenantID, string(p.Action), string(p.Resource),
		p.Description, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "permissions_tenant_capability_key") {
			return rbac.ErrDuplicatePermission
		}
		return fmt.Errorf("failed to insert permission: %w", err)
	}

	return nil
}

// GetByID retrieves a permission by ID
func (r *PermissionRepository) GetByID(ctx context.Context, id string) (*rbac.Permission, error) {
	var p rbac.Permission
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, action, resource, description, is_active, created_at, updated_at
		FROM permissions
		WHERE id = $1
	`, id).Scan(
		&p.ID, &p.TenantID, &p.Action, &p.Resource,
		&p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, rbac.ErrPermissionNotFound
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}

	return &p, nil
}

// ListByTenant retrieves all permissions owned by a tenant
func (r *PermissionRepository) ListByTenant(ctx context.Context, tenantID string) ([]*rbac.Permission, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, action, resource, description, is_active, created_at, updated_at
		FROM permissions
		WHERE tenant_id = $1
		ORDER BY resource, action
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var permissions []*rbac.Permission
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.Action, &p.Resource,
			&p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		permissions = append(permissions, &p)
	}

	return permissions, rows.Err()
}

// Update updates permission information
func (r *PermissionRepository) Update(ctx context.Context, p *rbac.Permission) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE permissions
		SET description = $2, is_active = $3, updated_at = $4
		WHERE id = $1
	`, p.ID, p.Description, p.IsActive, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update permission: %w", err)
	}
	if result.RowsAffected() == 0 {
		return rbac.ErrPermissionNotFound
	}

	return nil
}
