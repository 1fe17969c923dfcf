package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/canchahub/canchahub/internal/rbac"
)

// UserRoleRepository implements rbac.UserRoleRepository
type UserRoleRepository struct {
	db *DB
}

// NewUserRoleRepository creates a new user-role repository
func NewUserRoleRepository(db *DB) *UserRoleRepository {
	return &UserRoleRepository{db: db}
}

// Assign inserts a new grant row
func (r *UserRoleRepository) Assign(ctx context.Context, grant *rbac.UserRole) error {
	var assignedBy sql.NullString
	if grant.AssignedBy != "" {
		assignedBy = sql.NullString{String: grant.AssignedBy, Valid: true}
	}

	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO user_roles (id, user_id, role_id, assigned_at, assigned_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, grant.ID, grant.UserID, grant.RoleID, grant.AssignedAt, assignedBy, grant.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}

// Revoke removes all grant rows for the (user, role) pair
func (r *UserRoleRepository) Revoke(ctx context.Context, userID, roleID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = $2
	`, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return rbac.ErrGrantNotFound
	}

	return nil
}

// ListForUser retrieves all grant rows for a user, expired included
func (r *UserRoleRepository) ListForUser(ctx context.Context, userID string) ([]*rbac.UserRole, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, user_id, role_id, assigned_at, assigned_by, expires_at
		FROM user_roles
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}
	defer rows.Close()

	var grants []*rbac.UserRole
	for rows.Next() {
		var grant rbac.UserRole
		var assignedBy sql.NullString
		var expiresAt sql.NullTime
		if err := rows.Scan(&grant.ID, &grant.UserID, &grant.RoleID, &grant.AssignedAt, &assignedBy, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan user role: %w", err)
		}
		if assignedBy.Valid {
			grant.AssignedBy = assignedBy.String
		}
		if expiresAt.Valid {
			grant.ExpiresAt = &expiresAt.Time
		}
		grants = append(grants, &grant)
	}

	return grants, rows.Err()
}

// DeleteExpiredBefore removes grant rows whose expiry predates the cutoff
func (r *UserRoleRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM user_roles
		WHERE expires_at IS NOT NULL AND expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired grants: %w", err)
	}

	return result.RowsAffected(), nil
}
