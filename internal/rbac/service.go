// Copyright 2026 The CanchaHub Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rbac

import (
	"context"
	"fmt"
	"time"

	"github.com/canchahub/canchahub/internal/audit"
	"github.com/canchahub/canchahub/internal/id"
)

// Service provides the role and permission administration commands and
// the authorization resolver. All mutation is admin-initiated; nothing
// here runs in the background.
type Service struct {
	permissions PermissionRepository
	roles       RoleRepository
	links       RolePermissionRepository
	grants      UserRoleRepository
	users       UserDirectory
	auditLogger audit.Logger
}

// NewService creates a new RBAC service
func NewService(
	permissions PermissionRepository,
	roles RoleRepository,
	links RolePermissionRepository,
	grants UserRoleRepository,
	users UserDirectory,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		permissions: permissions,
		roles:       roles,
		links:       links,
		grants:      grants,
		users:       users,
		auditLogger: auditLogger,
	}
}

// CreatePermission registers a new (action, resource) capability for a tenant.
// The triple (action, resource, tenant) must not already exist.
func (s *Service) CreatePermission(ctx context.Context, tenantID string, action Action, resource Resource, description string) (*Permission, error) {
	if tenantID == "" {
		return nil, ErrMissingTenantScope
	}
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}
	if !resource.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResource, resource)
	}

	now := time.Now()
	permission := &Permission{
		ID:          id.NewUUIDv7(),
		TenantID:    tenantID,
		Action:      action,
		Resource:    resource,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.permissions.Create(ctx, permission); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePermissionCreated,
		TenantID: tenantID,
		Resource: string(resource),
		Metadata: map[string]any{
			audit.AttrPermissionID: permission.ID,
			"action":               string(action),
		},
	})

	return permission, nil
}

// DeactivatePermission sets isActive=false. The row is never deleted so
// existing role links stay resolvable for audit and history.
func (s *Service) DeactivatePermission(ctx context.Context, permissionID string) error {
	permission, err := s.permissions.GetByID(ctx, permissionID)
	if err != nil {
		return err
	}

	if !permission.IsActive {
		return nil
	}

	permission.IsActive = false
	permission.UpdatedAt = time.Now()
	if err := s.permissions.Update(ctx, permission); err != nil {
		return fmt.Errorf("failed to deactivate permission: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePermissionDeactivated,
		TenantID: permission.TenantID,
		Resource: string(permission.Resource),
		Metadata: map[string]any{audit.AttrPermissionID: permissionID},
	})

	return nil
}

// ListPermissions lists a tenant's permission catalog. A missing tenant
// scope is a caller bug and fails fast instead of listing all tenants.
func (s *Service) ListPermissions(ctx context.Context, tenantID string) ([]*Permission, error) {
	if tenantID == "" {
		return nil, ErrMissingTenantScope
	}
	return s.permissions.ListByTenant(ctx, tenantID)
}

// CreateRole registers a new role. Name uniqueness is per tenant, so two
// tenants may each have an "owner" role.
func (s *Service) CreateRole(ctx context.Context, tenantID, name, displayName string, isSystem bool) (*Role, error) {
	if tenantID == "" {
		return nil, ErrMissingTenantScope
	}
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}

	now := time.Now()
	role := &Role{
		ID:          id.NewUUIDv7(),
		TenantID:    tenantID,
		Name:        name,
		DisplayName: displayName,
		IsActive:    true,
		IsSystem:    isSystem,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleCreated,
		TenantID: tenantID,
		Resource: name,
		Metadata: map[string]any{audit.AttrRoleID: role.ID},
	})

	return role, nil
}

// DeactivateRole sets isActive=false. The role immediately stops
// contributing to authorization decisions; its grants and links remain.
func (s *Service) DeactivateRole(ctx context.Context, roleID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return err
	}

	if !role.IsActive {
		return nil
	}

	role.IsActive = false
	role.UpdatedAt = time.Now()
	if err := s.roles.Update(ctx, role); err != nil {
		return fmt.Errorf("failed to deactivate role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleDeactivated,
		TenantID: role.TenantID,
		Resource: role.Name,
		Metadata: map[string]any{audit.AttrRoleID: roleID},
	})

	return nil
}

// DeleteRole removes a custom role together with its permission links
// and user grants. System roles are protected.
func (s *Service) DeleteRole(ctx context.Context, roleID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return ErrSystemRoleProtected
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleDeleted,
		TenantID: role.TenantID,
		Resource: role.Name,
		Metadata: map[string]any{audit.AttrRoleID: roleID},
	})

	return nil
}

// ListRoles lists a tenant's roles.
func (s *Service) ListRoles(ctx context.Context, tenantID string) ([]*Role, error) {
	if tenantID == "" {
		return nil, ErrMissingTenantScope
	}
	return s.roles.ListByTenant(ctx, tenantID)
}

// GrantPermissionToRole links a permission to a role. Both must belong
// to the same tenant; granting an already-granted pair is a no-op.
func (s *Service) GrantPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	permission, err := s.permissions.GetByID(ctx, permissionID)
	if err != nil {
		return err
	}

	if role.TenantID != permission.TenantID {
		return ErrTenantMismatch
	}

	link := &RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
		CreatedAt:    time.Now(),
	}
	if err := s.links.Link(ctx, link); err != nil {
		return fmt.Errorf("failed to grant permission to role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePermissionGranted,
		TenantID: role.TenantID,
		Resource: role.Name,
		Metadata: map[string]any{
			audit.AttrRoleID:       roleID,
			audit.AttrPermissionID: permissionID,
		},
	})

	return nil
}

// RevokePermissionFromRole removes the link if present. An absent link
// is not an error.
func (s *Service) RevokePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	if err := s.links.Unlink(ctx, roleID, permissionID); err != nil {
		return fmt.Errorf("failed to revoke permission from role: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type: audit.TypePermissionRevoked,
		Metadata: map[string]any{
			audit.AttrRoleID:       roleID,
			audit.AttrPermissionID: permissionID,
		},
	})

	return nil
}

// AssignRole grants a role to a user, optionally time-limited. The user
// must belong to the role's tenant; platform-level users (no tenant
// binding) may hold roles in any tenant.
func (s *Service) AssignRole(ctx context.Context, userID, roleID, assignedBy string, expiresAt *time.Time) (*UserRole, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}

	userTenant, err := s.users.TenantOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user tenant: %w", err)
	}
	if userTenant != nil && *userTenant != role.TenantID {
		return nil, ErrTenantMismatch
	}

	now := time.Now()

	// Re-assigning a currently active identical grant is a no-op;
	// expired rows for the same pair stay behind for audit.
	existing, err := s.grants.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	for _, g := range existing {
		if g.RoleID == roleID && g.ActiveAt(now) {
			return g, nil
		}
	}

	grant := &UserRole{
		ID:         id.NewUUIDv7(),
		UserID:     userID,
		RoleID:     roleID,
		AssignedAt: now,
		AssignedBy: assignedBy,
		ExpiresAt:  expiresAt,
	}
	if err := s.grants.Assign(ctx, grant); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	meta := map[string]any{
		audit.AttrUserID: userID,
		audit.AttrRoleID: roleID,
	}
	if expiresAt != nil {
		meta[audit.AttrExpiresAt] = expiresAt.Format(time.RFC3339)
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleAssigned,
		TenantID: role.TenantID,
		ActorID:  assignedBy,
		Resource: role.Name,
		Metadata: meta,
	})

	return grant, nil
}

// AssignRoleByName resolves a role by name within a tenant and assigns it.
func (s *Service) AssignRoleByName(ctx context.Context, userID, tenantID, name, assignedBy string, expiresAt *time.Time) error {
	role, err := s.roles.GetByName(ctx, tenantID, name)
	if err != nil {
		return err
	}
	_, err = s.AssignRole(ctx, userID, role.ID, assignedBy, expiresAt)
	return err
}

// RevokeRole removes a user's grant rows for the role.
func (s *Service) RevokeRole(ctx context.Context, userID, roleID string) error {
	if err := s.grants.Revoke(ctx, userID, roleID); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type: audit.TypeRoleRevoked,
		Metadata: map[string]any{
			audit.AttrUserID: userID,
			audit.AttrRoleID: roleID,
		},
	})

	return nil
}

// PurgeExpiredGrants removes grant rows whose expiry predates the cutoff.
// Expiry is enforced at resolution time; this only reclaims audit rows
// past their retention.
func (s *Service) PurgeExpiredGrants(ctx context.Context, cutoff time.Time) (int64, error) {
	purged, err := s.grants.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired grants: %w", err)
	}

	if purged > 0 {
		s.auditLogger.Log(ctx, audit.Event{
			Type:    audit.TypeExpiredGrantsPurged,
			ActorID: audit.ActorSystemCleanup,
			Metadata: map[string]any{
				"purged": purged,
				"cutoff": cutoff.Format(time.RFC3339),
			},
		})
	}

	return purged, nil
}
