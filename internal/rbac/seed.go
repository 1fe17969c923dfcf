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
	"errors"
	"fmt"
)

// actions enumerates every action seeded into a tenant's catalog.
var actions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}

// SeedTenant provisions a freshly created tenant: the full
// action x resource permission catalog, the system roles (owner,
// admin, member) and their default permission links. Re-seeding an
// already provisioned tenant is safe; existing rows are kept.
func (s *Service) SeedTenant(ctx context.Context, tenantID, seededBy string) error {
	if tenantID == "" {
		return ErrMissingTenantScope
	}

	for _, resource := range Resources {
		for _, action := range actions {
			_, err := s.CreatePermission(ctx, tenantID, action, resource, "")
			if err != nil && !errors.Is(err, ErrDuplicatePermission) {
				return fmt.Errorf("failed to seed permission %s/%s: %w", action, resource, err)
			}
		}
	}

	// Index the catalog by capability for linking below.
	catalog, err := s.permissions.ListByTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to list seeded permissions: %w", err)
	}
	byCapability := make(map[Capability]*Permission, len(catalog))
	for _, p := range catalog {
		byCapability[Capability{Action: p.Action, Resource: p.Resource}] = p
	}

	for _, name := range []string{RoleOwner, RoleAdmin, RoleMember} {
		role, err := s.CreateRole(ctx, tenantID, name, SystemRoleDisplayNames[name], true)
		if errors.Is(err, ErrDuplicateRoleName) {
			role, err = s.roles.GetByName(ctx, tenantID, name)
		}
		if err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}

		for _, capability := range SystemRoleCapabilities[name] {
			permission, ok := byCapability[capability]
			if !ok {
				return fmt.Errorf("seed catalog missing %s/%s", capability.Action, capability.Resource)
			}
			if err := s.GrantPermissionToRole(ctx, role.ID, permission.ID); err != nil {
				return fmt.Errorf("failed to link %s to role %s: %w", permission.ID, name, err)
			}
		}
	}

	return nil
}
