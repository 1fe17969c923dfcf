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
	"log/slog"
	"time"

	"github.com/canchahub/canchahub/internal/observability/logger"
)

// ResolveEffectivePermissions computes the set of (action, resource)
// capabilities a user holds within a tenant at the given instant.
//
// The set is recomputed on every call and never cached: grant expiry and
// role/permission deactivation must take effect in real time. The chain is
// user -> user_roles (active at now) -> roles (active, same tenant) ->
// role_permissions -> permissions (active, same tenant).
func (s *Service) ResolveEffectivePermissions(ctx context.Context, userID, tenantID string, now time.Time) (PermissionSet, error) {
	if tenantID == "" {
		return nil, ErrMissingTenantScope
	}

	set := make(PermissionSet)

	userTenant, err := s.users.TenantOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A tenant-bound user never resolves permissions in a foreign
	// tenant. Platform-level users (nil tenant) fall through: their
	// explicit grants are filtered per role below.
	if userTenant != nil && *userTenant != tenantID {
		return set, nil
	}

	grants, err := s.grants.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, grant := range grants {
		if !grant.ActiveAt(now) {
			continue
		}

		role, err := s.roles.GetByID(ctx, grant.RoleID)
		if err != nil {
			if errors.Is(err, ErrRoleNotFound) {
				// Dangling grant; contributes nothing.
				continue
			}
			return nil, err
		}
		if !role.IsActive || role.TenantID != tenantID {
			continue
		}

		links, err := s.links.ListForRole(ctx, role.ID)
		if err != nil {
			return nil, err
		}

		for _, link := range links {
			permission, err := s.permissions.GetByID(ctx, link.PermissionID)
			if err != nil {
				if errors.Is(err, ErrPermissionNotFound) {
					continue
				}
				return nil, err
			}
			if !permission.IsActive || permission.TenantID != tenantID {
				continue
			}
			set.Add(permission.Action, permission.Resource)
		}
	}

	return set, nil
}

// Authorize decides whether the user may perform action on resource
// within the tenant at the given instant. A false result is the normal
// "no access" outcome, not an error; the caller learns nothing about
// which roles were consulted.
func (s *Service) Authorize(ctx context.Context, userID, tenantID string, action Action, resource Resource, now time.Time) (bool, error) {
	if !action.Valid() {
		return false, ErrInvalidAction
	}
	if !resource.Valid() {
		return false, ErrInvalidResource
	}

	set, err := s.ResolveEffectivePermissions(ctx, userID, tenantID, now)
	if err != nil {
		return false, err
	}

	granted := set.Allows(action, resource)

	slog.DebugContext(ctx, "authorization decision",
		logger.Component("rbac"),
		logger.UserID(userID),
		logger.TenantID(tenantID),
		logger.Action(string(action)),
		logger.Resource(string(resource)),
		logger.Granted(granted),
	)

	return granted, nil
}
