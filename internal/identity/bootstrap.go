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

package identity

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/canchahub/canchahub/internal/audit"
	"github.com/canchahub/canchahub/internal/rbac"
	"github.com/canchahub/canchahub/internal/tenant"
)

const (
	EnvBootstrapTenantName    = "CH_BOOTSTRAP_TENANT_NAME"
	EnvBootstrapAdminEmail    = "CH_BOOTSTRAP_ADMIN_EMAIL"
	EnvBootstrapAdminPassword = "CH_BOOTSTRAP_ADMIN_PASSWORD"
)

// BootstrapService provisions the first tenant and its owner account
type BootstrapService struct {
	identityService *Service
	tenantService   *tenant.Service
	rbacService     *rbac.Service
	auditLogger     audit.Logger
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(
	identityService *Service,
	tenantService *tenant.Service,
	rbacService *rbac.Service,
	auditLogger audit.Logger,
) *BootstrapService {
	return &BootstrapService{
		identityService: identityService,
		tenantService:   tenantService,
		rbacService:     rbacService,
		auditLogger:     auditLogger,
	}
}

// Bootstrap checks for bootstrap configuration and executes it if necessary.
// With no configuration present, or when the tenant already exists, it is a
// silent no-op returning a nil user, so it is safe to run on every start.
// On a first run it returns the created owner account.
func (s *BootstrapService) Bootstrap(ctx context.Context) (*User, error) {
	tenantName := os.Getenv(EnvBootstrapTenantName)
	email := os.Getenv(EnvBootstrapAdminEmail)
	password := os.Getenv(EnvBootstrapAdminPassword)

	if tenantName == "" || email == "" {
		return nil, nil
	}
	if password == "" {
		return nil, fmt.Errorf("%s is required when bootstrap is configured", EnvBootstrapAdminPassword)
	}

	// Already bootstrapped, skip silently.
	if _, err := s.tenantService.GetTenantByName(ctx, tenantName); err == nil {
		return nil, nil
	} else if !errors.Is(err, tenant.ErrTenantNotFound) {
		return nil, fmt.Errorf("failed to check bootstrap tenant: %w", err)
	}

	t, err := s.tenantService.CreateTenant(ctx, tenantName, tenant.Branding{}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap tenant: %w", err)
	}

	owner, err := s.identityService.CreateUser(ctx, &t.ID, email, password, Preferences{})
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	if err := s.rbacService.AssignRoleByName(ctx, owner.ID, t.ID, rbac.RoleOwner, audit.ActorSystemBootstrap, nil); err != nil {
		return nil, fmt.Errorf("failed to assign owner role during bootstrap: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAdminBootstrap,
		TenantID: t.ID,
		ActorID:  audit.ActorSystemBootstrap,
		Resource: rbac.RoleOwner,
		Metadata: map[string]any{
			audit.AttrEmail:  email,
			audit.AttrUserID: owner.ID,
		},
	})

	return owner, nil
}
