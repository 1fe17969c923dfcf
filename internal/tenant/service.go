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

package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canchahub/canchahub/internal/audit"
	"github.com/canchahub/canchahub/internal/id"
	"github.com/canchahub/canchahub/internal/rbac"
)

// AccessProvisioner seeds a new tenant's roles and permission catalog
// and hands the creator their initial role. Satisfied by *rbac.Service.
type AccessProvisioner interface {
	SeedTenant(ctx context.Context, tenantID, seededBy string) error
	AssignRoleByName(ctx context.Context, userID, tenantID, name, assignedBy string, expiresAt *time.Time) error
}

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	access      AccessProvisioner
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, access AccessProvisioner, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		access:      access,
		auditLogger: auditLogger,
	}
}

// CreateTenant creates a tenant, seeds its system roles and permission
// catalog, and assigns the owner role to the creator when one is given.
func (s *Service) CreateTenant(ctx context.Context, name string, branding Branding, creatorID string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}

	if existing, err := s.repo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, ErrTenantAlreadyExists
	} else if err != nil && !errors.Is(err, ErrTenantNotFound) {
		return nil, fmt.Errorf("failed to check tenant name: %w", err)
	}

	now := time.Now()
	tenant := &Tenant{
		ID:        id.NewUUIDv7(),
		Name:      name,
		Branding:  branding,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	if err := s.access.SeedTenant(ctx, tenant.ID, creatorID); err != nil {
		return nil, fmt.Errorf("failed to seed tenant access: %w", err)
	}

	if creatorID != "" {
		if err := s.access.AssignRoleByName(ctx, creatorID, tenant.ID, rbac.RoleOwner, creatorID, nil); err != nil {
			return nil, fmt.Errorf("failed to assign owner role: %w", err)
		}
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: tenant.ID,
		ActorID:  creatorID,
		Resource: name,
	})

	return tenant, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// GetTenantByName retrieves a tenant by name
func (s *Service) GetTenantByName(ctx context.Context, name string) (*Tenant, error) {
	return s.repo.GetByName(ctx, name)
}

// ListTenants lists tenants with pagination
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}

// UpdateBranding replaces a tenant's display and contact metadata.
func (s *Service) UpdateBranding(ctx context.Context, tenantID string, branding Branding) (*Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	tenant.Branding = branding
	tenant.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	return tenant, nil
}

// DeactivateTenant soft-disables a tenant. Dependent users, roles and
// permissions are kept; tenants are never hard-deleted while they exist.
func (s *Service) DeactivateTenant(ctx context.Context, tenantID, actorID string) error {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}

	if !tenant.IsActive {
		return nil
	}

	tenant.IsActive = false
	tenant.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, tenant); err != nil {
		return fmt.Errorf("failed to deactivate tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeactivated,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: tenant.Name,
	})

	return nil
}
