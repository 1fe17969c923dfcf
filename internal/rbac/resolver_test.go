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

package rbac_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/canchahub/canchahub/internal/audit"
	"github.com/canchahub/canchahub/internal/rbac"
)

// grantCapability wires permission -> role -> user in one step.
func grantCapability(t *testing.T, f *fixture, tenantID, roleName, userID string, action rbac.Action, resource rbac.Resource, expiresAt *time.Time) (*rbac.Role, *rbac.Permission) {
	t.Helper()
	ctx := context.Background()

	role, err := f.roles.GetByName(ctx, tenantID, roleName)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		role, err = f.service.CreateRole(ctx, tenantID, roleName, roleName, false)
	}
	if err != nil {
		t.Fatalf("role setup failed: %v", err)
	}

	permission, err := f.service.CreatePermission(ctx, tenantID, action, resource, "")
	if errors.Is(err, rbac.ErrDuplicatePermission) {
		catalog, _ := f.service.ListPermissions(ctx, tenantID)
		for _, p := range catalog {
			if p.Action == action && p.Resource == resource {
				permission = p
			}
		}
	} else if err != nil {
		t.Fatalf("permission setup failed: %v", err)
	}

	if err := f.service.GrantPermissionToRole(ctx, role.ID, permission.ID); err != nil {
		t.Fatalf("link setup failed: %v", err)
	}
	if _, err := f.service.AssignRole(ctx, userID, role.ID, "admin-setup", expiresAt); err != nil {
		t.Fatalf("assignment setup failed: %v", err)
	}
	return role, permission
}

// TestPurpose: Validates that a user with no role grants is denied everything, indistinguishably from any other denial.
// Scope: Unit Test
// Security: Fail-closed authorization
// Expected: Authorize returns false with no error for every capability.
// Test Case ID: RES-01
func TestResolver_NoGrants_Denied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	for _, resource := range rbac.Resources {
		granted, err := f.service.Authorize(ctx, "user-nobody", "tenant-A", rbac.ActionRead, resource, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if granted {
			t.Errorf("user with no grants should be denied READ %s", resource)
		}
	}
}

// TestPurpose: Validates that MANAGE implies CREATE/READ/UPDATE/DELETE on the same resource and never on a different one.
// Scope: Unit Test
// Security: Scope of the MANAGE abbreviation
// Expected: MANAGE DASHBOARD grants every action on DASHBOARD and nothing on USER.
// Test Case ID: RES-02
func TestResolver_ManageImpliesSameResourceOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	grantCapability(t, f, "tenant-A", "dashboard-manager", "user-1", rbac.ActionManage, rbac.ResourceDashboard, nil)

	for _, action := range []rbac.Action{rbac.ActionCreate, rbac.ActionRead, rbac.ActionUpdate, rbac.ActionDelete, rbac.ActionManage} {
		granted, err := f.service.Authorize(ctx, "user-1", "tenant-A", action, rbac.ResourceDashboard, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !granted {
			t.Errorf("MANAGE DASHBOARD should imply %s DASHBOARD", action)
		}
	}

	granted, err := f.service.Authorize(ctx, "user-1", "tenant-A", rbac.ActionRead, rbac.ResourceUser, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if granted {
		t.Error("MANAGE DASHBOARD must not imply READ USER")
	}
}

// TestPurpose: Validates real-time grant expiry without any background job.
// Scope: Unit Test
// Security: Time-boxed access is enforced at decision time
// Expected: Granted just before expiry, denied just after; a grant without expiry never lapses.
// Test Case ID: RES-03
func TestResolver_GrantExpiry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	expiresAt := now.Add(time.Hour)
	grantCapability(t, f, "tenant-A", "temp-reader", "user-temp", rbac.ActionRead, rbac.ResourceDashboard, &expiresAt)
	grantCapability(t, f, "tenant-A", "perm-reader", "user-perm", rbac.ActionRead, rbac.ResourceUser, nil)

	granted, _ := f.service.Authorize(ctx, "user-temp", "tenant-A", rbac.ActionRead, rbac.ResourceDashboard, expiresAt.Add(-time.Second))
	if !granted {
		t.Error("grant should be active one second before expiry")
	}

	granted, _ = f.service.Authorize(ctx, "user-temp", "tenant-A", rbac.ActionRead, rbac.ResourceDashboard, expiresAt.Add(time.Second))
	if granted {
		t.Error("grant should be inactive one second after expiry")
	}

	granted, _ = f.service.Authorize(ctx, "user-perm", "tenant-A", rbac.ActionRead, rbac.ResourceUser, now.Add(10*365*24*time.Hour))
	if !granted {
		t.Error("grant without expiry should never lapse")
	}
}

// TestPurpose: Validates that deactivating a role or a permission immediately removes its contribution to decisions.
// Scope: Unit Test
// Security: isActive is a hard override with no caching window
// Expected: Access flips to denied right after deactivation.
// Test Case ID: RES-04
func TestResolver_DeactivationOverrides(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	role, permission := grantCapability(t, f, "tenant-A", "coordinator", "user-1", rbac.ActionRead, rbac.ResourceDashboard, nil)

	granted, _ := f.service.Authorize(ctx, "user-1", "tenant-A", rbac.ActionRead, rbac.ResourceDashboard, now)
	if !granted {
		t.Fatal("expected access before deactivation")
	}

	if err := f.service.DeactivateRole(ctx, role.ID); err != nil {
		t.Fatalf("deactivate role failed: %v", err)
	}
	granted, _ = f.service.Authorize(ctx, "user-1", "tenant-A", rbac.ActionRead, rbac.ResourceDashboard, now)
	if granted {
		t.Error("inactive role must not contribute to decisions")
	}

	// Reactivate the role, then kill the permission instead.
	role.IsActive = true
	if err := f.roles.Update(ctx, role); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if err := f.service.DeactivatePermission(ctx, permission.ID); err != nil {
		t.Fatalf("deactivate permission failed: %v", err)
	}
	granted, _ = f.service.Authorize(ctx, "user-1", "tenant-A", rbac.ActionRead, rbac.ResourceDashboard, now)
	if granted {
		t.Error("inactive permission must not contribute to decisions")
	}
}

// TestPurpose: Validates that revoking a role removes exactly its capabilities from the effective set.
// Scope: Unit Test
// Expected: The capability disappears after revocation; capabilities from other roles survive.
// Test Case ID: RES-05
func TestResolver_RevokeRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	revoked, _ := grantCapability(t, f, "tenant-A", "dashboard-reader", "user-1", rbac.ActionRead, rbac.ResourceDashboard, nil)
	grantCapability(t, f, "tenant-A", "user-reader", "user-1", rbac.ActionRead, rbac.ResourceUser, nil)

	if err := f.service.RevokeRole(ctx, "user-1", revoked.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	set, err := f.service.ResolveEffectivePermissions(ctx, "user-1", "tenant-A", now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if set.Contains(rbac.ActionRead, rbac.ResourceDashboard) {
		t.Error("revoked role's capability should be gone")
	}
	if !set.Contains(rbac.ActionRead, rbac.ResourceUser) {
		t.Error("remaining role's capability should survive")
	}
}

// TestPurpose: Validates that a tenant-bound user resolves an empty set in a foreign tenant and that a missing tenant scope is rejected.
// Scope: Unit Test
// Security: Multi-tenancy Data Isolation (prevents lateral movement)
// Expected: Empty set for the foreign tenant without error; ErrMissingTenantScope for an empty tenant ID.
// Test Case ID: RES-06
func TestResolver_CrossTenantIsolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	f.users.Bind("user-1", "tenant-A")
	grantCapability(t, f, "tenant-A", "coordinator", "user-1", rbac.ActionManage, rbac.ResourceUser, nil)

	granted, err := f.service.Authorize(ctx, "user-1", "tenant-A", rbac.ActionDelete, rbac.ResourceUser, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !granted {
		t.Error("user should have access in their own tenant")
	}

	set, err := f.service.ResolveEffectivePermissions(ctx, "user-1", "tenant-B", now)
	if err != nil {
		t.Fatalf("foreign-tenant resolution must not error: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("expected empty set in a foreign tenant, got %d capabilities", len(set))
	}

	if _, err := f.service.ResolveEffectivePermissions(ctx, "user-1", "", now); !errors.Is(err, rbac.ErrMissingTenantScope) {
		t.Errorf("expected ErrMissingTenantScope, got %v", err)
	}
}

// TestPurpose: Validates that a platform-level user (no tenant binding) resolves a role held in a tenant only within that tenant.
// Scope: Unit Test
// Security: Support staff access stays scoped per tenant
// Expected: Capability present in the granting tenant, absent elsewhere.
// Test Case ID: RES-07
func TestResolver_PlatformUserTenantRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	// user-support has no tenant binding
	grantCapability(t, f, "tenant-A", "support", "user-support", rbac.ActionRead, rbac.ResourceDashboard, nil)

	granted, _ := f.service.Authorize(ctx, "user-support", "tenant-A", rbac.ActionRead, rbac.ResourceDashboard, now)
	if !granted {
		t.Error("platform user should resolve their tenant role in that tenant")
	}

	granted, _ = f.service.Authorize(ctx, "user-support", "tenant-B", rbac.ActionRead, rbac.ResourceDashboard, now)
	if granted {
		t.Error("the role must not leak into other tenants")
	}
}

// TestPurpose: Validates the seeded system roles end to end through the resolver.
// Scope: Unit Test
// Security: Baseline access of owner and member roles
// Expected: Owner may DELETE USER via MANAGE; member may READ DASHBOARD and nothing else.
// Test Case ID: RES-08
func TestResolver_SeededRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	if err := f.service.SeedTenant(ctx, "tenant-acme", audit.ActorSystemBootstrap); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := f.service.AssignRoleByName(ctx, "user-owner", "tenant-acme", rbac.RoleOwner, audit.ActorSystemBootstrap, nil); err != nil {
		t.Fatalf("owner assignment failed: %v", err)
	}
	if err := f.service.AssignRoleByName(ctx, "user-member", "tenant-acme", rbac.RoleMember, "user-owner", nil); err != nil {
		t.Fatalf("member assignment failed: %v", err)
	}

	granted, _ := f.service.Authorize(ctx, "user-owner", "tenant-acme", rbac.ActionDelete, rbac.ResourceUser, now)
	if !granted {
		t.Error("owner should be able to DELETE USER via MANAGE USER")
	}

	granted, _ = f.service.Authorize(ctx, "user-member", "tenant-acme", rbac.ActionRead, rbac.ResourceDashboard, now)
	if !granted {
		t.Error("member should be able to READ DASHBOARD")
	}
	granted, _ = f.service.Authorize(ctx, "user-member", "tenant-acme", rbac.ActionCreate, rbac.ResourceUser, now)
	if granted {
		t.Error("member must not be able to CREATE USER")
	}
}

// TestPurpose: Validates that grant rows for the same role are evaluated independently.
// Scope: Unit Test
// Expected: The role applies while any one of its grant rows is active, even with older expired rows present.
// Test Case ID: RES-10
func TestResolver_MultipleGrantRowsSameRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	role, _ := grantCapability(t, f, "tenant-A", "coordinator", "user-other", rbac.ActionRead, rbac.ResourceDashboard, nil)

	expired := now.Add(-time.Hour)
	f.grants.Assign(ctx, &rbac.UserRole{ID: "g-old", UserID: "user-1", RoleID: role.ID, ExpiresAt: &expired})
	f.grants.Assign(ctx, &rbac.UserRole{ID: "g-new", UserID: "user-1", RoleID: role.ID})

	granted, err := f.service.Authorize(ctx, "user-1", "tenant-A", rbac.ActionRead, rbac.ResourceDashboard, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !granted {
		t.Error("an active grant row should apply regardless of expired rows for the same role")
	}
}

// TestPurpose: Validates that linking and immediately unlinking a permission restores the prior effective set.
// Scope: Unit Test
// Expected: The effective permission set is identical before and after the grant/revoke pair.
// Test Case ID: RES-11
func TestResolver_GrantRevokePermissionRoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	role, _ := grantCapability(t, f, "tenant-A", "coordinator", "user-1", rbac.ActionRead, rbac.ResourceDashboard, nil)

	before, err := f.service.ResolveEffectivePermissions(ctx, "user-1", "tenant-A", now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	extra, err := f.service.CreatePermission(ctx, "tenant-A", rbac.ActionUpdate, rbac.ResourceUser, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.service.GrantPermissionToRole(ctx, role.ID, extra.ID); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := f.service.RevokePermissionFromRole(ctx, role.ID, extra.ID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	after, err := f.service.ResolveEffectivePermissions(ctx, "user-1", "tenant-A", now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("set size changed: before %d, after %d", len(before), len(after))
	}
	for capability := range before {
		if !after.Contains(capability.Action, capability.Resource) {
			t.Errorf("capability %s/%s lost in round trip", capability.Action, capability.Resource)
		}
	}
}

// TestPurpose: Validates rejection of malformed capabilities at the authorization entry point.
// Scope: Unit Test
// Expected: ErrInvalidAction / ErrInvalidResource before any resolution happens.
// Test Case ID: RES-09
func TestResolver_InvalidCapabilityRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	now := time.Now()

	if _, err := f.service.Authorize(ctx, "user-1", "tenant-A", rbac.Action("EXECUTE"), rbac.ResourceUser, now); !errors.Is(err, rbac.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := f.service.Authorize(ctx, "user-1", "tenant-A", rbac.ActionRead, rbac.Resource("BOOKING"), now); !errors.Is(err, rbac.ErrInvalidResource) {
		t.Errorf("expected ErrInvalidResource, got %v", err)
	}
}
