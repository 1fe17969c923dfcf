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

// -----------------------------------------------------------------------------
// System Role Names
// These are the canonical names of the roles seeded for every tenant.
// They are protected from deletion (is_system = true).
// -----------------------------------------------------------------------------

const (
	// RoleOwner has full control of the tenant.
	RoleOwner = "owner"

	// RoleAdmin manages users, roles and the dashboard but not the
	// permission catalog.
	RoleAdmin = "admin"

	// RoleMember has read-only access to the dashboard.
	RoleMember = "member"
)

// SystemRoleDisplayNames maps the seeded role names to their display names.
var SystemRoleDisplayNames = map[string]string{
	RoleOwner:  "Owner",
	RoleAdmin:  "Administrator",
	RoleMember: "Member",
}

// -----------------------------------------------------------------------------
// Default Capability Sets
// These define the permissions linked to each seeded role.
// Used for tenant provisioning and validation.
// -----------------------------------------------------------------------------

// OwnerCapabilities defines capabilities for the owner role:
// MANAGE on every resource.
var OwnerCapabilities = []Capability{
	{Action: ActionManage, Resource: ResourceUser},
	{Action: ActionManage, Resource: ResourceRole},
	{Action: ActionManage, Resource: ResourcePermission},
	{Action: ActionManage, Resource: ResourceDashboard},
	{Action: ActionManage, Resource: ResourceAdmin},
}

// AdminCapabilities defines capabilities for the admin role.
var AdminCapabilities = []Capability{
	{Action: ActionManage, Resource: ResourceUser},
	{Action: ActionManage, Resource: ResourceRole},
	{Action: ActionRead, Resource: ResourcePermission},
	{Action: ActionManage, Resource: ResourceDashboard},
	{Action: ActionRead, Resource: ResourceAdmin},
}

// MemberCapabilities defines capabilities for the member role.
var MemberCapabilities = []Capability{
	{Action: ActionRead, Resource: ResourceDashboard},
}

// SystemRoleCapabilities maps each seeded role name to its default set.
var SystemRoleCapabilities = map[string][]Capability{
	RoleOwner:  OwnerCapabilities,
	RoleAdmin:  AdminCapabilities,
	RoleMember: MemberCapabilities,
}
