package rbac

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrDuplicatePermission = errors.New("permission already exists for action and resource")
	ErrDuplicateRoleName   = errors.New("role name already exists in tenant")
	ErrTenantMismatch      = errors.New("tenant boundaries do not match")
	ErrSystemRoleProtected = errors.New("system roles cannot be deleted")
	ErrMissingTenantScope  = errors.New("tenant scope is required")
	ErrInvalidAction       = errors.New("invalid action")
	ErrInvalidResource     = errors.New("invalid resource")
	ErrGrantNotFound       = errors.New("role grant not found")
)

// Action is the operation a permission allows on a resource
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionRead   Action = "READ"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"

	// ActionManage implies CREATE/READ/UPDATE/DELETE on the same
	// resource. It never crosses resource boundaries.
	ActionManage Action = "MANAGE"
)

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return true
	}
	return false
}

// Resource is a protected area of the administration surface
type Resource string

const (
	ResourceUser       Resource = "USER"
	ResourceRole       Resource = "ROLE"
	ResourcePermission Resource = "PERMISSION"
	ResourceDashboard  Resource = "DASHBOARD"
	ResourceAdmin      Resource = "ADMIN"
)

// Valid reports whether r is a known resource
func (r Resource) Valid() bool {
	switch r {
	case ResourceUser, ResourceRole, ResourcePermission, ResourceDashboard, ResourceAdmin:
		return true
	}
	return false
}

// Resources lists every known resource
var Resources = []Resource{
	ResourceUser,
	ResourceRole,
	ResourcePermission,
	ResourceDashboard,
	ResourceAdmin,
}

// Permission is a single (action, resource) capability owned by a tenant.
// The triple (action, resource, tenant) is unique.
type Permission struct {
	ID          string
	TenantID    string
	Action      Action
	Resource    Resource
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Role is a named bundle of permissions within a tenant.
// System roles are seeded at tenant provisioning and cannot be deleted.
type Role struct {
	ID          string
	TenantID    string
	Name        string
	DisplayName string
	IsActive    bool
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RolePermission links a role to a permission. One row per pair.
type RolePermission struct {
	RoleID       string
	PermissionID string
	CreatedAt    time.Time
}

// UserRole grants a role to a user. Multiple rows per (user, role) pair
// may exist over time; expired rows are retained for audit.
type UserRole struct {
	ID         string
	UserID     string
	RoleID     string
	AssignedAt time.Time
	AssignedBy string // empty when the granting actor is unknown
	ExpiresAt  *time.Time
}

// ActiveAt reports whether the grant is in force at the given instant.
func (g *UserRole) ActiveAt(now time.Time) bool {
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// Capability is an (action, resource) pair
type Capability struct {
	Action   Action
	Resource Resource
}

// PermissionSet is the effective set of capabilities a user holds in a tenant
type PermissionSet map[Capability]struct{}

// Add inserts a capability into the set
func (s PermissionSet) Add(action Action, resource Resource) {
	s[Capability{Action: action, Resource: resource}] = struct{}{}
}

// Contains reports whether the exact capability is in the set
func (s PermissionSet) Contains(action Action, resource Resource) bool {
	_, ok := s[Capability{Action: action, Resource: resource}]
	return ok
}

// Allows reports whether the set covers the requested capability,
// either exactly or via MANAGE on the same resource.
func (s PermissionSet) Allows(action Action, resource Resource) bool {
	if s.Contains(action, resource) {
		return true
	}
	return s.Contains(ActionManage, resource)
}

// PermissionRepository defines the interface for permission persistence
type PermissionRepository interface {
	// Create inserts a new permission. Returns ErrDuplicatePermission
	// when (action, resource, tenant) already exists.
	Create(ctx context.Context, permission *Permission) error

	// GetByID retrieves a permission by ID
	GetByID(ctx context.Context, id string) (*Permission, error)

	// ListByTenant retrieves all permissions owned by a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]*Permission, error)

	// Update updates permission information
	Update(ctx context.Context, permission *Permission) error
}

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	// Create inserts a new role. Returns ErrDuplicateRoleName when
	// the name is taken within the tenant.
	Create(ctx context.Context, role *Role) error

	// GetByID retrieves a role by ID
	GetByID(ctx context.Context, id string) (*Role, error)

	// GetByName retrieves a role by name within a tenant
	GetByName(ctx context.Context, tenantID, name string) (*Role, error)

	// Update updates role information
	Update(ctx context.Context, role *Role) error

	// Delete removes a role and, in the same transaction, its
	// role_permissions links and user_roles grants.
	Delete(ctx context.Context, id string) error

	// ListByTenant retrieves all roles owned by a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]*Role, error)
}

// RolePermissionRepository defines the interface for role-permission links
type RolePermissionRepository interface {
	// Link inserts the pair. Inserting an existing pair is a no-op.
	Link(ctx context.Context, link *RolePermission) error

	// Unlink removes the pair. Removing an absent pair is a no-op.
	Unlink(ctx context.Context, roleID, permissionID string) error

	// ListForRole retrieves all links for a role
	ListForRole(ctx context.Context, roleID string) ([]*RolePermission, error)
}

// UserRoleRepository defines the interface for user-role grants
type UserRoleRepository interface {
	// Assign inserts a new grant row
	Assign(ctx context.Context, grant *UserRole) error

	// Revoke removes all grant rows for the (user, role) pair.
	// Returns ErrGrantNotFound when no row exists.
	Revoke(ctx context.Context, userID, roleID string) error

	// ListForUser retrieves all grant rows for a user, expired included
	ListForUser(ctx context.Context, userID string) ([]*UserRole, error)

	// DeleteExpiredBefore removes grant rows whose expiry predates the
	// cutoff and returns the number of rows removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserDirectory resolves a user's tenant binding. A nil tenant ID means
// the user is platform-level and not bound to any tenant.
type UserDirectory interface {
	TenantOf(ctx context.Context, userID string) (*string, error)
}
