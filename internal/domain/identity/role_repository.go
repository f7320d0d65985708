package identity

import (
	"context"

	"github.com/google/uuid"
)

// RoleFilter narrows role list queries.
type RoleFilter struct {
	// Keyword matches against role code and name.
	Keyword      string
	IsEnabled    *bool
	IsSystemRole *bool

	Page  int
	Limit int
}

// RoleRepository is the persistence contract for roles and their
// attached permissions and data scopes. Permissions and scopes live
// in side tables, so they are saved and loaded explicitly rather
// than with the role row itself.
type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Role, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Role, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter *RoleFilter) ([]*Role, error)
	Count(ctx context.Context, tenantID uuid.UUID, filter *RoleFilter) (int64, error)

	// FindSystemRoles returns the built-in roles seeded for a tenant.
	FindSystemRoles(ctx context.Context, tenantID uuid.UUID) ([]*Role, error)

	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)

	// SavePermissions replaces the role's permission rows with the
	// ones on the aggregate; LoadPermissions does the reverse.
	SavePermissions(ctx context.Context, role *Role) error
	LoadPermissions(ctx context.Context, role *Role) error

	// SaveDataScopes and LoadDataScopes do the same for the role's
	// data scope rows.
	SaveDataScopes(ctx context.Context, role *Role) error
	LoadDataScopes(ctx context.Context, role *Role) error

	// LoadPermissionsAndDataScopes hydrates both side tables in one
	// call, for callers that need the fully loaded role.
	LoadPermissionsAndDataScopes(ctx context.Context, role *Role) error

	// FindUsersWithRole and CountUsersWithRole inspect the user-role
	// join table, e.g. to block deleting a role still in use.
	FindUsersWithRole(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error)
	CountUsersWithRole(ctx context.Context, roleID uuid.UUID) (int64, error)

	// FindRolesWithPermission returns the roles granting a permission
	// code within a tenant.
	FindRolesWithPermission(ctx context.Context, tenantID uuid.UUID, permissionCode string) ([]*Role, error)

	// GetAllPermissionCodes returns the distinct permission codes in
	// use across a tenant's roles.
	GetAllPermissionCodes(ctx context.Context, tenantID uuid.UUID) ([]string, error)
}
