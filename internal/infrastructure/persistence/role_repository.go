package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/domain/shared"
)

// GormRoleRepository implements identity.RoleRepository on GORM. Role
// permissions and data scopes live in child tables and are replaced
// wholesale on save.
type GormRoleRepository struct {
	db *gorm.DB
}

func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)

// notFoundAsDomain maps gorm's sentinel onto the shared domain error.
func notFoundAsDomain(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

func (r *GormRoleRepository) Create(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *GormRoleRepository) Update(ctx context.Context, role *identity.Role) error {
	result := r.db.WithContext(ctx).Save(role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the role together with its permission and data scope rows.
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&identity.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&identity.RoleDataScope{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&identity.Role{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, notFoundAsDomain(err)
	}
	return &role, nil
}

// FindByCode resolves a role by its code, case-insensitively, within a tenant.
func (r *GormRoleRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*identity.Role, error) {
	var role identity.Role
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND UPPER(code) = ?", tenantID, strings.ToUpper(code)).
		First(&role).Error
	if err != nil {
		return nil, notFoundAsDomain(err)
	}
	return &role, nil
}

func (r *GormRoleRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter *identity.RoleFilter) ([]*identity.Role, error) {
	query := r.filtered(ctx, tenantID, filter).Order("sort_order ASC, name ASC")

	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.Limit)
		}
	}

	var roles []*identity.Role
	if err := query.Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRoleRepository) Count(ctx context.Context, tenantID uuid.UUID, filter *identity.RoleFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, tenantID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// filtered starts a tenant-scoped role query with the filter applied.
func (r *GormRoleRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter *identity.RoleFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&identity.Role{}).Where("tenant_id = ?", tenantID)
	if filter == nil {
		return query
	}

	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	if filter.IsEnabled != nil {
		query = query.Where("is_enabled = ?", *filter.IsEnabled)
	}
	if filter.IsSystemRole != nil {
		query = query.Where("is_system_role = ?", *filter.IsSystemRole)
	}
	return query
}

func (r *GormRoleRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&identity.Role{}).
		Where("tenant_id = ? AND UPPER(code) = ?", tenantID, strings.ToUpper(code)).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRoleRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&identity.Role{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Role, error) {
	if len(ids) == 0 {
		return []*identity.Role{}, nil
	}

	var roles []*identity.Role
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRoleRepository) FindSystemRoles(ctx context.Context, tenantID uuid.UUID) ([]*identity.Role, error) {
	var roles []*identity.Role
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_system_role = ?", tenantID, true).
		Order("sort_order ASC, name ASC").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// SavePermissions replaces the role's permission rows with the in-memory set.
func (r *GormRoleRepository) SavePermissions(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&identity.RolePermission{}).Error; err != nil {
			return err
		}
		if len(role.Permissions) == 0 {
			return nil
		}

		now := time.Now()
		rows := make([]identity.RolePermission, len(role.Permissions))
		for i := range role.Permissions {
			perm := &role.Permissions[i]
			rows[i] = identity.RolePermission{
				RoleID:      role.ID,
				TenantID:    role.TenantID,
				Code:        perm.Code,
				Resource:    perm.Resource,
				Action:      perm.Action,
				Description: perm.Description,
				CreatedAt:   now,
			}
		}
		return tx.Create(&rows).Error
	})
}

// LoadPermissions populates role.Permissions from the child table.
func (r *GormRoleRepository) LoadPermissions(ctx context.Context, role *identity.Role) error {
	var rows []identity.RolePermission
	if err := r.db.WithContext(ctx).Where("role_id = ?", role.ID).Find(&rows).Error; err != nil {
		return err
	}

	role.Permissions = make([]identity.Permission, len(rows))
	for i, row := range rows {
		role.Permissions[i] = identity.Permission{
			Code:        row.Code,
			Resource:    row.Resource,
			Action:      row.Action,
			Description: row.Description,
		}
	}
	return nil
}

// SaveDataScopes replaces the role's data scope rows with the in-memory
// set. Scope values serialize as a JSON string array.
func (r *GormRoleRepository) SaveDataScopes(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&identity.RoleDataScope{}).Error; err != nil {
			return err
		}
		if len(role.DataScopes) == 0 {
			return nil
		}

		now := time.Now()
		rows := make([]identity.RoleDataScope, len(role.DataScopes))
		for i := range role.DataScopes {
			scope := &role.DataScopes[i]
			values := ""
			if len(scope.ScopeValues) > 0 {
				encoded, _ := json.Marshal(scope.ScopeValues)
				values = string(encoded)
			}
			rows[i] = identity.RoleDataScope{
				RoleID:      role.ID,
				TenantID:    role.TenantID,
				Resource:    scope.Resource,
				ScopeType:   scope.ScopeType,
				ScopeValues: values,
				Description: scope.Description,
				CreatedAt:   now,
			}
		}
		return tx.Create(&rows).Error
	})
}

// LoadDataScopes populates role.DataScopes from the child table.
func (r *GormRoleRepository) LoadDataScopes(ctx context.Context, role *identity.Role) error {
	var rows []identity.RoleDataScope
	if err := r.db.WithContext(ctx).Where("role_id = ?", role.ID).Find(&rows).Error; err != nil {
		return err
	}

	role.DataScopes = make([]identity.DataScope, len(rows))
	for i, row := range rows {
		var values []string
		if row.ScopeValues != "" {
			_ = json.Unmarshal([]byte(row.ScopeValues), &values)
		}
		role.DataScopes[i] = identity.DataScope{
			Resource:    row.Resource,
			ScopeType:   row.ScopeType,
			ScopeValues: values,
			Description: row.Description,
		}
	}
	return nil
}

func (r *GormRoleRepository) LoadPermissionsAndDataScopes(ctx context.Context, role *identity.Role) error {
	if err := r.LoadPermissions(ctx, role); err != nil {
		return err
	}
	return r.LoadDataScopes(ctx, role)
}

func (r *GormRoleRepository) FindUsersWithRole(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	var assignments []identity.UserRole
	if err := r.db.WithContext(ctx).Where("role_id = ?", roleID).Find(&assignments).Error; err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, len(assignments))
	for i, a := range assignments {
		userIDs[i] = a.UserID
	}
	return userIDs, nil
}

func (r *GormRoleRepository) CountUsersWithRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&identity.UserRole{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

// FindRolesWithPermission returns the roles of a tenant holding the
// given permission code.
func (r *GormRoleRepository) FindRolesWithPermission(ctx context.Context, tenantID uuid.UUID, permissionCode string) ([]*identity.Role, error) {
	var rows []identity.RolePermission
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, permissionCode).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*identity.Role{}, nil
	}

	roleIDs := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		roleIDs[i] = row.RoleID
	}
	return r.FindByIDs(ctx, roleIDs)
}

// GetAllPermissionCodes returns the distinct permission codes granted
// anywhere in the tenant.
func (r *GormRoleRepository) GetAllPermissionCodes(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&identity.RolePermission{}).
		Where("tenant_id = ?", tenantID).
		Distinct("code").
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
