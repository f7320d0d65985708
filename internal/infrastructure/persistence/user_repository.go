package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/infrastructure/persistence/models"
)

// GormUserRepository implements identity.UserRepository on GORM. Role
// assignments live in the user_roles join table and are replaced
// wholesale on save.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

// firstUser runs a First query and maps the row into the domain.
func (r *GormUserRepository) firstUser(query *gorm.DB) (*identity.User, error) {
	var model models.UserModel
	if err := query.First(&model).Error; err != nil {
		return nil, notFoundAsDomain(err)
	}
	return model.ToDomain(), nil
}

func toDomainUsers(rows []*models.UserModel) []*identity.User {
	users := make([]*identity.User, len(rows))
	for i, row := range rows {
		users[i] = row.ToDomain()
	}
	return users
}

func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error
}

func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).Save(models.UserModelFromDomain(user))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the user together with their role assignments.
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Delete(&models.UserRoleModel{}).Error; err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.firstUser(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByUsername is case-insensitive; usernames are stored lowercased.
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.firstUser(r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	return r.firstUser(r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)))
}

func (r *GormUserRepository) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	if phone == "" {
		return nil, shared.ErrNotFound
	}
	return r.firstUser(r.db.WithContext(ctx).Where("phone = ?", phone))
}

// FindAll returns the matching page of users and the unpaginated total.
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	query := r.filteredUsers(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := filter.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	var rows []*models.UserModel
	err := query.Order(sortBy + " " + sortOrder).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toDomainUsers(rows), total, nil
}

func (r *GormUserRepository) FindByRoleID(ctx context.Context, roleID uuid.UUID) ([]*identity.User, error) {
	var rows []*models.UserModel
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON users.id = user_roles.user_id").
		Where("user_roles.role_id = ?", roleID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainUsers(rows), nil
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error
	return count > 0, err
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

// SaveUserRoles replaces the user's role assignments with the
// in-memory set.
func (r *GormUserRepository) SaveUserRoles(ctx context.Context, user *identity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		if len(user.RoleIDs) == 0 {
			return nil
		}

		now := time.Now()
		rows := make([]models.UserRoleModel, len(user.RoleIDs))
		for i, roleID := range user.RoleIDs {
			rows[i] = models.UserRoleModel{
				UserID:    user.ID,
				RoleID:    roleID,
				TenantID:  user.TenantID,
				CreatedAt: now,
			}
		}
		return tx.Create(&rows).Error
	})
}

// LoadUserRoles populates user.RoleIDs from the join table.
func (r *GormUserRepository) LoadUserRoles(ctx context.Context, user *identity.User) error {
	var rows []models.UserRoleModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", user.ID).Find(&rows).Error; err != nil {
		return err
	}

	user.RoleIDs = make([]uuid.UUID, len(rows))
	for i, row := range rows {
		user.RoleIDs[i] = row.RoleID
	}
	return nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error
	return count, err
}

// filteredUsers starts a user query with keyword, status, and role
// filters applied.
func (r *GormUserRepository) filteredUsers(ctx context.Context, filter identity.UserFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})

	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where(
			"username ILIKE ? OR email ILIKE ? OR display_name ILIKE ? OR phone ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RoleID != nil {
		query = query.Joins("JOIN user_roles ON users.id = user_roles.user_id").
			Where("user_roles.role_id = ?", *filter.RoleID)
	}
	return query
}
