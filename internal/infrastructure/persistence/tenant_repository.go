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

// GormTenantRepository implements identity.TenantRepository on GORM,
// mapping through models.TenantModel because the domain tenant embeds
// its config as a value object.
type GormTenantRepository struct {
	db *gorm.DB
}

func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// firstTenant runs a First query and maps the row into the domain.
func (r *GormTenantRepository) firstTenant(query *gorm.DB) (*identity.Tenant, error) {
	var model models.TenantModel
	if err := query.First(&model).Error; err != nil {
		return nil, notFoundAsDomain(err)
	}
	return model.ToDomain(), nil
}

// findTenants runs a Find query and maps every row into the domain.
func (r *GormTenantRepository) findTenants(query *gorm.DB) ([]identity.Tenant, error) {
	var rows []models.TenantModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	tenants := make([]identity.Tenant, len(rows))
	for i := range rows {
		tenants[i] = *rows[i].ToDomain()
	}
	return tenants, nil
}

// paginate applies the filter's page window with a default page size of 20.
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	offset := (filter.Page - 1) * filter.PageSize
	if offset < 0 {
		offset = 0
	}
	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	return query.Offset(offset).Limit(limit)
}

// sorted applies whitelist-validated ordering from the filter.
func sortedTenants(query *gorm.DB, filter shared.Filter) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, TenantSortFields, "created_at")
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir)
}

func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	return r.firstTenant(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	return r.firstTenant(r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(code)))
}

func (r *GormTenantRepository) FindByDomain(ctx context.Context, domain string) (*identity.Tenant, error) {
	if domain == "" {
		return nil, shared.ErrNotFound
	}
	return r.firstTenant(r.db.WithContext(ctx).
		Where("LOWER(domain) = ?", strings.ToLower(domain)))
}

func (r *GormTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	query := r.db.WithContext(ctx).Model(&models.TenantModel{})
	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR short_name ILIKE ?", keyword, keyword, keyword)
	}
	return r.findTenants(paginate(sortedTenants(query, filter), filter))
}

func (r *GormTenantRepository) FindByStatus(ctx context.Context, status identity.TenantStatus, filter shared.Filter) ([]identity.Tenant, error) {
	query := r.db.WithContext(ctx).Model(&models.TenantModel{}).Where("status = ?", status)
	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", keyword, keyword)
	}
	return r.findTenants(paginate(sortedTenants(query, filter), filter))
}

func (r *GormTenantRepository) FindByPlan(ctx context.Context, plan identity.TenantPlan, filter shared.Filter) ([]identity.Tenant, error) {
	query := r.db.WithContext(ctx).Model(&models.TenantModel{}).Where("plan = ?", plan)
	return r.findTenants(paginate(query, filter))
}

func (r *GormTenantRepository) FindActive(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	return r.FindByStatus(ctx, identity.TenantStatusActive, filter)
}

// expiringWithin finds tenants in the given status whose dated column
// falls inside the next withinDays days.
func (r *GormTenantRepository) expiringWithin(ctx context.Context, status identity.TenantStatus, column string, withinDays int) ([]identity.Tenant, error) {
	now := time.Now()
	deadline := now.AddDate(0, 0, withinDays)
	return r.findTenants(r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("status = ?", status).
		Where(column+" IS NOT NULL").
		Where(column+" <= ?", deadline).
		Where(column+" > ?", now))
}

func (r *GormTenantRepository) FindTrialExpiring(ctx context.Context, withinDays int) ([]identity.Tenant, error) {
	return r.expiringWithin(ctx, identity.TenantStatusTrial, "trial_ends_at", withinDays)
}

func (r *GormTenantRepository) FindSubscriptionExpiring(ctx context.Context, withinDays int) ([]identity.Tenant, error) {
	return r.expiringWithin(ctx, identity.TenantStatusActive, "expires_at", withinDays)
}

func (r *GormTenantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.Tenant, error) {
	if len(ids) == 0 {
		return []identity.Tenant{}, nil
	}
	return r.findTenants(r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("id IN ?", ids))
}

// Save upserts the tenant through its persistence model.
func (r *GormTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	return r.db.WithContext(ctx).Save(models.TenantModelFromDomain(tenant)).Error
}

func (r *GormTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TenantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TenantModel{})
	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", keyword, keyword)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *GormTenantRepository) CountByStatus(ctx context.Context, status identity.TenantStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TenantModel{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *GormTenantRepository) CountByPlan(ctx context.Context, plan identity.TenantPlan) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TenantModel{}).
		Where("plan = ?", plan).
		Count(&count).Error
	return count, err
}

func (r *GormTenantRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TenantModel{}).
		Where("UPPER(code) = ?", strings.ToUpper(code)).
		Count(&count).Error
	return count > 0, err
}

func (r *GormTenantRepository) ExistsByDomain(ctx context.Context, domain string) (bool, error) {
	if domain == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TenantModel{}).
		Where("LOWER(domain) = ?", strings.ToLower(domain)).
		Count(&count).Error
	return count > 0, err
}
