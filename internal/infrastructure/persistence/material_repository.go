package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indentflow/backend/internal/domain/inventory"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/infrastructure/persistence/models"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a material by ID within a tenant
func (r *GormMaterialRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a material by code for a tenant
func (r *GormMaterialRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*inventory.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all materials for a tenant with filtering
func (r *GormMaterialRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Material, error) {
	var materialModels []models.MaterialModel

	query := r.db.WithContext(ctx).Model(&models.MaterialModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&materialModels).Error; err != nil {
		return nil, err
	}
	materials := make([]inventory.Material, len(materialModels))
	for i, model := range materialModels {
		materials[i] = *model.ToDomain()
	}
	return materials, nil
}

// FindLowStock finds active materials at or below their minimum stock level
func (r *GormMaterialRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Material, error) {
	var materialModels []models.MaterialModel

	query := r.db.WithContext(ctx).Model(&models.MaterialModel{}).
		Where("tenant_id = ? AND is_active = ? AND current_stock <= min_stock_level", tenantID, true)
	query = r.applyFilter(query, filter)

	if err := query.Find(&materialModels).Error; err != nil {
		return nil, err
	}
	materials := make([]inventory.Material, len(materialModels))
	for i, model := range materialModels {
		materials[i] = *model.ToDomain()
	}
	return materials, nil
}

// Save creates or updates a material
func (r *GormMaterialRepository) Save(ctx context.Context, material *inventory.Material) error {
	model := models.MaterialModelFromDomain(material)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormMaterialRepository) SaveWithLock(ctx context.Context, material *inventory.Material) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.MaterialModel{}).
			Where("id = ?", material.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != material.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The material has been modified by another user")
		}

		material.Version++
		material.UpdatedAt = time.Now()

		result := tx.Model(&models.MaterialModel{}).
			Where("id = ? AND version = ?", material.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":            material.Name,
				"category":        material.Category,
				"unit":            material.Unit,
				"specification":   material.Specification,
				"current_stock":   material.CurrentStock,
				"min_stock_level": material.MinStockLevel,
				"is_active":       material.IsActive,
				"version":         material.Version,
				"updated_at":      material.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The material has been modified by another user")
		}
		return nil
	})
}

// Delete deletes a material
func (r *GormMaterialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MaterialModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts materials for a tenant with optional filters
func (r *GormMaterialRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.MaterialModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a material code exists for a tenant
func (r *GormMaterialRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormMaterialRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, MaterialSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("code ASC")
		}
	} else {
		// Default ordering
		query = query.Order("code ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMaterialRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "stock_status":
			switch value {
			case string(inventory.StockStatusOutOfStock):
				query = query.Where("current_stock <= 0")
			case string(inventory.StockStatusLowStock):
				query = query.Where("current_stock > 0 AND current_stock <= min_stock_level")
			case string(inventory.StockStatusInStock):
				query = query.Where("current_stock > 0 AND current_stock > min_stock_level")
			}
		}
	}

	return query
}

// Ensure GormMaterialRepository implements MaterialRepository
var _ inventory.MaterialRepository = (*GormMaterialRepository)(nil)
