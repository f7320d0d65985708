package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/indentflow/backend/internal/domain/inventory"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/infrastructure/persistence/models"
)

// GormMachineRepository implements MachineRepository using GORM
type GormMachineRepository struct {
	db *gorm.DB
}

// NewGormMachineRepository creates a new GormMachineRepository
func NewGormMachineRepository(db *gorm.DB) *GormMachineRepository {
	return &GormMachineRepository{db: db}
}

// FindByID finds a machine by its ID
func (r *GormMachineRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Machine, error) {
	var model models.MachineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a machine by ID within a tenant
func (r *GormMachineRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Machine, error) {
	var model models.MachineModel
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

// FindAllForTenant finds all machines for a tenant with filtering
func (r *GormMachineRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Machine, error) {
	var machineModels []models.MachineModel

	query := r.db.WithContext(ctx).Model(&models.MachineModel{}).Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", searchPattern, searchPattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "location":
			query = query.Where("location = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, MachineSortFields, "")
		if sortField != "" {
			query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
		} else {
			query = query.Order("code ASC")
		}
	} else {
		query = query.Order("code ASC")
	}

	if err := query.Find(&machineModels).Error; err != nil {
		return nil, err
	}
	machines := make([]inventory.Machine, len(machineModels))
	for i, model := range machineModels {
		machines[i] = *model.ToDomain()
	}
	return machines, nil
}

// Save creates or updates a machine
func (r *GormMachineRepository) Save(ctx context.Context, machine *inventory.Machine) error {
	model := models.MachineModelFromDomain(machine)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a machine
func (r *GormMachineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MachineModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormMachineRepository implements MachineRepository
var _ inventory.MachineRepository = (*GormMachineRepository)(nil)
