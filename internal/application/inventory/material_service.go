package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/inventory"
	"github.com/indentflow/backend/internal/domain/shared"
)

// MaterialCache caches material reads; lookups during indent entry are far
// more frequent than catalog writes.
type MaterialCache interface {
	Get(ctx context.Context, tenantID, materialID uuid.UUID) (*inventory.Material, bool)
	Set(ctx context.Context, material *inventory.Material)
	Invalidate(ctx context.Context, tenantID, materialID uuid.UUID)
}

// MaterialService handles material catalog operations
type MaterialService struct {
	materialRepo inventory.MaterialRepository
	machineRepo  inventory.MachineRepository
	cache        MaterialCache
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(materialRepo inventory.MaterialRepository, machineRepo inventory.MachineRepository) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		machineRepo:  machineRepo,
	}
}

// SetCache sets the material read cache
func (s *MaterialService) SetCache(cache MaterialCache) {
	s.cache = cache
}

// Create creates a new material catalog entry
func (s *MaterialService) Create(ctx context.Context, tenantID uuid.UUID, req CreateMaterialRequest) (*MaterialResponse, error) {
	exists, err := s.materialRepo.ExistsByCode(ctx, tenantID, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A material with this code already exists")
	}

	material, err := inventory.NewMaterial(tenantID, req.Code, req.Name, inventory.MaterialCategory(req.Category), req.Unit, req.MinStockLevel)
	if err != nil {
		return nil, err
	}
	material.Specification = req.Specification
	if req.CurrentStock > 0 {
		if err := material.SetStockLevels(req.CurrentStock, req.MinStockLevel); err != nil {
			return nil, err
		}
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// GetByID retrieves a material by ID, served from cache when possible
func (s *MaterialService) GetByID(ctx context.Context, tenantID, materialID uuid.UUID) (*MaterialResponse, error) {
	if s.cache != nil {
		if material, ok := s.cache.Get(ctx, tenantID, materialID); ok {
			response := ToMaterialResponse(material)
			return &response, nil
		}
	}

	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, material)
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// GetByCode retrieves a material by its code
func (s *MaterialService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	response := ToMaterialResponse(material)
	return &response, nil
}

// List retrieves materials with filtering and pagination
func (s *MaterialService) List(ctx context.Context, tenantID uuid.UUID, filter MaterialListFilter) ([]MaterialResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Category != nil {
		domainFilter.Filters["category"] = *filter.Category
	}
	if filter.Active != nil {
		domainFilter.Filters["is_active"] = *filter.Active
	}

	var materials []inventory.Material
	var err error
	if filter.LowStock {
		materials, err = s.materialRepo.FindLowStock(ctx, tenantID, domainFilter)
	} else {
		materials, err = s.materialRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.materialRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToMaterialResponses(materials), total, nil
}

// Update updates a material's descriptive fields
func (s *MaterialService) Update(ctx context.Context, tenantID, materialID uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	name := material.Name
	if req.Name != nil {
		name = *req.Name
	}
	category := material.Category
	if req.Category != nil {
		category = inventory.MaterialCategory(*req.Category)
	}
	unit := material.Unit
	if req.Unit != nil {
		unit = *req.Unit
	}
	specification := material.Specification
	if req.Specification != nil {
		specification = *req.Specification
	}

	if err := material.UpdateInfo(name, category, unit, specification); err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		if *req.IsActive {
			material.Activate()
		} else {
			material.Deactivate()
		}
	}

	if err := s.materialRepo.SaveWithLock(ctx, material); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID, materialID)
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// SetStockLevels updates a material's on-hand stock and threshold
func (s *MaterialService) SetStockLevels(ctx context.Context, tenantID, materialID uuid.UUID, req SetStockLevelsRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	if err := material.SetStockLevels(req.CurrentStock, req.MinStockLevel); err != nil {
		return nil, err
	}

	if err := s.materialRepo.SaveWithLock(ctx, material); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID, materialID)
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// AdjustStock applies a signed stock movement to a material
func (s *MaterialService) AdjustStock(ctx context.Context, tenantID, materialID uuid.UUID, req AdjustStockRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return nil, err
	}

	if err := material.AdjustStock(req.Delta); err != nil {
		return nil, err
	}

	if err := s.materialRepo.SaveWithLock(ctx, material); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID, materialID)
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// Delete deletes a material from the catalog
func (s *MaterialService) Delete(ctx context.Context, tenantID, materialID uuid.UUID) error {
	material, err := s.materialRepo.FindByIDForTenant(ctx, tenantID, materialID)
	if err != nil {
		return err
	}

	if err := s.materialRepo.Delete(ctx, material.ID); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID, materialID)
	}
	return nil
}

// ==================== Machines ====================

// CreateMachine registers a production machine
func (s *MaterialService) CreateMachine(ctx context.Context, tenantID uuid.UUID, req CreateMachineRequest) (*MachineResponse, error) {
	machine, err := inventory.NewMachine(tenantID, req.Code, req.Name, req.Location)
	if err != nil {
		return nil, err
	}

	if err := s.machineRepo.Save(ctx, machine); err != nil {
		return nil, err
	}

	response := ToMachineResponse(machine)
	return &response, nil
}

// GetMachine retrieves a machine by ID
func (s *MaterialService) GetMachine(ctx context.Context, tenantID, machineID uuid.UUID) (*MachineResponse, error) {
	machine, err := s.machineRepo.FindByIDForTenant(ctx, tenantID, machineID)
	if err != nil {
		return nil, err
	}
	response := ToMachineResponse(machine)
	return &response, nil
}

// ListMachines retrieves machines for a tenant
func (s *MaterialService) ListMachines(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MachineResponse, error) {
	machines, err := s.machineRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return ToMachineResponses(machines), nil
}
