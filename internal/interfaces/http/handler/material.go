package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/indentflow/backend/internal/application/inventory"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/interfaces/http/dto"
)

// MaterialHandler handles material and machine reference data endpoints
type MaterialHandler struct {
	BaseHandler
	materialService *inventoryapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *inventoryapp.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
	}
}

// Create registers a new material in the catalog
func (h *MaterialHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	material, err := h.materialService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, material)
}

// GetByID retrieves a material by its ID
func (h *MaterialHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	material, err := h.materialService.GetByID(c.Request.Context(), tenantID, materialID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, material)
}

// GetByCode retrieves a material by its code
func (h *MaterialHandler) GetByCode(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Material code is required")
		return
	}

	material, err := h.materialService.GetByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, material)
}

// List retrieves a paginated list of materials with optional filtering
func (h *MaterialHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter inventoryapp.MaterialListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	materials, total, err := h.materialService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, materials, total, filter.Page, filter.PageSize)
}

// ListLowStock lists materials at or below their minimum stock level
func (h *MaterialHandler) ListLowStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter inventoryapp.MaterialListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter.LowStock = true
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	materials, total, err := h.materialService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, materials, total, filter.Page, filter.PageSize)
}

// Update updates the mutable fields of a material
func (h *MaterialHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	var req inventoryapp.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	material, err := h.materialService.Update(c.Request.Context(), tenantID, materialID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, material)
}

// SetStockLevels sets the current stock and minimum threshold of a material
func (h *MaterialHandler) SetStockLevels(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	var req inventoryapp.SetStockLevelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	material, err := h.materialService.SetStockLevels(c.Request.Context(), tenantID, materialID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, material)
}

// AdjustStock applies a signed delta to a material's current stock
func (h *MaterialHandler) AdjustStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	material, err := h.materialService.AdjustStock(c.Request.Context(), tenantID, materialID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, material)
}

// Delete deactivates or removes a material
func (h *MaterialHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	materialID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID format")
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), tenantID, materialID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateMachine registers a machine that indent items can reference
func (h *MaterialHandler) CreateMachine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req inventoryapp.CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	machine, err := h.materialService.CreateMachine(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, machine)
}

// GetMachine retrieves a machine by its ID
func (h *MaterialHandler) GetMachine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	machineID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid machine ID format")
		return
	}

	machine, err := h.materialService.GetMachine(c.Request.Context(), tenantID, machineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, machine)
}

// ListMachines retrieves the machines available to the tenant
func (h *MaterialHandler) ListMachines(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search

	machines, err := h.materialService.ListMachines(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, machines)
}
