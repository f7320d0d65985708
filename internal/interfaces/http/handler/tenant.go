package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/application/identity"
	"github.com/indentflow/backend/internal/interfaces/http/dto"
)

// TenantHandler exposes tenant administration endpoints. These are
// platform-operator routes; ordinary users never touch them.
type TenantHandler struct {
	BaseHandler
	tenantService *identity.TenantService
}

func NewTenantHandler(tenantService *identity.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// respondTenant writes the mapped error, or the tenant rendered as a
// TenantResponse. Most endpoints here end the same way.
func (h *TenantHandler) respondTenant(c *gin.Context, tenant *identity.TenantDTO, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantResponse(tenant))
}

// Create godoc
// @Summary      Register a tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body CreateTenantRequest true "Tenant creation request"
// @Success      201 {object} dto.Response{data=TenantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), identity.CreateTenantInput{
		Code:         req.Code,
		Name:         req.Name,
		ShortName:    req.ShortName,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
		LogoURL:      req.LogoURL,
		Domain:       req.Domain,
		Plan:         req.Plan,
		Notes:        req.Notes,
		TrialDays:    req.TrialDays,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTenantResponse(tenant))
}

// GetByID godoc
// @Summary      Fetch a tenant
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id} [get]
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "tenant")
	if !ok {
		return
	}
	tenant, err := h.tenantService.GetByID(c.Request.Context(), id)
	h.respondTenant(c, tenant, err)
}

// GetByCode godoc
// @Summary      Look up a tenant by its code
// @Tags         tenants
// @Produce      json
// @Param        code path string true "Tenant code"
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/code/{code} [get]
func (h *TenantHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Tenant code is required")
		return
	}
	tenant, err := h.tenantService.GetByCode(c.Request.Context(), code)
	h.respondTenant(c, tenant, err)
}

// List godoc
// @Summary      List tenants with filters
// @Tags         tenants
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        status query string false "Tenant status" Enums(active, inactive, suspended, trial)
// @Param        plan query string false "Subscription plan" Enums(free, basic, pro, enterprise)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        sort_by query string false "Sort by field" Enums(code, name, status, plan, created_at, updated_at)
// @Param        sort_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=TenantListResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	var query TenantListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	result, err := h.tenantService.List(c.Request.Context(), identity.TenantFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   query.SortBy,
		SortDir:  query.SortDir,
		Keyword:  query.Keyword,
		Status:   query.Status,
		Plan:     query.Plan,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTenantListResponse(result))
}

// Update godoc
// @Summary      Update a tenant's profile
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body UpdateTenantRequest true "Tenant update request"
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "tenant")
	if !ok {
		return
	}
	var req UpdateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), identity.UpdateTenantInput{
		ID:           id,
		Name:         req.Name,
		ShortName:    req.ShortName,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Address:      req.Address,
		LogoURL:      req.LogoURL,
		Domain:       req.Domain,
		Notes:        req.Notes,
	})
	h.respondTenant(c, tenant, err)
}

// UpdateConfig godoc
// @Summary      Adjust tenant limits and locale settings
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body UpdateTenantConfigRequest true "Configuration update request"
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id}/config [put]
func (h *TenantHandler) UpdateConfig(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "tenant")
	if !ok {
		return
	}
	var req UpdateTenantConfigRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.UpdateConfig(c.Request.Context(), id, identity.TenantConfigInput{
		MaxUsers:     req.MaxUsers,
		MaxMachines:  req.MaxMachines,
		MaxMaterials: req.MaxMaterials,
		Currency:     req.Currency,
		Timezone:     req.Timezone,
		Locale:       req.Locale,
	})
	h.respondTenant(c, tenant, err)
}

// SetPlan godoc
// @Summary      Change a tenant's subscription plan
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body SetTenantPlanRequest true "Plan update request"
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id}/plan [put]
func (h *TenantHandler) SetPlan(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "tenant")
	if !ok {
		return
	}
	var req SetTenantPlanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.SetPlan(c.Request.Context(), id, req.Plan)
	h.respondTenant(c, tenant, err)
}

// Activate godoc
// @Summary      Activate a tenant
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id}/activate [post]
func (h *TenantHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.tenantService.Activate)
}

// Deactivate godoc
// @Summary      Deactivate a tenant
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id}/deactivate [post]
func (h *TenantHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.tenantService.Deactivate)
}

// Suspend godoc
// @Summary      Suspend a tenant
// @Description  Takes the tenant offline without deleting it, e.g. while a subscription lapses
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} dto.Response{data=TenantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id}/suspend [post]
func (h *TenantHandler) Suspend(c *gin.Context) {
	h.changeStatus(c, h.tenantService.Suspend)
}

// changeStatus backs the activate/deactivate/suspend endpoints, which
// differ only in the service call they make.
func (h *TenantHandler) changeStatus(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*identity.TenantDTO, error)) {
	id, ok := h.pathUUID(c, "id", "tenant")
	if !ok {
		return
	}
	tenant, err := op(c.Request.Context(), id)
	h.respondTenant(c, tenant, err)
}

// Delete godoc
// @Summary      Delete a tenant
// @Description  Refused unless the tenant was deactivated first
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /identity/tenants/{id} [delete]
func (h *TenantHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "tenant")
	if !ok {
		return
	}
	if err := h.tenantService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "Tenant deleted successfully"})
}

// GetStats godoc
// @Summary      Tenant counts by status
// @Tags         tenants
// @Produce      json
// @Success      200 {object} dto.Response{data=TenantStatsResponse}
// @Security     BearerAuth
// @Router       /identity/tenants/stats [get]
func (h *TenantHandler) GetStats(c *gin.Context) {
	stats, err := h.tenantService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TenantStatsResponse{
		Total:     stats.Total,
		Active:    stats.Active,
		Trial:     stats.Trial,
		Inactive:  stats.Inactive,
		Suspended: stats.Suspended,
	})
}

// Count godoc
// @Summary      Total number of tenants
// @Tags         tenants
// @Produce      json
// @Success      200 {object} dto.Response{data=object{count=int64}}
// @Security     BearerAuth
// @Router       /identity/tenants/stats/count [get]
func (h *TenantHandler) Count(c *gin.Context) {
	count, err := h.tenantService.Count(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"count": count})
}

func toTenantResponse(tenant *identity.TenantDTO) *TenantResponse {
	return &TenantResponse{
		ID:           tenant.ID,
		Code:         tenant.Code,
		Name:         tenant.Name,
		ShortName:    tenant.ShortName,
		Status:       tenant.Status,
		Plan:         tenant.Plan,
		ContactName:  tenant.ContactName,
		ContactPhone: tenant.ContactPhone,
		ContactEmail: tenant.ContactEmail,
		Address:      tenant.Address,
		LogoURL:      tenant.LogoURL,
		Domain:       tenant.Domain,
		ExpiresAt:    tenant.ExpiresAt,
		TrialEndsAt:  tenant.TrialEndsAt,
		Config: TenantConfigResponse{
			MaxUsers:     tenant.Config.MaxUsers,
			MaxMachines:  tenant.Config.MaxMachines,
			MaxMaterials: tenant.Config.MaxMaterials,
			Currency:     tenant.Config.Currency,
			Timezone:     tenant.Config.Timezone,
			Locale:       tenant.Config.Locale,
		},
		Notes:     tenant.Notes,
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}
}

func toTenantListResponse(result *identity.TenantListResult) *TenantListResponse {
	tenants := make([]TenantResponse, len(result.Tenants))
	for i := range result.Tenants {
		tenants[i] = *toTenantResponse(&result.Tenants[i])
	}
	return &TenantListResponse{
		Tenants:    tenants,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}
