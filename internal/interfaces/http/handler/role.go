package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/application/identity"
	domainIdentity "github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/interfaces/http/dto"
)

// RoleHandler exposes role administration endpoints.
type RoleHandler struct {
	BaseHandler
	roleService *identity.RoleService
}

func NewRoleHandler(roleService *identity.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Create godoc
//
//	@ID			createRole
//	@Summary	Create a new role
//	@Tags		roles
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateRoleRequest	true	"Role creation request"
//	@Success	201		{object}	APIResponse[RoleResponse]
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	401		{object}	dto.ErrorResponse
//	@Failure	422		{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := h.claimTenantID(c)
	if !ok {
		return
	}

	input := identity.CreateRoleInput{
		TenantID:    tenantID,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
		SortOrder:   req.SortOrder,
	}
	// Record the creator when known so scoped listings can filter on it.
	if userID, err := getUserID(c); err == nil && userID != uuid.Nil {
		input.CreatedBy = &userID
	}

	role, err := h.roleService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toRoleResponse(role))
}

// GetByID godoc
//
//	@ID			getRoleById
//	@Summary	Get a role by ID
//	@Tags		roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ID"	format(uuid)
//	@Success	200	{object}	APIResponse[RoleResponse]
//	@Failure	400	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/{id} [get]
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "role")
	if !ok {
		return
	}
	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleResponse(role))
}

// GetByCode godoc
//
//	@ID			getRoleByCode
//	@Summary	Get a role by code
//	@Tags		roles
//	@Produce	json
//	@Param		code	path		string	true	"Role code"
//	@Success	200		{object}	APIResponse[RoleResponse]
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/code/{code} [get]
func (h *RoleHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Role code is required")
		return
	}
	tenantID, ok := h.claimTenantID(c)
	if !ok {
		return
	}

	role, err := h.roleService.GetByCode(c.Request.Context(), tenantID, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleResponse(role))
}

// List godoc
//
//	@ID			listRoles
//	@Summary	List roles
//	@Tags		roles
//	@Produce	json
//	@Param		keyword			query		string	false	"Search keyword"
//	@Param		is_enabled		query		bool	false	"Filter by enabled status"
//	@Param		is_system_role	query		bool	false	"Filter by system role"
//	@Param		page			query		int		false	"Page number"		default(1)
//	@Param		page_size		query		int		false	"Items per page"	default(20)	maximum(100)
//	@Success	200				{object}	APIResponse[RoleListResponse]
//	@Failure	400				{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	var query RoleListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	tenantID, ok := h.claimTenantID(c)
	if !ok {
		return
	}

	filter := &domainIdentity.RoleFilter{
		Keyword:      query.Keyword,
		IsEnabled:    query.IsEnabled,
		IsSystemRole: query.IsSystemRole,
		Page:         max(query.Page, 1),
		Limit:        query.PageSize,
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}

	result, err := h.roleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleListResponse(result))
}

// Update godoc
//
//	@ID			updateRole
//	@Summary	Update a role
//	@Tags		roles
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Role ID"	format(uuid)
//	@Param		request	body		UpdateRoleRequest	true	"Role update request"
//	@Success	200		{object}	APIResponse[RoleResponse]
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "role")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), identity.UpdateRoleInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleResponse(role))
}

// Delete godoc
//
//	@ID			deleteRole
//	@Summary	Delete a role
//	@Tags		roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ID"	format(uuid)
//	@Success	200	{object}	SuccessResponse
//	@Failure	400	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Failure	422	{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "role")
	if !ok {
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "Role deleted successfully"})
}

// Enable godoc
//
//	@ID			enableRole
//	@Summary	Enable a role
//	@Tags		roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ID"	format(uuid)
//	@Success	200	{object}	APIResponse[RoleResponse]
//	@Failure	400	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/{id}/enable [post]
func (h *RoleHandler) Enable(c *gin.Context) {
	h.setEnabled(c, h.roleService.Enable)
}

// Disable godoc
//
//	@ID			disableRole
//	@Summary	Disable a role
//	@Tags		roles
//	@Produce	json
//	@Param		id	path		string	true	"Role ID"	format(uuid)
//	@Success	200	{object}	APIResponse[RoleResponse]
//	@Failure	400	{object}	dto.ErrorResponse
//	@Failure	404	{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/{id}/disable [post]
func (h *RoleHandler) Disable(c *gin.Context) {
	h.setEnabled(c, h.roleService.Disable)
}

// setEnabled backs the enable/disable endpoints, which differ only in
// the service call they make.
func (h *RoleHandler) setEnabled(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*identity.RoleDTO, error)) {
	id, ok := h.pathUUID(c, "id", "role")
	if !ok {
		return
	}
	role, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleResponse(role))
}

// SetPermissions godoc
//
//	@ID			setPermissionsRole
//	@Summary	Set role permissions
//	@Description	Replaces the role's existing permission set
//	@Tags		roles
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Role ID"	format(uuid)
//	@Param		request	body		SetPermissionsRequest	true	"Permissions"
//	@Success	200		{object}	APIResponse[RoleResponse]
//	@Failure	400		{object}	dto.ErrorResponse
//	@Failure	404		{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/{id}/permissions [put]
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "role")
	if !ok {
		return
	}
	var req SetPermissionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.SetPermissions(c.Request.Context(), id, req.Permissions)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRoleResponse(role))
}

// GetPermissions godoc
//
//	@ID			getRolePermissions
//	@Summary	Get all available permissions
//	@Tags		roles
//	@Produce	json
//	@Success	200	{object}	APIResponse[PermissionListResponse]
//	@Failure	401	{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/permissions [get]
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	tenantID, ok := h.claimTenantID(c)
	if !ok {
		return
	}

	permissions, err := h.roleService.GetAllPermissionCodes(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// A fresh tenant has no roles yet; offer the built-in catalog.
	if len(permissions) == 0 {
		permissions = builtinPermissionCodes()
	}
	h.Success(c, PermissionListResponse{Permissions: permissions})
}

// GetSystemRoles godoc
//
//	@ID			getRoleSystemRoles
//	@Summary	Get system roles
//	@Tags		roles
//	@Produce	json
//	@Success	200	{object}	APIResponse[[]RoleResponse]
//	@Failure	401	{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/system [get]
func (h *RoleHandler) GetSystemRoles(c *gin.Context) {
	tenantID, ok := h.claimTenantID(c)
	if !ok {
		return
	}

	roles, err := h.roleService.GetSystemRoles(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]RoleResponse, len(roles))
	for i := range roles {
		responses[i] = *toRoleResponse(&roles[i])
	}
	h.Success(c, responses)
}

// Count godoc
//
//	@ID			countRoles
//	@Summary	Get role count
//	@Tags		roles
//	@Produce	json
//	@Success	200	{object}	APIResponse[CountData]
//	@Failure	401	{object}	dto.ErrorResponse
//	@Security	BearerAuth
//	@Router		/identity/roles/stats/count [get]
func (h *RoleHandler) Count(c *gin.Context) {
	tenantID, ok := h.claimTenantID(c)
	if !ok {
		return
	}

	count, err := h.roleService.Count(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"count": count})
}

func toRoleResponse(role *identity.RoleDTO) *RoleResponse {
	return &RoleResponse{
		ID:           role.ID,
		TenantID:     role.TenantID,
		Code:         role.Code,
		Name:         role.Name,
		Description:  role.Description,
		IsSystemRole: role.IsSystemRole,
		IsEnabled:    role.IsEnabled,
		SortOrder:    role.SortOrder,
		Permissions:  role.Permissions,
		UserCount:    role.UserCount,
		CreatedAt:    role.CreatedAt,
		UpdatedAt:    role.UpdatedAt,
	}
}

func toRoleListResponse(result *identity.RoleListResult) *RoleListResponse {
	roles := make([]RoleResponse, len(result.Roles))
	for i := range result.Roles {
		roles[i] = *toRoleResponse(&result.Roles[i])
	}
	return &RoleListResponse{
		Roles:      roles,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}

// builtinPermissionCodes is the catalog offered before any tenant
// roles exist: CRUD on every resource plus the workflow actions.
func builtinPermissionCodes() []string {
	resources := []string{
		"indent", "material", "machine", "quotation", "receipt",
		"attachment", "outbox", "report", "user", "role", "tenant",
	}
	workflow := []string{
		"indent:submit", "indent:approve", "indent:reject", "indent:revert",
		"indent:order", "indent:receive", "indent:close",
		"material:enable", "material:disable", "material:adjust",
		"machine:enable", "machine:disable",
		"outbox:manage",
		"user:lock", "user:unlock", "user:assign_role",
		"role:enable", "role:disable",
		"report:export", "report:view_all",
	}

	crud := []string{"create", "read", "update", "delete"}
	codes := make([]string, 0, len(resources)*len(crud)+len(workflow))
	for _, resource := range resources {
		for _, action := range crud {
			codes = append(codes, resource+":"+action)
		}
	}
	return append(codes, workflow...)
}
