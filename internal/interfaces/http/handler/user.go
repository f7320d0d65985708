package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/application/identity"
	domainIdentity "github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/interfaces/http/dto"
)

// UserHandler serves the user administration endpoints.
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// respondUser writes the mapped error, or the user rendered as a
// UserResponse.
func (h *UserHandler) respondUser(c *gin.Context, user *identity.UserDTO, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserResponse(user))
}

// parseRoleIDs converts string role IDs from a request body, reporting the
// first malformed entry.
func (h *UserHandler) parseRoleIDs(c *gin.Context, raw []string) ([]uuid.UUID, bool) {
	roleIDs := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		rid, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid role ID: "+s)
			return nil, false
		}
		roleIDs = append(roleIDs, rid)
	}
	return roleIDs, true
}

// Create godoc
// @Summary      Create a user account
// @Tags         users
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := h.claimTenantID(c)
	if !ok {
		return
	}
	roleIDs, ok := h.parseRoleIDs(c, req.RoleIDs)
	if !ok {
		return
	}

	input := identity.CreateUserInput{
		TenantID:    tenantID,
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		Notes:       req.Notes,
		RoleIDs:     roleIDs,
	}
	// The creator's ID feeds creator-scoped data filters on later reads.
	if userID, _ := getUserID(c); userID != uuid.Nil {
		input.CreatedBy = &userID
	}

	user, err := h.userService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUserResponse(user))
}

// GetByID godoc
// @Summary      Fetch a user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "user")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	h.respondUser(c, user, err)
}

// List godoc
// @Summary      List users with filters
// @Tags         users
// @Param        keyword query string false "Search keyword"
// @Param        status query string false "User status" Enums(pending, active, locked, deactivated)
// @Param        role_id query string false "Filter by role ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[UserListResponse]
// @Security     BearerAuth
// @Router       /identity/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query UserListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	filter, ok := h.buildUserFilter(c, query)
	if !ok {
		return
	}

	result, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUserListResponse(result))
}

// buildUserFilter layers the query parameters over the list defaults.
// Zero-valued parameters leave the corresponding default untouched.
func (h *UserHandler) buildUserFilter(c *gin.Context, query UserListQuery) (domainIdentity.UserFilter, bool) {
	filter := domainIdentity.NewUserFilter()
	if query.Keyword != "" {
		filter = filter.WithKeyword(query.Keyword)
	}
	if query.Status != "" {
		filter = filter.WithStatus(domainIdentity.UserStatus(query.Status))
	}
	if query.RoleID != "" {
		roleID, err := uuid.Parse(query.RoleID)
		if err != nil {
			h.BadRequest(c, "Invalid role ID")
			return filter, false
		}
		filter = filter.WithRoleID(roleID)
	}
	if query.Page > 0 || query.PageSize > 0 {
		page, pageSize := filter.Page, filter.PageSize
		if query.Page > 0 {
			page = query.Page
		}
		if query.PageSize > 0 {
			pageSize = query.PageSize
		}
		filter = filter.WithPagination(page, pageSize)
	}
	if query.SortBy != "" || query.SortDir != "" {
		sortBy, sortDir := filter.SortBy, filter.SortOrder
		if query.SortBy != "" {
			sortBy = query.SortBy
		}
		if query.SortDir != "" {
			sortDir = query.SortDir
		}
		filter = filter.WithSorting(sortBy, sortDir)
	}
	return filter, true
}

// Update godoc
// @Summary      Update a user's profile
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Param        request body UpdateUserRequest true "User update request"
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "user")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), identity.UpdateUserInput{
		ID:          id,
		Email:       req.Email,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		Notes:       req.Notes,
	})
	h.respondUser(c, user, err)
}

// Delete godoc
// @Summary      Delete a user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} SuccessResponse
// @Security     BearerAuth
// @Router       /identity/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "user")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "User deleted successfully"})
}

// Activate godoc
// @Summary      Activate a user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users/{id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.userService.Activate)
}

// Deactivate godoc
// @Summary      Deactivate a user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.userService.Deactivate)
}

// Unlock godoc
// @Summary      Unlock a locked user
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users/{id}/unlock [post]
func (h *UserHandler) Unlock(c *gin.Context) {
	h.changeStatus(c, h.userService.Unlock)
}

// changeStatus backs the activate/deactivate/unlock endpoints, which
// differ only in the service call they make.
func (h *UserHandler) changeStatus(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*identity.UserDTO, error)) {
	id, ok := h.pathUUID(c, "id", "user")
	if !ok {
		return
	}
	user, err := op(c.Request.Context(), id)
	h.respondUser(c, user, err)
}

// Lock godoc
// @Summary      Lock a user out
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Param        request body LockUserRequest false "Lock duration"
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users/{id}/lock [post]
func (h *UserHandler) Lock(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "user")
	if !ok {
		return
	}

	var req LockUserRequest
	_ = c.ShouldBindJSON(&req) // body is optional; zero duration means indefinite

	duration := time.Duration(0)
	if req.DurationMinutes > 0 {
		duration = time.Duration(req.DurationMinutes) * time.Minute
	}

	user, err := h.userService.Lock(c.Request.Context(), id, duration)
	h.respondUser(c, user, err)
}

// ResetPassword godoc
// @Summary      Reset a user's password
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Param        request body ResetPasswordRequest true "New password"
// @Success      200 {object} SuccessResponse
// @Security     BearerAuth
// @Router       /identity/users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "user")
	if !ok {
		return
	}
	var req ResetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), id, req.NewPassword); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.MessageResponse{Message: "Password reset successfully. User must change password on next login."})
}

// AssignRoles godoc
// @Summary      Replace a user's role assignments
// @Tags         users
// @Param        id path string true "User ID" format(uuid)
// @Param        request body AssignRolesRequest true "Role IDs"
// @Success      200 {object} APIResponse[UserResponse]
// @Security     BearerAuth
// @Router       /identity/users/{id}/roles [put]
func (h *UserHandler) AssignRoles(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "user")
	if !ok {
		return
	}
	var req AssignRolesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	roleIDs, ok := h.parseRoleIDs(c, req.RoleIDs)
	if !ok {
		return
	}

	user, err := h.userService.AssignRoles(c.Request.Context(), id, roleIDs)
	h.respondUser(c, user, err)
}

// Count godoc
// @Summary      Total number of users
// @Tags         users
// @Success      200 {object} APIResponse[CountData]
// @Security     BearerAuth
// @Router       /identity/users/stats/count [get]
func (h *UserHandler) Count(c *gin.Context) {
	count, err := h.userService.Count(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"count": count})
}

func toUserResponse(user *identity.UserDTO) *UserResponse {
	roleIDs := make([]string, len(user.RoleIDs))
	for i, rid := range user.RoleIDs {
		roleIDs[i] = rid.String()
	}

	return &UserResponse{
		ID:          user.ID,
		TenantID:    user.TenantID,
		Username:    user.Username,
		Email:       user.Email,
		Phone:       user.Phone,
		DisplayName: user.DisplayName,
		Avatar:      user.Avatar,
		Status:      user.Status,
		RoleIDs:     roleIDs,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toUserListResponse(result *identity.UserListResult) *UserListResponse {
	users := make([]UserResponse, len(result.Users))
	for i := range result.Users {
		users[i] = *toUserResponse(&result.Users[i])
	}

	return &UserListResponse{
		Users:      users,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}
}
