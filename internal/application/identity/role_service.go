package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/domain/shared"
)

// RoleService manages roles and their permission sets.
type RoleService struct {
	roleRepo identity.RoleRepository
	userRepo identity.UserRepository
	logger   *zap.Logger
}

func NewRoleService(
	roleRepo identity.RoleRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateRoleInput contains input for creating a role. Permissions are
// codes like "indent:approve".
type CreateRoleInput struct {
	TenantID    uuid.UUID
	Code        string
	Name        string
	Description string
	Permissions []string
	SortOrder   int
	CreatedBy   *uuid.UUID
}

// UpdateRoleInput carries partial updates; nil fields are left alone.
type UpdateRoleInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	SortOrder   *int
}

// RoleDTO is the API shape of a role.
type RoleDTO struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	IsSystemRole bool      `json:"is_system_role"`
	IsEnabled    bool      `json:"is_enabled"`
	SortOrder    int       `json:"sort_order"`
	Permissions  []string  `json:"permissions"`
	UserCount    int64     `json:"user_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleListResult is one page of roles.
type RoleListResult struct {
	Roles      []RoleDTO `json:"roles"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// internalError logs the underlying cause and hands the caller an
// opaque INTERNAL_ERROR.
func (s *RoleService) internalError(logMsg, userMsg string, err error) error {
	s.logger.Error(logMsg, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", userMsg)
}

// loadRole fetches a role and maps repository errors to domain
// errors.
func (s *RoleService) loadRole(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role not found")
		}
		return nil, s.internalError("Failed to find role", "Failed to find role", err)
	}
	return role, nil
}

// withPermissions loads the role's permissions and converts to a DTO.
// Permission-load failures are logged but do not fail the request.
func (s *RoleService) withPermissions(ctx context.Context, role *identity.Role) *RoleDTO {
	if err := s.roleRepo.LoadPermissions(ctx, role); err != nil {
		s.logger.Error("Failed to load role permissions",
			zap.String("role_id", role.ID.String()),
			zap.Error(err))
	}
	return toRoleDTO(role)
}

// withUserCount decorates the DTO with how many users hold the role.
func (s *RoleService) withUserCount(ctx context.Context, dto *RoleDTO) *RoleDTO {
	if count, err := s.roleRepo.CountUsersWithRole(ctx, dto.ID); err == nil {
		dto.UserCount = count
	}
	return dto
}

// Create registers a new role with its initial permission grants.
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*RoleDTO, error) {
	s.logger.Info("Creating new role",
		zap.String("code", input.Code),
		zap.String("tenant_id", input.TenantID.String()))

	exists, err := s.roleRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		return nil, s.internalError("Failed to check role code existence", "Failed to check role code availability", err)
	}
	if exists {
		return nil, shared.NewDomainError("ROLE_CODE_EXISTS", "Role code already exists")
	}

	role, err := identity.NewRole(input.TenantID, input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	role.CreatedBy = input.CreatedBy

	if input.Description != "" {
		role.SetDescription(input.Description)
	}
	if input.SortOrder != 0 {
		role.SetSortOrder(input.SortOrder)
	}

	for _, permCode := range input.Permissions {
		if err := role.GrantPermissionByCode(permCode); err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "PERMISSION_ALREADY_GRANTED" {
				continue
			}
			return nil, err
		}
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, s.internalError("Failed to create role", "Failed to create role", err)
	}

	if len(role.Permissions) > 0 {
		if err := s.roleRepo.SavePermissions(ctx, role); err != nil {
			// Roll the role back so a retry does not hit the code
			// uniqueness check.
			_ = s.roleRepo.Delete(ctx, role.ID)
			return nil, s.internalError("Failed to save role permissions", "Failed to save role permissions", err)
		}
	}

	s.logger.Info("Role created successfully",
		zap.String("role_id", role.ID.String()),
		zap.String("code", role.Code))
	return toRoleDTO(role), nil
}

func (s *RoleService) GetByID(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	role, err := s.loadRole(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withUserCount(ctx, s.withPermissions(ctx, role)), nil
}

func (s *RoleService) GetByCode(ctx context.Context, tenantID uuid.UUID, code string) (*RoleDTO, error) {
	role, err := s.roleRepo.FindByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ROLE_NOT_FOUND", "Role not found")
		}
		return nil, s.internalError("Failed to find role", "Failed to find role", err)
	}
	return s.withUserCount(ctx, s.withPermissions(ctx, role)), nil
}

// List pages roles with permissions and user counts loaded.
func (s *RoleService) List(ctx context.Context, tenantID uuid.UUID, filter *identity.RoleFilter) (*RoleListResult, error) {
	roles, err := s.roleRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, s.internalError("Failed to list roles", "Failed to list roles", err)
	}

	total, err := s.roleRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, s.internalError("Failed to count roles", "Failed to count roles", err)
	}

	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = *s.withUserCount(ctx, s.withPermissions(ctx, role))
	}

	pageSize := 20
	page := 1
	if filter != nil {
		if filter.Limit > 0 {
			pageSize = filter.Limit
		}
		page = max(filter.Page, 1)
	}

	return &RoleListResult{
		Roles:      dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (int(total) + pageSize - 1) / pageSize,
	}, nil
}

// Update applies the non-nil fields of input to the role.
func (s *RoleService) Update(ctx context.Context, input UpdateRoleInput) (*RoleDTO, error) {
	role, err := s.loadRole(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := role.SetName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		role.SetDescription(*input.Description)
	}
	if input.SortOrder != nil {
		role.SetSortOrder(*input.SortOrder)
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, s.internalError("Failed to update role", "Failed to update role", err)
	}

	s.logger.Info("Role updated", zap.String("role_id", input.ID.String()))
	return s.withPermissions(ctx, role), nil
}

// Delete removes a role. System roles and roles still assigned to
// users cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := s.loadRole(ctx, id)
	if err != nil {
		return err
	}
	if !role.CanDelete() {
		return shared.NewDomainError("CANNOT_DELETE_SYSTEM_ROLE", "System roles cannot be deleted")
	}

	userCount, err := s.roleRepo.CountUsersWithRole(ctx, id)
	if err != nil {
		return s.internalError("Failed to count users with role", "Failed to check role usage", err)
	}
	if userCount > 0 {
		return shared.NewDomainError("ROLE_IN_USE", "Cannot delete role that is assigned to users")
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		return s.internalError("Failed to delete role", "Failed to delete role", err)
	}

	s.logger.Info("Role deleted", zap.String("role_id", id.String()))
	return nil
}

func (s *RoleService) Enable(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	return s.transition(ctx, id, "enable role", (*identity.Role).Enable)
}

func (s *RoleService) Disable(ctx context.Context, id uuid.UUID) (*RoleDTO, error) {
	return s.transition(ctx, id, "disable role", (*identity.Role).Disable)
}

func (s *RoleService) transition(ctx context.Context, id uuid.UUID, action string, mutate func(*identity.Role) error) (*RoleDTO, error) {
	role, err := s.loadRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(role); err != nil {
		return nil, err
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, s.internalError("Failed to "+action, "Failed to "+action, err)
	}

	s.logger.Info("Role status changed",
		zap.String("action", action),
		zap.String("role_id", id.String()))
	return s.withPermissions(ctx, role), nil
}

// SetPermissions replaces the role's permission set from codes.
func (s *RoleService) SetPermissions(ctx context.Context, roleID uuid.UUID, permissionCodes []string) (*RoleDTO, error) {
	role, err := s.loadRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	permissions := make([]identity.Permission, 0, len(permissionCodes))
	for _, code := range permissionCodes {
		perm, err := identity.NewPermissionFromCode(code)
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, *perm)
	}

	if err := role.SetPermissions(permissions); err != nil {
		return nil, err
	}

	if err := s.roleRepo.SavePermissions(ctx, role); err != nil {
		return nil, s.internalError("Failed to save role permissions", "Failed to save permissions", err)
	}
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, s.internalError("Failed to update role", "Failed to update role", err)
	}

	s.logger.Info("Role permissions updated",
		zap.String("role_id", roleID.String()),
		zap.Int("permission_count", len(permissions)))
	return toRoleDTO(role), nil
}

func (s *RoleService) GetAllPermissionCodes(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	return s.roleRepo.GetAllPermissionCodes(ctx, tenantID)
}

// GetSystemRoles returns the seeded roles of a tenant.
func (s *RoleService) GetSystemRoles(ctx context.Context, tenantID uuid.UUID) ([]RoleDTO, error) {
	roles, err := s.roleRepo.FindSystemRoles(ctx, tenantID)
	if err != nil {
		return nil, s.internalError("Failed to find system roles", "Failed to find system roles", err)
	}

	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = *s.withPermissions(ctx, role)
	}
	return dtos, nil
}

func (s *RoleService) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.roleRepo.Count(ctx, tenantID, nil)
}

func toRoleDTO(role *identity.Role) *RoleDTO {
	permissions := make([]string, len(role.Permissions))
	for i, perm := range role.Permissions {
		permissions[i] = perm.Code
	}

	return &RoleDTO{
		ID:           role.ID,
		TenantID:     role.TenantID,
		Code:         role.Code,
		Name:         role.Name,
		Description:  role.Description,
		IsSystemRole: role.IsSystemRole,
		IsEnabled:    role.IsEnabled,
		SortOrder:    role.SortOrder,
		Permissions:  permissions,
		CreatedAt:    role.CreatedAt,
		UpdatedAt:    role.UpdatedAt,
	}
}
