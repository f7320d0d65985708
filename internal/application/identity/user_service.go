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

// UserService manages accounts and their role assignments.
type UserService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

func NewUserService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// CreateUserInput contains input for creating a user.
type CreateUserInput struct {
	TenantID    uuid.UUID
	Username    string
	Password    string
	Email       string
	Phone       string
	DisplayName string
	Notes       string
	RoleIDs     []uuid.UUID
	CreatedBy   *uuid.UUID
}

// UpdateUserInput carries partial updates; nil fields are left alone.
type UpdateUserInput struct {
	ID          uuid.UUID
	Email       *string
	Phone       *string
	DisplayName *string
	Notes       *string
}

// UserDTO is the API shape of a user.
type UserDTO struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    uuid.UUID   `json:"tenant_id"`
	Username    string      `json:"username"`
	Email       string      `json:"email,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	DisplayName string      `json:"display_name"`
	Avatar      string      `json:"avatar,omitempty"`
	Status      string      `json:"status"`
	RoleIDs     []uuid.UUID `json:"role_ids"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// UserListResult is one page of users.
type UserListResult struct {
	Users      []UserDTO `json:"users"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// internalError logs the underlying cause and hands the caller an
// opaque INTERNAL_ERROR, keeping repository details out of responses.
func (s *UserService) internalError(logMsg, userMsg string, err error) error {
	s.logger.Error(logMsg, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", userMsg)
}

// loadUser fetches a user and maps repository errors to domain
// errors.
func (s *UserService) loadUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, s.internalError("Failed to find user", "Failed to find user", err)
	}
	return user, nil
}

// validateRoles checks that every role ID refers to an existing role.
func (s *UserService) validateRoles(ctx context.Context, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		exists, err := s.roleRepo.ExistsByID(ctx, roleID)
		if err != nil {
			return s.internalError("Failed to check role existence", "Failed to validate roles", err)
		}
		if !exists {
			return shared.NewDomainError("ROLE_NOT_FOUND", "Role not found: "+roleID.String())
		}
	}
	return nil
}

// withRoles loads the user's roles and converts to a DTO. Role-load
// failures are logged but do not fail the request.
func (s *UserService) withRoles(ctx context.Context, user *identity.User) *UserDTO {
	if err := s.userRepo.LoadUserRoles(ctx, user); err != nil {
		s.logger.Error("Failed to load user roles",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
	return toUserDTO(user)
}

// Create registers a new account. The account is active immediately.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	s.logger.Info("Creating new user",
		zap.String("username", input.Username),
		zap.String("tenant_id", input.TenantID.String()))

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, s.internalError("Failed to check username existence", "Failed to check username availability", err)
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	if input.Email != "" {
		taken, err := s.userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, s.internalError("Failed to check email existence", "Failed to check email availability", err)
		}
		if taken {
			return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
		}
	}

	if err := s.validateRoles(ctx, input.RoleIDs); err != nil {
		return nil, err
	}

	user, err := identity.NewActiveUser(input.TenantID, input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	user.CreatedBy = input.CreatedBy

	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		if err := user.SetPhone(input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		user.SetNotes(input.Notes)
	}

	for _, roleID := range input.RoleIDs {
		if err := user.AssignRole(roleID); err != nil {
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) && domainErr.Code == "ROLE_ALREADY_ASSIGNED" {
				continue
			}
			return nil, err
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, s.internalError("Failed to create user", "Failed to create user", err)
	}

	if len(user.RoleIDs) > 0 {
		if err := s.userRepo.SaveUserRoles(ctx, user); err != nil {
			// Roll the account back so a retry does not hit the
			// username uniqueness check.
			_ = s.userRepo.Delete(ctx, user.ID)
			return nil, s.internalError("Failed to save user roles", "Failed to assign roles to user", err)
		}
	}

	s.logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return toUserDTO(user), nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRoles(ctx, user), nil
}

// List pages users matching the filter, with roles loaded.
func (s *UserService) List(ctx context.Context, filter identity.UserFilter) (*UserListResult, error) {
	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, s.internalError("Failed to list users", "Failed to list users", err)
	}

	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = *s.withRoles(ctx, user)
	}

	pageSize := filter.Limit()
	return &UserListResult{
		Users:      dtos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: (int(total) + pageSize - 1) / pageSize,
	}, nil
}

// Update applies the non-nil fields of input to the user.
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if *input.Email != "" && *input.Email != user.Email {
			taken, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
			if err != nil {
				return nil, s.internalError("Failed to check email existence", "Failed to check email availability", err)
			}
			if taken {
				return nil, shared.NewDomainError("EMAIL_EXISTS", "Email already exists")
			}
		}
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != nil {
		if err := user.SetPhone(*input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.Notes != nil {
		user.SetNotes(*input.Notes)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.internalError("Failed to update user", "Failed to update user", err)
	}

	s.logger.Info("User updated", zap.String("user_id", input.ID.String()))
	return s.withRoles(ctx, user), nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return s.internalError("Failed to delete user", "Failed to delete user", err)
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, id, "activate user", (*identity.User).Activate)
}

func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, id, "deactivate user", (*identity.User).Deactivate)
}

func (s *UserService) Lock(ctx context.Context, id uuid.UUID, duration time.Duration) (*UserDTO, error) {
	return s.transition(ctx, id, "lock user", func(u *identity.User) error {
		return u.Lock(duration)
	})
}

func (s *UserService) Unlock(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	return s.transition(ctx, id, "unlock user", (*identity.User).Unlock)
}

// transition loads, mutates, and saves in one step for the lifecycle
// operations.
func (s *UserService) transition(ctx context.Context, id uuid.UUID, action string, mutate func(*identity.User) error) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.internalError("Failed to "+action, "Failed to "+action, err)
	}

	s.logger.Info("User status changed",
		zap.String("action", action),
		zap.String("user_id", id.String()))
	return s.withRoles(ctx, user), nil
}

// ResetPassword sets a new password and forces a change on the next
// login. Admin action, no current-password check.
func (s *UserService) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	user.ForcePasswordChange()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return s.internalError("Failed to reset password", "Failed to reset password", err)
	}

	s.logger.Info("User password reset", zap.String("user_id", userID.String()))
	return nil
}

// AssignRoles replaces the user's role set.
func (s *UserService) AssignRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.validateRoles(ctx, roleIDs); err != nil {
		return nil, err
	}
	if err := user.SetRoles(roleIDs); err != nil {
		return nil, err
	}

	if err := s.userRepo.SaveUserRoles(ctx, user); err != nil {
		return nil, s.internalError("Failed to save user roles", "Failed to assign roles", err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.internalError("Failed to update user", "Failed to update user", err)
	}

	s.logger.Info("User roles assigned",
		zap.String("user_id", userID.String()),
		zap.Int("role_count", len(roleIDs)))
	return toUserDTO(user), nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

func toUserDTO(user *identity.User) *UserDTO {
	return &UserDTO{
		ID:          user.ID,
		TenantID:    user.TenantID,
		Username:    user.Username,
		Email:       user.Email,
		Phone:       user.Phone,
		DisplayName: user.GetDisplayNameOrUsername(),
		Avatar:      user.Avatar,
		Status:      string(user.Status),
		RoleIDs:     user.RoleIDs,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
