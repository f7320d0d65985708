package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/indentflow/backend/internal/domain/identity"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/infrastructure/auth"
)

// AuthServiceConfig controls the lockout policy.
type AuthServiceConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
}

func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles login, token refresh, and logout. A nil
// blacklist makes Logout a client-side-only operation.
type AuthService struct {
	userRepo   identity.UserRepository
	roleRepo   identity.RoleRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// accessProfile is everything beyond the password that a session
// needs: role IDs, the union of permission codes, and machine
// assignments for machine-scoped users.
type accessProfile struct {
	permissions []string
	machineIDs  []string
}

// loadAccessProfile loads the user's roles and derives the session
// profile from them.
func (s *AuthService) loadAccessProfile(ctx context.Context, user *identity.User) (*accessProfile, error) {
	if err := s.userRepo.LoadUserRoles(ctx, user); err != nil {
		s.logger.Error("Failed to load user roles", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user roles")
	}

	permissions, err := s.collectUserPermissions(ctx, user.RoleIDs)
	if err != nil {
		s.logger.Error("Failed to collect user permissions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user permissions")
	}

	machineIDs, err := s.collectMachineAssignments(ctx, user.RoleIDs)
	if err != nil {
		s.logger.Error("Failed to collect machine assignments", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load machine assignments")
	}

	return &accessProfile{permissions: permissions, machineIDs: machineIDs}, nil
}

func (s *AuthService) userInfo(user *identity.User, profile *accessProfile) UserInfo {
	return UserInfo{
		ID:          user.ID,
		TenantID:    user.TenantID,
		Username:    user.Username,
		DisplayName: user.GetDisplayNameOrUsername(),
		Email:       user.Email,
		Phone:       user.Phone,
		Avatar:      user.Avatar,
		Permissions: profile.permissions,
		RoleIDs:     user.RoleIDs,
		MachineIDs:  profile.machineIDs,
	}
}

// mapTokenError translates JWT validation errors into domain errors.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrInvalidToken):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}

// Login authenticates a user and issues a token pair. Failed attempts
// count toward the lockout threshold.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.CanLogin() {
		return nil, s.loginDenied(user, input.Username)
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", input.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("username", input.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	profile, err := s.loadAccessProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:    user.TenantID,
		UserID:      user.ID,
		Username:    user.Username,
		RoleIDs:     user.RoleIDs,
		Permissions: profile.permissions,
		MachineIDs:  profile.machineIDs,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	// A failed update here must not cost the user their session.
	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", input.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User:                  s.userInfo(user, profile),
	}, nil
}

// loginDenied picks the most specific rejection for an account that
// cannot log in.
func (s *AuthService) loginDenied(user *identity.User, username string) error {
	switch {
	case user.IsLocked():
		s.logger.Warn("Login attempt for locked account", zap.String("username", username))
		return shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
	case user.IsDeactivated():
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", username))
		return shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	case user.IsPending():
		s.logger.Warn("Login attempt for pending account", zap.String("username", username))
		return shared.NewDomainError("ACCOUNT_PENDING", "Account is pending activation")
	default:
		return shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}
}

// RefreshToken exchanges a valid refresh token for a new pair, with
// permissions and machine assignments re-read from the database.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	s.logger.Info("Token refresh attempt")

	refreshClaims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	userID, err := uuid.Parse(refreshClaims.UserID)
	if err != nil {
		s.logger.Error("Invalid user ID in refresh token", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	profile, err := s.loadAccessProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, profile.permissions, profile.machineIDs)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented token by its JTI so the middleware
// rejects it for the rest of its lifetime. Without a blacklist the
// client simply discards its tokens.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	s.logger.Info("User logout",
		zap.String("user_id", input.UserID.String()),
		zap.String("tenant_id", input.TenantID.String()))

	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}

	ttl := s.jwtService.GetAccessTokenExpiration()
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, ttl); err != nil {
		// The token still expires on its own; do not fail the logout.
		s.logger.Error("Failed to blacklist token on logout", zap.Error(err))
	}
	return nil
}

// ForceLogout invalidates every outstanding token of the target user.
// Tokens issued before now fail the middleware's watermark check.
func (s *AuthService) ForceLogout(ctx context.Context, input ForceLogoutInput) (*ForceLogoutResult, error) {
	if s.blacklist == nil {
		return nil, shared.NewDomainError("NOT_SUPPORTED", "Token revocation is not configured")
	}

	if _, err := s.userRepo.FindByID(ctx, input.TargetUserID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}

	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, input.TargetUserID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate user tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke user sessions")
	}

	s.logger.Info("User sessions revoked",
		zap.String("target_user_id", input.TargetUserID.String()),
		zap.String("admin_user_id", input.AdminUserID.String()),
		zap.String("reason", input.Reason))

	return &ForceLogoutResult{Message: "All sessions revoked"}, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, input GetCurrentUserInput) (*CurrentUserResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	profile, err := s.loadAccessProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	return &CurrentUserResult{
		User:        s.userInfo(user, profile),
		Permissions: profile.permissions,
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update password")
	}

	s.logger.Info("User password changed", zap.String("user_id", input.UserID.String()))
	return nil
}

// collectUserPermissions gathers the union of permission codes across
// the user's enabled roles.
func (s *AuthService) collectUserPermissions(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	roles, err := s.roleRepo.FindByIDs(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	permSet := make(map[string]struct{})
	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		if err := s.roleRepo.LoadPermissions(ctx, role); err != nil {
			s.logger.Warn("Failed to load permissions for role",
				zap.String("role_id", role.ID.String()),
				zap.Error(err))
			continue
		}
		for _, perm := range role.Permissions {
			permSet[perm.Code] = struct{}{}
		}
	}

	permissions := make([]string, 0, len(permSet))
	for perm := range permSet {
		permissions = append(permissions, perm)
	}
	return permissions, nil
}

// collectMachineAssignments gathers the union of machine IDs granted
// by the user's machine-scoped roles. An empty result means the user
// is not machine-restricted.
func (s *AuthService) collectMachineAssignments(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	roles, err := s.roleRepo.FindByIDs(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	idSet := make(map[string]struct{})
	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		if err := s.roleRepo.LoadPermissionsAndDataScopes(ctx, role); err != nil {
			s.logger.Warn("Failed to load data scopes for role",
				zap.String("role_id", role.ID.String()),
				zap.Error(err))
			continue
		}
		for _, ds := range role.DataScopes {
			if ds.ScopeType != identity.DataScopeMachine {
				continue
			}
			for _, id := range ds.ScopeValues {
				idSet[id] = struct{}{}
			}
		}
	}

	if len(idSet) == 0 {
		return nil, nil
	}
	machineIDs := make([]string, 0, len(idSet))
	for id := range idSet {
		machineIDs = append(machineIDs, id)
	}
	return machineIDs, nil
}
