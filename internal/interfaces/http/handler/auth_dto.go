package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/application/identity"
)

// LoginRequest carries the credentials for a login attempt.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RefreshTokenRequest carries the refresh token to exchange.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest carries the old and new passwords.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TokenResponse is the token pair returned by login and refresh.
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthUserResponse is the authenticated user's profile as returned by
// login and /auth/me. MachineIDs lists the machines a machine-scoped
// operator may raise indents for; it is empty for unrestricted users.
type AuthUserResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
	Permissions []string  `json:"permissions"`
	RoleIDs     []string  `json:"role_ids"`
	MachineIDs  []string  `json:"machine_ids,omitempty"`
}

// toAuthUser maps the application-layer user info onto the wire shape.
func toAuthUser(u identity.UserInfo) AuthUserResponse {
	roleIDs := make([]string, len(u.RoleIDs))
	for i, rid := range u.RoleIDs {
		roleIDs[i] = rid.String()
	}
	return AuthUserResponse{
		ID:          u.ID,
		TenantID:    u.TenantID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Phone:       u.Phone,
		Avatar:      u.Avatar,
		Permissions: u.Permissions,
		RoleIDs:     roleIDs,
		MachineIDs:  u.MachineIDs,
	}
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

// RefreshTokenResponse is the body of a successful token refresh.
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

// CurrentUserResponse is the body returned by /auth/me.
type CurrentUserResponse struct {
	User        AuthUserResponse `json:"user"`
	Permissions []string         `json:"permissions"`
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	Message string `json:"message"`
}
