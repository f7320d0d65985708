package identity

import (
	"time"

	"github.com/google/uuid"
)

// Inputs and results for the authentication service. Handlers map
// these to and from their wire DTOs; nothing here carries binding or
// json tags.

// LoginInput carries the credentials presented at login. IP is kept
// for the last-login audit trail.
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// LoginResult is the token pair plus the signed-in user's profile.
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo is the profile slice of a user exposed after login and on
// the current-user endpoint.
type UserInfo struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Username    string
	DisplayName string
	Email       string
	Phone       string
	Avatar      string
	Permissions []string
	RoleIDs     []uuid.UUID
	MachineIDs  []string
}

// RefreshTokenInput identifies the caller so permissions can be
// re-read from the role store when the pair is reissued.
type RefreshTokenInput struct {
	RefreshToken string
	UserID       uuid.UUID
	TenantID     uuid.UUID
}

// RefreshTokenResult is the reissued token pair.
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput names the session being ended. TokenJTI, when present,
// lets the service revoke exactly that token.
type LogoutInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	TokenJTI string
}

// ChangePasswordInput carries a self-service password change.
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput identifies the caller of the current-user
// endpoint.
type GetCurrentUserInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

// CurrentUserResult is the caller's profile with effective
// permissions.
type CurrentUserResult struct {
	User        UserInfo
	Permissions []string
}

// ForceLogoutInput is an admin action that invalidates every session
// of the target user. Reason lands in the audit log.
type ForceLogoutInput struct {
	AdminUserID  uuid.UUID
	TargetUserID uuid.UUID
	TenantID     uuid.UUID
	Reason       string
}

// ForceLogoutResult acknowledges the force logout.
type ForceLogoutResult struct {
	Message string
}
