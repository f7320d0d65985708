package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/indentflow/backend/internal/domain/shared"
)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"
	UserStatusDeactivated UserStatus = "deactivated"
)

const bcryptCost = 12

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterPattern   = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

// User is the aggregate root for accounts. Requesters, approvers,
// purchasers and storekeepers are all Users distinguished by their
// roles.
type User struct {
	shared.TenantAggregateRoot
	Username           string
	Email              string
	Phone              string
	PasswordHash       string
	DisplayName        string
	Avatar             string
	Status             UserStatus
	DepartmentID       *uuid.UUID
	RoleIDs            []uuid.UUID // loaded by the repository from the link table
	LastLoginAt        *time.Time
	LastLoginIP        string
	FailedAttempts     int
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool
	Notes              string
}

// UserRole links a user to a role within a tenant.
type UserRole struct {
	UserID    uuid.UUID
	RoleID    uuid.UUID
	TenantID  uuid.UUID
	CreatedAt time.Time
}

// NewUser creates a pending account. Usernames are lowercased.
func NewUser(tenantID uuid.UUID, username, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Username:            strings.ToLower(strings.TrimSpace(username)),
		PasswordHash:        hash,
		Status:              UserStatusPending,
		RoleIDs:             make([]uuid.UUID, 0),
		PasswordChangedAt:   &now,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// NewActiveUser creates an account that can log in immediately.
func NewActiveUser(tenantID uuid.UUID, username, password string) (*User, error) {
	user, err := NewUser(tenantID, username, password)
	if err != nil {
		return nil, err
	}
	user.Status = UserStatusActive
	return user, nil
}

// touch bumps UpdatedAt and the optimistic-lock version.
func (u *User) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

func (u *User) SetEmail(email string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		email = strings.ToLower(strings.TrimSpace(email))
	}
	u.Email = email
	u.touch()
	return nil
}

func (u *User) SetPhone(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	u.Phone = strings.TrimSpace(phone)
	u.touch()
	return nil
}

func (u *User) SetDisplayName(displayName string) error {
	if displayName != "" && len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.touch()
	return nil
}

func (u *User) SetAvatar(avatar string) error {
	if avatar != "" && len(avatar) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}
	u.Avatar = avatar
	u.touch()
	return nil
}

func (u *User) SetNotes(notes string) {
	u.Notes = notes
	u.touch()
}

func (u *User) SetDepartment(departmentID *uuid.UUID) {
	u.DepartmentID = departmentID
	u.touch()
}

// ChangePassword verifies the current password before setting a new
// one.
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword replaces the password without checking the old one.
// Used for admin resets.
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.MustChangePassword = false
	u.touch()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))
	return nil
}

// ForcePasswordChange requires a new password on the next login.
func (u *User) ForcePasswordChange() {
	u.MustChangePassword = true
	u.touch()
}

func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) AssignRole(roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
	}
	if u.HasRole(roleID) {
		return shared.NewDomainError("ROLE_ALREADY_ASSIGNED", "User already has this role")
	}

	u.RoleIDs = append(u.RoleIDs, roleID)
	u.touch()

	u.AddDomainEvent(NewUserRoleAssignedEvent(u, roleID))
	return nil
}

func (u *User) RemoveRole(roleID uuid.UUID) error {
	if roleID == uuid.Nil {
		return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
	}

	kept := u.RoleIDs[:0:0]
	for _, rid := range u.RoleIDs {
		if rid != roleID {
			kept = append(kept, rid)
		}
	}
	if len(kept) == len(u.RoleIDs) {
		return shared.NewDomainError("ROLE_NOT_ASSIGNED", "User does not have this role")
	}

	u.RoleIDs = kept
	u.touch()

	u.AddDomainEvent(NewUserRoleRemovedEvent(u, roleID))
	return nil
}

// SetRoles replaces the role set, deduplicating while it goes.
func (u *User) SetRoles(roleIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(roleIDs))
	unique := make([]uuid.UUID, 0, len(roleIDs))
	for _, rid := range roleIDs {
		if rid == uuid.Nil {
			return shared.NewDomainError("INVALID_ROLE_ID", "Role ID cannot be empty")
		}
		if !seen[rid] {
			seen[rid] = true
			unique = append(unique, rid)
		}
	}

	u.RoleIDs = unique
	u.touch()
	return nil
}

func (u *User) HasRole(roleID uuid.UUID) bool {
	for _, rid := range u.RoleIDs {
		if rid == roleID {
			return true
		}
	}
	return false
}

// Activate also clears any lockout state.
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	old := u.Status
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, UserStatusActive))
	return nil
}

func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	old := u.Status
	u.Status = UserStatusDeactivated
	u.touch()

	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, UserStatusDeactivated))
	return nil
}

// Lock blocks logins. A zero duration locks indefinitely.
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Cannot lock a deactivated user")
	}

	old := u.Status
	u.Status = UserStatusLocked
	if duration > 0 {
		until := time.Now().Add(duration)
		u.LockedUntil = &until
	}
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, old, UserStatusLocked))
	return nil
}

func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.touch()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, UserStatusLocked, UserStatusActive))
	return nil
}

// RecordLoginSuccess resets the failure counter.
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.touch()
}

// RecordLoginFailure counts the attempt and locks the account once
// maxAttempts is reached. Reports whether the account got locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.touch()

	if u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}
	return false
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked treats an expired lockout as unlocked even though the
// status still says locked.
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}
	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}
	return true
}

func (u *User) IsDeactivated() bool {
	return u.Status == UserStatusDeactivated
}

func (u *User) IsPending() bool {
	return u.Status == UserStatusPending
}

// CanLogin reports whether the account is in a state that permits
// authentication.
func (u *User) CanLogin() bool {
	switch u.Status {
	case UserStatusDeactivated, UserStatusPending:
		return false
	}
	return !u.IsLocked()
}

func (u *User) GetDisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	case len(username) < 3:
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	case len(username) > 100:
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 100 characters")
	case !usernamePattern.MatchString(username):
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	switch {
	case password == "":
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	case len(password) < 8:
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	case len(password) > 128:
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	case !letterPattern.MatchString(password) || !digitPattern.MatchString(password):
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
