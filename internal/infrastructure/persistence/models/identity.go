package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/identity"
)

// UserModel persists the User aggregate. Role assignments live in
// user_roles and are loaded separately by the repository.
type UserModel struct {
	TenantAggregateModel
	Username           string              `gorm:"type:varchar(100);not null"`
	Email              string              `gorm:"type:varchar(200)"`
	Phone              string              `gorm:"type:varchar(50)"`
	PasswordHash       string              `gorm:"type:varchar(255);not null"`
	DisplayName        string              `gorm:"type:varchar(200)"`
	Avatar             string              `gorm:"type:varchar(500)"`
	Status             identity.UserStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	DepartmentID       *uuid.UUID          `gorm:"type:uuid;index"`
	LastLoginAt        *time.Time          `gorm:"index"`
	LastLoginIP        string              `gorm:"type:varchar(45)"`
	FailedAttempts     int                 `gorm:"not null;default:0"`
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool   `gorm:"not null;default:false"`
	Notes              string `gorm:"type:text"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Username:            m.Username,
		Email:               m.Email,
		Phone:               m.Phone,
		PasswordHash:        m.PasswordHash,
		DisplayName:         m.DisplayName,
		Avatar:              m.Avatar,
		Status:              m.Status,
		DepartmentID:        m.DepartmentID,
		RoleIDs:             make([]uuid.UUID, 0),
		LastLoginAt:         m.LastLoginAt,
		LastLoginIP:         m.LastLoginIP,
		FailedAttempts:      m.FailedAttempts,
		LockedUntil:         m.LockedUntil,
		PasswordChangedAt:   m.PasswordChangedAt,
		MustChangePassword:  m.MustChangePassword,
		Notes:               m.Notes,
	}
}

func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.DisplayName = u.DisplayName
	m.Avatar = u.Avatar
	m.Status = u.Status
	m.DepartmentID = u.DepartmentID
	m.LastLoginAt = u.LastLoginAt
	m.LastLoginIP = u.LastLoginIP
	m.FailedAttempts = u.FailedAttempts
	m.LockedUntil = u.LockedUntil
	m.PasswordChangedAt = u.PasswordChangedAt
	m.MustChangePassword = u.MustChangePassword
	m.Notes = u.Notes
}

func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserRoleModel persists a user-to-role assignment.
type UserRoleModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (UserRoleModel) TableName() string { return "user_roles" }

func (m *UserRoleModel) ToDomain() identity.UserRole {
	return identity.UserRole{
		UserID:    m.UserID,
		RoleID:    m.RoleID,
		TenantID:  m.TenantID,
		CreatedAt: m.CreatedAt,
	}
}

func (m *UserRoleModel) FromDomain(ur identity.UserRole) {
	m.UserID = ur.UserID
	m.RoleID = ur.RoleID
	m.TenantID = ur.TenantID
	m.CreatedAt = ur.CreatedAt
}

// TenantModel persists the Tenant aggregate with its config flattened
// into config_-prefixed columns.
type TenantModel struct {
	AggregateModel
	Code         string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string                `gorm:"type:varchar(200);not null"`
	ShortName    string                `gorm:"type:varchar(100)"`
	Status       identity.TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Plan         identity.TenantPlan   `gorm:"type:varchar(20);not null;default:'free'"`
	ContactName  string                `gorm:"type:varchar(100)"`
	ContactPhone string                `gorm:"type:varchar(50)"`
	ContactEmail string                `gorm:"type:varchar(200)"`
	Address      string                `gorm:"type:text"`
	LogoURL      string                `gorm:"type:varchar(500)"`
	Domain       string                `gorm:"type:varchar(200);uniqueIndex"`
	ExpiresAt    *time.Time            `gorm:"index"`
	TrialEndsAt  *time.Time

	ConfigMaxUsers     int    `gorm:"column:config_max_users;not null;default:5"`
	ConfigMaxMachines  int    `gorm:"column:config_max_machines;not null;default:3"`
	ConfigMaxMaterials int    `gorm:"column:config_max_materials;not null;default:1000"`
	ConfigFeatures     string `gorm:"column:config_features;type:jsonb;default:'{}'"`
	ConfigSettings     string `gorm:"column:config_settings;type:jsonb;default:'{}'"`
	ConfigCurrency     string `gorm:"column:config_currency;type:varchar(10);default:'INR'"`
	ConfigTimezone     string `gorm:"column:config_timezone;type:varchar(50);default:'Asia/Kolkata'"`
	ConfigLocale       string `gorm:"column:config_locale;type:varchar(20);default:'en-IN'"`
	Notes              string `gorm:"type:text"`
}

func (TenantModel) TableName() string { return "tenants" }

func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		ShortName:         m.ShortName,
		Status:            m.Status,
		Plan:              m.Plan,
		ContactName:       m.ContactName,
		ContactPhone:      m.ContactPhone,
		ContactEmail:      m.ContactEmail,
		Address:           m.Address,
		LogoURL:           m.LogoURL,
		Domain:            m.Domain,
		ExpiresAt:         m.ExpiresAt,
		TrialEndsAt:       m.TrialEndsAt,
		Config: identity.TenantConfig{
			MaxUsers:     m.ConfigMaxUsers,
			MaxMachines:  m.ConfigMaxMachines,
			MaxMaterials: m.ConfigMaxMaterials,
			Features:     m.ConfigFeatures,
			Settings:     m.ConfigSettings,
			Currency:     m.ConfigCurrency,
			Timezone:     m.ConfigTimezone,
			Locale:       m.ConfigLocale,
		},
		Notes: m.Notes,
	}
}

func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Code = t.Code
	m.Name = t.Name
	m.ShortName = t.ShortName
	m.Status = t.Status
	m.Plan = t.Plan
	m.ContactName = t.ContactName
	m.ContactPhone = t.ContactPhone
	m.ContactEmail = t.ContactEmail
	m.Address = t.Address
	m.LogoURL = t.LogoURL
	m.Domain = t.Domain
	m.ExpiresAt = t.ExpiresAt
	m.TrialEndsAt = t.TrialEndsAt
	m.ConfigMaxUsers = t.Config.MaxUsers
	m.ConfigMaxMachines = t.Config.MaxMachines
	m.ConfigMaxMaterials = t.Config.MaxMaterials
	m.ConfigFeatures = t.Config.Features
	m.ConfigSettings = t.Config.Settings
	m.ConfigCurrency = t.Config.Currency
	m.ConfigTimezone = t.Config.Timezone
	m.ConfigLocale = t.Config.Locale
	m.Notes = t.Notes
}

func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

