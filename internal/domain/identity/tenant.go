package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// TenantStatus is the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusInactive  TenantStatus = "inactive"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusTrial     TenantStatus = "trial"
)

// TenantPlan is the subscription tier of a tenant.
type TenantPlan string

const (
	TenantPlanFree       TenantPlan = "free"
	TenantPlanBasic      TenantPlan = "basic"
	TenantPlanPro        TenantPlan = "pro"
	TenantPlanEnterprise TenantPlan = "enterprise"
)

var tenantCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// planLimits maps each plan to its resource ceilings.
var planLimits = map[TenantPlan]struct {
	users, machines, materials int
}{
	TenantPlanFree:       {5, 3, 1000},
	TenantPlanBasic:      {10, 5, 5000},
	TenantPlanPro:        {50, 20, 50000},
	TenantPlanEnterprise: {9999, 9999, 999999},
}

// TenantConfig holds per-tenant limits and locale settings. Features
// and Settings hold JSON objects.
type TenantConfig struct {
	MaxUsers     int    `json:"max_users"`
	MaxMachines  int    `json:"max_machines"`
	MaxMaterials int    `json:"max_materials"`
	Features     string `json:"features"`
	Settings     string `json:"settings"`
	Currency     string `json:"currency"`
	Timezone     string `json:"timezone"`
	Locale       string `json:"locale"`
}

// DefaultTenantConfig is the free-plan configuration a new tenant
// starts with.
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		MaxUsers:     planLimits[TenantPlanFree].users,
		MaxMachines:  planLimits[TenantPlanFree].machines,
		MaxMaterials: planLimits[TenantPlanFree].materials,
		Features:     "{}",
		Settings:     "{}",
		Currency:     "INR",
		Timezone:     "Asia/Kolkata",
		Locale:       "en-IN",
	}
}

// Tenant is a plant or organization on the platform. Every other
// aggregate is scoped to exactly one tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Code         string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string       `gorm:"type:varchar(200);not null"`
	ShortName    string       `gorm:"type:varchar(100)"`
	Status       TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Plan         TenantPlan   `gorm:"type:varchar(20);not null;default:'free'"`
	ContactName  string       `gorm:"type:varchar(100)"`
	ContactPhone string       `gorm:"type:varchar(50)"`
	ContactEmail string       `gorm:"type:varchar(200)"`
	Address      string       `gorm:"type:text"`
	LogoURL      string       `gorm:"type:varchar(500)"`
	Domain       string       `gorm:"type:varchar(200);uniqueIndex"`
	ExpiresAt    *time.Time   `gorm:"index"`
	TrialEndsAt  *time.Time
	Config       TenantConfig `gorm:"embedded;embeddedPrefix:config_"`
	Notes        string       `gorm:"type:text"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates an active free-plan tenant. Codes are uppercased.
func NewTenant(code, name string) (*Tenant, error) {
	if err := validateTenantCode(code); err != nil {
		return nil, err
	}
	if err := validateTenantName(name); err != nil {
		return nil, err
	}

	tenant := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            TenantStatusActive,
		Plan:              TenantPlanFree,
		Config:            DefaultTenantConfig(),
	}
	tenant.AddDomainEvent(NewTenantCreatedEvent(tenant))
	return tenant, nil
}

// NewTrialTenant creates a tenant whose trial ends trialDays from now.
func NewTrialTenant(code, name string, trialDays int) (*Tenant, error) {
	if trialDays <= 0 {
		return nil, shared.NewDomainError("INVALID_TRIAL_DAYS", "Trial days must be positive")
	}

	tenant, err := NewTenant(code, name)
	if err != nil {
		return nil, err
	}

	tenant.Status = TenantStatusTrial
	trialEnds := time.Now().AddDate(0, 0, trialDays)
	tenant.TrialEndsAt = &trialEnds
	return tenant, nil
}

// touch bumps UpdatedAt and the optimistic-lock version.
func (t *Tenant) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

func (t *Tenant) Update(name, shortName string) error {
	if err := validateTenantName(name); err != nil {
		return err
	}
	if shortName != "" && len(shortName) > 100 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Short name cannot exceed 100 characters")
	}

	t.Name = name
	t.ShortName = shortName
	t.touch()

	t.AddDomainEvent(NewTenantUpdatedEvent(t))
	return nil
}

func (t *Tenant) SetContact(contactName, phone, email string) error {
	switch {
	case contactName != "" && len(contactName) > 100:
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	case phone != "" && len(phone) > 50:
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	case email != "" && len(email) > 200:
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	t.ContactName = contactName
	t.ContactPhone = phone
	t.ContactEmail = email
	t.touch()
	return nil
}

func (t *Tenant) SetAddress(address string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	t.Address = address
	t.touch()
	return nil
}

func (t *Tenant) SetLogoURL(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Logo URL cannot exceed 500 characters")
	}
	t.LogoURL = url
	t.touch()
	return nil
}

// SetDomain lowercases the custom subdomain; an empty value clears it.
func (t *Tenant) SetDomain(domain string) error {
	if domain != "" {
		if len(domain) > 200 {
			return shared.NewDomainError("INVALID_DOMAIN", "Domain cannot exceed 200 characters")
		}
		domain = strings.ToLower(strings.TrimSpace(domain))
	}
	t.Domain = domain
	t.touch()
	return nil
}

// SetPlan moves the tenant to a new plan, resizing its limits.
// Upgrading off the free plan ends a running trial.
func (t *Tenant) SetPlan(plan TenantPlan) error {
	if err := validateTenantPlan(plan); err != nil {
		return err
	}

	oldPlan := t.Plan
	t.Plan = plan
	t.touch()

	if t.Status == TenantStatusTrial && plan != TenantPlanFree {
		t.Status = TenantStatusActive
		t.TrialEndsAt = nil
	}

	if limits, ok := planLimits[plan]; ok {
		t.Config.MaxUsers = limits.users
		t.Config.MaxMachines = limits.machines
		t.Config.MaxMaterials = limits.materials
	}

	t.AddDomainEvent(NewTenantPlanChangedEvent(t, oldPlan, plan))
	return nil
}

func (t *Tenant) SetExpiration(expiresAt time.Time) {
	t.ExpiresAt = &expiresAt
	t.touch()
}

func (t *Tenant) ClearExpiration() {
	t.ExpiresAt = nil
	t.touch()
}

func (t *Tenant) UpdateConfig(config TenantConfig) error {
	switch {
	case config.MaxUsers < 0:
		return shared.NewDomainError("INVALID_MAX_USERS", "Max users cannot be negative")
	case config.MaxMachines < 0:
		return shared.NewDomainError("INVALID_MAX_MACHINES", "Max machines cannot be negative")
	case config.MaxMaterials < 0:
		return shared.NewDomainError("INVALID_MAX_MATERIALS", "Max materials cannot be negative")
	}

	t.Config = config
	t.touch()
	return nil
}

func (t *Tenant) SetNotes(notes string) {
	t.Notes = notes
	t.touch()
}

func (t *Tenant) Activate() error {
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}
	t.setStatus(TenantStatusActive)
	return nil
}

func (t *Tenant) Deactivate() error {
	if t.Status == TenantStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Tenant is already inactive")
	}
	t.setStatus(TenantStatusInactive)
	return nil
}

// Suspend blocks all access, typically for billing problems.
func (t *Tenant) Suspend() error {
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}
	t.setStatus(TenantStatusSuspended)
	return nil
}

func (t *Tenant) setStatus(status TenantStatus) {
	old := t.Status
	t.Status = status
	t.touch()
	t.AddDomainEvent(NewTenantStatusChangedEvent(t, old, status))
}

// ConvertFromTrial upgrades a trial tenant to a paid plan.
func (t *Tenant) ConvertFromTrial(plan TenantPlan) error {
	if t.Status != TenantStatusTrial {
		return shared.NewDomainError("NOT_TRIAL", "Tenant is not in trial status")
	}
	if plan == TenantPlanFree {
		return shared.NewDomainError("INVALID_PLAN", "Cannot convert to free plan from trial")
	}
	return t.SetPlan(plan)
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

func (t *Tenant) IsInactive() bool {
	return t.Status == TenantStatusInactive
}

func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}

func (t *Tenant) IsTrial() bool {
	return t.Status == TenantStatusTrial
}

// IsTrialExpired reports whether a running trial is past its end
// date. A trial with no end date never expires.
func (t *Tenant) IsTrialExpired() bool {
	if t.Status != TenantStatusTrial || t.TrialEndsAt == nil {
		return false
	}
	return time.Now().After(*t.TrialEndsAt)
}

func (t *Tenant) IsSubscriptionExpired() bool {
	return t.ExpiresAt != nil && time.Now().After(*t.ExpiresAt)
}

func (t *Tenant) CanAddUser(currentUserCount int) bool {
	return currentUserCount < t.Config.MaxUsers
}

func (t *Tenant) CanAddMachine(currentMachineCount int) bool {
	return currentMachineCount < t.Config.MaxMachines
}

func (t *Tenant) CanAddMaterial(currentMaterialCount int) bool {
	return currentMaterialCount < t.Config.MaxMaterials
}

func (t *Tenant) GetTenantID() uuid.UUID {
	return t.ID
}

func validateTenantCode(code string) error {
	switch {
	case code == "":
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot be empty")
	case len(code) > 50:
		return shared.NewDomainError("INVALID_CODE", "Tenant code cannot exceed 50 characters")
	case !tenantCodePattern.MatchString(code):
		return shared.NewDomainError("INVALID_CODE", "Tenant code can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validateTenantName(name string) error {
	switch {
	case name == "":
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	case len(name) > 200:
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}
	return nil
}

func validateTenantPlan(plan TenantPlan) error {
	if _, ok := planLimits[plan]; !ok {
		return shared.NewDomainError("INVALID_PLAN", "Invalid tenant plan")
	}
	return nil
}
