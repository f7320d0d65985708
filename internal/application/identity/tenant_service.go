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

// TenantService manages the plants (tenants) that run on the platform.
type TenantService struct {
	tenantRepo identity.TenantRepository
	logger     *zap.Logger
}

func NewTenantService(tenantRepo identity.TenantRepository, logger *zap.Logger) *TenantService {
	return &TenantService{tenantRepo: tenantRepo, logger: logger}
}

// CreateTenantInput contains input for creating a tenant.
type CreateTenantInput struct {
	Code         string
	Name         string
	ShortName    string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Address      string
	LogoURL      string
	Domain       string
	Plan         string
	Notes        string
	TrialDays    int // > 0 creates a trial tenant
}

// UpdateTenantInput carries partial updates; nil fields are left alone.
type UpdateTenantInput struct {
	ID           uuid.UUID
	Name         *string
	ShortName    *string
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	Address      *string
	LogoURL      *string
	Domain       *string
	Notes        *string
}

// TenantConfigInput carries partial config updates.
type TenantConfigInput struct {
	MaxUsers     *int
	MaxMachines  *int
	MaxMaterials *int
	Currency     *string
	Timezone     *string
	Locale       *string
}

// TenantDTO is the API shape of a tenant.
type TenantDTO struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	ShortName    string          `json:"short_name,omitempty"`
	Status       string          `json:"status"`
	Plan         string          `json:"plan"`
	ContactName  string          `json:"contact_name,omitempty"`
	ContactPhone string          `json:"contact_phone,omitempty"`
	ContactEmail string          `json:"contact_email,omitempty"`
	Address      string          `json:"address,omitempty"`
	LogoURL      string          `json:"logo_url,omitempty"`
	Domain       string          `json:"domain,omitempty"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	TrialEndsAt  *time.Time      `json:"trial_ends_at,omitempty"`
	Config       TenantConfigDTO `json:"config"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TenantConfigDTO is the API shape of a tenant's limits and locale.
type TenantConfigDTO struct {
	MaxUsers     int    `json:"max_users"`
	MaxMachines  int    `json:"max_machines"`
	MaxMaterials int    `json:"max_materials"`
	Currency     string `json:"currency"`
	Timezone     string `json:"timezone"`
	Locale       string `json:"locale"`
}

// TenantFilter selects and pages tenant listings.
type TenantFilter struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Keyword  string
	Status   string
	Plan     string
}

// ToSharedFilter clamps paging and maps to the repository filter.
func (f TenantFilter) ToSharedFilter() shared.Filter {
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return shared.Filter{
		Page:     max(f.Page, 1),
		PageSize: min(pageSize, 100),
		OrderBy:  f.SortBy,
		OrderDir: f.SortDir,
		Search:   f.Keyword,
	}
}

// TenantListResult is one page of tenants.
type TenantListResult struct {
	Tenants    []TenantDTO `json:"tenants"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// TenantStatsDTO counts tenants per lifecycle status.
type TenantStatsDTO struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Trial     int64 `json:"trial"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
}

// internalError logs the underlying cause and hands the caller an
// opaque INTERNAL_ERROR.
func (s *TenantService) internalError(logMsg, userMsg string, err error) error {
	s.logger.Error(logMsg, zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", userMsg)
}

// load fetches a tenant and maps repository errors to domain errors.
func (s *TenantService) load(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TENANT_NOT_FOUND", "Tenant not found")
		}
		return nil, s.internalError("Failed to find tenant", "Failed to find tenant", err)
	}
	return tenant, nil
}

// save persists the tenant, wrapping failures with a uniform message.
func (s *TenantService) save(ctx context.Context, tenant *identity.Tenant, action string) error {
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return s.internalError("Failed to "+action, "Failed to "+action, err)
	}
	return nil
}

// Create registers a new tenant, enforcing code and domain uniqueness.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	s.logger.Info("Creating new tenant",
		zap.String("code", input.Code),
		zap.String("name", input.Name))

	exists, err := s.tenantRepo.ExistsByCode(ctx, input.Code)
	if err != nil {
		return nil, s.internalError("Failed to check tenant code existence", "Failed to check code availability", err)
	}
	if exists {
		return nil, shared.NewDomainError("CODE_EXISTS", "Tenant code already exists")
	}

	if input.Domain != "" {
		taken, err := s.tenantRepo.ExistsByDomain(ctx, input.Domain)
		if err != nil {
			return nil, s.internalError("Failed to check domain existence", "Failed to check domain availability", err)
		}
		if taken {
			return nil, shared.NewDomainError("DOMAIN_EXISTS", "Domain already exists")
		}
	}

	var tenant *identity.Tenant
	if input.TrialDays > 0 {
		tenant, err = identity.NewTrialTenant(input.Code, input.Name, input.TrialDays)
	} else {
		tenant, err = identity.NewTenant(input.Code, input.Name)
	}
	if err != nil {
		return nil, err
	}

	if input.ShortName != "" {
		tenant.ShortName = input.ShortName
	}
	if input.ContactName != "" || input.ContactPhone != "" || input.ContactEmail != "" {
		if err := tenant.SetContact(input.ContactName, input.ContactPhone, input.ContactEmail); err != nil {
			return nil, err
		}
	}
	if input.Address != "" {
		if err := tenant.SetAddress(input.Address); err != nil {
			return nil, err
		}
	}
	if input.LogoURL != "" {
		if err := tenant.SetLogoURL(input.LogoURL); err != nil {
			return nil, err
		}
	}
	if input.Domain != "" {
		if err := tenant.SetDomain(input.Domain); err != nil {
			return nil, err
		}
	}
	if input.Plan != "" {
		if err := tenant.SetPlan(identity.TenantPlan(input.Plan)); err != nil {
			return nil, err
		}
	}
	if input.Notes != "" {
		tenant.SetNotes(input.Notes)
	}

	if err := s.save(ctx, tenant, "create tenant"); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created successfully",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code))
	return toTenantDTO(tenant), nil
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

func (s *TenantService) GetByCode(ctx context.Context, code string) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TENANT_NOT_FOUND", "Tenant not found")
		}
		return nil, s.internalError("Failed to find tenant by code", "Failed to find tenant", err)
	}
	return toTenantDTO(tenant), nil
}

// List pages tenants, optionally narrowed to one status or plan.
func (s *TenantService) List(ctx context.Context, filter TenantFilter) (*TenantListResult, error) {
	sharedFilter := filter.ToSharedFilter()

	var (
		tenants []identity.Tenant
		total   int64
		err     error
	)
	switch {
	case filter.Status != "":
		status := identity.TenantStatus(filter.Status)
		if tenants, err = s.tenantRepo.FindByStatus(ctx, status, sharedFilter); err == nil {
			total, err = s.tenantRepo.CountByStatus(ctx, status)
		}
	case filter.Plan != "":
		plan := identity.TenantPlan(filter.Plan)
		if tenants, err = s.tenantRepo.FindByPlan(ctx, plan, sharedFilter); err == nil {
			total, err = s.tenantRepo.CountByPlan(ctx, plan)
		}
	default:
		if tenants, err = s.tenantRepo.FindAll(ctx, sharedFilter); err == nil {
			total, err = s.tenantRepo.Count(ctx, sharedFilter)
		}
	}
	if err != nil {
		return nil, s.internalError("Failed to list tenants", "Failed to list tenants", err)
	}

	dtos := make([]TenantDTO, len(tenants))
	for i := range tenants {
		dtos[i] = *toTenantDTO(&tenants[i])
	}
	pageSize := sharedFilter.PageSize
	return &TenantListResult{
		Tenants:    dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   pageSize,
		TotalPages: (int(total) + pageSize - 1) / pageSize,
	}, nil
}

// Update applies the non-nil fields of input to the tenant.
func (s *TenantService) Update(ctx context.Context, input UpdateTenantInput) (*TenantDTO, error) {
	tenant, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil || input.ShortName != nil {
		name, shortName := tenant.Name, tenant.ShortName
		if input.Name != nil {
			name = *input.Name
		}
		if input.ShortName != nil {
			shortName = *input.ShortName
		}
		if err := tenant.Update(name, shortName); err != nil {
			return nil, err
		}
	}

	if input.ContactName != nil || input.ContactPhone != nil || input.ContactEmail != nil {
		contactName, contactPhone, contactEmail := tenant.ContactName, tenant.ContactPhone, tenant.ContactEmail
		if input.ContactName != nil {
			contactName = *input.ContactName
		}
		if input.ContactPhone != nil {
			contactPhone = *input.ContactPhone
		}
		if input.ContactEmail != nil {
			contactEmail = *input.ContactEmail
		}
		if err := tenant.SetContact(contactName, contactPhone, contactEmail); err != nil {
			return nil, err
		}
	}

	if input.Address != nil {
		if err := tenant.SetAddress(*input.Address); err != nil {
			return nil, err
		}
	}
	if input.LogoURL != nil {
		if err := tenant.SetLogoURL(*input.LogoURL); err != nil {
			return nil, err
		}
	}
	if input.Domain != nil {
		if *input.Domain != "" && *input.Domain != tenant.Domain {
			taken, err := s.tenantRepo.ExistsByDomain(ctx, *input.Domain)
			if err != nil {
				return nil, s.internalError("Failed to check domain existence", "Failed to check domain availability", err)
			}
			if taken {
				return nil, shared.NewDomainError("DOMAIN_EXISTS", "Domain already exists")
			}
		}
		if err := tenant.SetDomain(*input.Domain); err != nil {
			return nil, err
		}
	}
	if input.Notes != nil {
		tenant.SetNotes(*input.Notes)
	}

	if err := s.save(ctx, tenant, "update tenant"); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant updated", zap.String("tenant_id", input.ID.String()))
	return toTenantDTO(tenant), nil
}

// UpdateConfig applies the non-nil limits and locale settings.
func (s *TenantService) UpdateConfig(ctx context.Context, id uuid.UUID, input TenantConfigInput) (*TenantDTO, error) {
	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	config := tenant.Config
	if input.MaxUsers != nil {
		config.MaxUsers = *input.MaxUsers
	}
	if input.MaxMachines != nil {
		config.MaxMachines = *input.MaxMachines
	}
	if input.MaxMaterials != nil {
		config.MaxMaterials = *input.MaxMaterials
	}
	if input.Currency != nil {
		config.Currency = *input.Currency
	}
	if input.Timezone != nil {
		config.Timezone = *input.Timezone
	}
	if input.Locale != nil {
		config.Locale = *input.Locale
	}

	if err := tenant.UpdateConfig(config); err != nil {
		return nil, err
	}
	if err := s.save(ctx, tenant, "update tenant config"); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant config updated", zap.String("tenant_id", id.String()))
	return toTenantDTO(tenant), nil
}

// SetPlan moves the tenant to a different subscription plan.
func (s *TenantService) SetPlan(ctx context.Context, id uuid.UUID, plan string) (*TenantDTO, error) {
	return s.transition(ctx, id, "update tenant plan", func(t *identity.Tenant) error {
		return t.SetPlan(identity.TenantPlan(plan))
	})
}

func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, "activate tenant", (*identity.Tenant).Activate)
}

func (s *TenantService) Deactivate(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, "deactivate tenant", (*identity.Tenant).Deactivate)
}

func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, "suspend tenant", (*identity.Tenant).Suspend)
}

// transition loads, mutates, and saves in one step for the lifecycle
// operations.
func (s *TenantService) transition(ctx context.Context, id uuid.UUID, action string, mutate func(*identity.Tenant) error) (*TenantDTO, error) {
	tenant, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(tenant); err != nil {
		return nil, err
	}
	if err := s.save(ctx, tenant, action); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant status changed",
		zap.String("action", action),
		zap.String("tenant_id", id.String()))
	return toTenantDTO(tenant), nil
}

// Delete removes a tenant. Only inactive tenants may be deleted.
func (s *TenantService) Delete(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !tenant.IsInactive() {
		return shared.NewDomainError("TENANT_NOT_INACTIVE", "Only inactive tenants can be deleted")
	}

	if err := s.tenantRepo.Delete(ctx, id); err != nil {
		return s.internalError("Failed to delete tenant", "Failed to delete tenant", err)
	}

	s.logger.Info("Tenant deleted", zap.String("tenant_id", id.String()))
	return nil
}

// Count returns the total number of tenants.
func (s *TenantService) Count(ctx context.Context) (int64, error) {
	return s.tenantRepo.Count(ctx, shared.DefaultFilter())
}

// GetStats counts tenants per lifecycle status.
func (s *TenantService) GetStats(ctx context.Context) (*TenantStatsDTO, error) {
	stats := &TenantStatsDTO{}
	for _, c := range []struct {
		status identity.TenantStatus
		dest   *int64
	}{
		{identity.TenantStatusActive, &stats.Active},
		{identity.TenantStatusTrial, &stats.Trial},
		{identity.TenantStatusInactive, &stats.Inactive},
		{identity.TenantStatusSuspended, &stats.Suspended},
	} {
		count, err := s.tenantRepo.CountByStatus(ctx, c.status)
		if err != nil {
			return nil, s.internalError("Failed to count tenants by status", "Failed to get stats", err)
		}
		*c.dest = count
	}

	total, err := s.tenantRepo.Count(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, s.internalError("Failed to count tenants", "Failed to get stats", err)
	}
	stats.Total = total
	return stats, nil
}

func toTenantDTO(tenant *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:           tenant.ID,
		Code:         tenant.Code,
		Name:         tenant.Name,
		ShortName:    tenant.ShortName,
		Status:       string(tenant.Status),
		Plan:         string(tenant.Plan),
		ContactName:  tenant.ContactName,
		ContactPhone: tenant.ContactPhone,
		ContactEmail: tenant.ContactEmail,
		Address:      tenant.Address,
		LogoURL:      tenant.LogoURL,
		Domain:       tenant.Domain,
		ExpiresAt:    tenant.ExpiresAt,
		TrialEndsAt:  tenant.TrialEndsAt,
		Config: TenantConfigDTO{
			MaxUsers:     tenant.Config.MaxUsers,
			MaxMachines:  tenant.Config.MaxMachines,
			MaxMaterials: tenant.Config.MaxMaterials,
			Currency:     tenant.Config.Currency,
			Timezone:     tenant.Config.Timezone,
			Locale:       tenant.Config.Locale,
		},
		Notes:     tenant.Notes,
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}
}
