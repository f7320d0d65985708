package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/indentflow/backend/internal/domain/shared"
)

// TenantRepository is the persistence contract for tenants. Unlike
// the other repositories it is not itself tenant-scoped: platform
// administration queries across all tenants.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Tenant, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)
	FindByStatus(ctx context.Context, status TenantStatus, filter shared.Filter) ([]Tenant, error)
	FindByPlan(ctx context.Context, plan TenantPlan, filter shared.Filter) ([]Tenant, error)
	FindActive(ctx context.Context, filter shared.Filter) ([]Tenant, error)

	// FindTrialExpiring and FindSubscriptionExpiring feed the renewal
	// reminder jobs: they return tenants whose trial or subscription
	// ends within the given number of days.
	FindTrialExpiring(ctx context.Context, withinDays int) ([]Tenant, error)
	FindSubscriptionExpiring(ctx context.Context, withinDays int) ([]Tenant, error)

	// Save inserts or updates a tenant.
	Save(ctx context.Context, tenant *Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status TenantStatus) (int64, error)
	CountByPlan(ctx context.Context, plan TenantPlan) (int64, error)

	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByDomain(ctx context.Context, domain string) (bool, error)
}
