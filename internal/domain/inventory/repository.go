package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// MaterialRepository defines the interface for material catalog persistence
type MaterialRepository interface {
	// FindByID finds a material by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindByIDForTenant finds a material by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Material, error)

	// FindByCode finds a material by code for a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Material, error)

	// FindAllForTenant finds all materials for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Material, error)

	// FindLowStock finds active materials at or below their minimum stock level
	FindLowStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Material, error)

	// Save creates or updates a material
	Save(ctx context.Context, material *Material) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, material *Material) error

	// Delete deletes a material (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts materials for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a material code exists for a tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}

// MachineRepository defines the interface for machine persistence
type MachineRepository interface {
	// FindByID finds a machine by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Machine, error)

	// FindByIDForTenant finds a machine by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Machine, error)

	// FindAllForTenant finds all machines for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Machine, error)

	// Save creates or updates a machine
	Save(ctx context.Context, machine *Machine) error

	// Delete deletes a machine (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error
}
