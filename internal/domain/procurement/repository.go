package procurement

import (
	"context"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// MaterialIndentRepository defines the interface for indent persistence
type MaterialIndentRepository interface {
	// FindByID finds an indent by ID
	FindByID(ctx context.Context, id uuid.UUID) (*MaterialIndent, error)

	// FindByIDForTenant finds an indent by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*MaterialIndent, error)

	// FindByIndentNumber finds an indent by indent number for a tenant
	FindByIndentNumber(ctx context.Context, tenantID uuid.UUID, indentNumber string) (*MaterialIndent, error)

	// FindAllForTenant finds all indents for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MaterialIndent, error)

	// FindByRequester finds indents raised by a requester
	FindByRequester(ctx context.Context, tenantID, requesterID uuid.UUID, filter shared.Filter) ([]MaterialIndent, error)

	// FindByStatus finds indents by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status IndentStatus, filter shared.Filter) ([]MaterialIndent, error)

	// FindPendingReceipt finds indents open for receiving (ordered or partially_received)
	FindPendingReceipt(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MaterialIndent, error)

	// Save creates or updates an indent
	Save(ctx context.Context, indent *MaterialIndent) error

	// SaveNewWithEvents inserts a brand-new indent and persists its domain
	// events to the outbox in the same transaction. Existing aggregates must
	// go through the lock-checked variants instead.
	SaveNewWithEvents(ctx context.Context, indent *MaterialIndent, events []shared.DomainEvent) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, indent *MaterialIndent) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	// This implements the transactional outbox pattern - events are saved to the outbox table
	// in the same transaction as the aggregate, ensuring guaranteed event delivery
	SaveWithLockAndEvents(ctx context.Context, indent *MaterialIndent, events []shared.DomainEvent) error

	// Delete deletes an indent (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForTenant deletes an indent for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts indents for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts indents by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status IndentStatus) (int64, error)

	// ExistsByIndentNumber checks if an indent number exists for a tenant
	ExistsByIndentNumber(ctx context.Context, tenantID uuid.UUID, indentNumber string) (bool, error)

	// GenerateIndentNumber generates a unique indent number for a tenant
	GenerateIndentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}
