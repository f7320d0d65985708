package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// Machine represents a production machine that indent items may be raised
// against when the purpose is machine-specific.
type Machine struct {
	shared.TenantAggregateRoot
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_machine_tenant_code,priority:2"`
	Name     string `gorm:"type:varchar(200);not null"`
	Location string `gorm:"type:varchar(200)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Machine) TableName() string {
	return "machines"
}

// NewMachine creates a new machine entry
func NewMachine(tenantID uuid.UUID, code, name, location string) (*Machine, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_MACHINE_CODE", "Machine code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_MACHINE_NAME", "Machine name cannot be empty")
	}

	return &Machine{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Location:            location,
		IsActive:            true,
	}, nil
}

// Deactivate takes the machine out of service for new indents
func (m *Machine) Deactivate() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}
