package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// MaterialCategory groups materials in the catalog
type MaterialCategory string

const (
	CategoryRawMaterial MaterialCategory = "raw_material"
	CategorySparePart   MaterialCategory = "spare_part"
	CategoryConsumable  MaterialCategory = "consumable"
	CategoryTooling     MaterialCategory = "tooling"
	CategoryOther       MaterialCategory = "other"
)

// IsValid checks if the category is a valid MaterialCategory
func (c MaterialCategory) IsValid() bool {
	switch c {
	case CategoryRawMaterial, CategorySparePart, CategoryConsumable, CategoryTooling, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of MaterialCategory
func (c MaterialCategory) String() string {
	return string(c)
}

// Material represents a catalog entry that indents request against.
// CurrentStock and MinStockLevel drive the stock status classification shown
// to requesters when they raise an indent.
type Material struct {
	shared.TenantAggregateRoot
	Code          string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_material_tenant_code,priority:2"`
	Name          string           `gorm:"type:varchar(200);not null;index"`
	Category      MaterialCategory `gorm:"type:varchar(20);not null;default:'other'"`
	Unit          string           `gorm:"type:varchar(20);not null"`
	Specification string           `gorm:"type:varchar(200)"`
	CurrentStock  int64            `gorm:"not null;default:0"`
	MinStockLevel int64            `gorm:"not null;default:0"`
	IsActive      bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Material) TableName() string {
	return "materials"
}

// NewMaterial creates a new material catalog entry
func NewMaterial(tenantID uuid.UUID, code, name string, category MaterialCategory, unit string, minStockLevel int64) (*Material, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_MATERIAL_CODE", "Material code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_MATERIAL_CODE", "Material code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_MATERIAL_NAME", "Material name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Invalid material category: %s", category))
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Material unit cannot be empty")
	}
	if minStockLevel < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK_LEVEL", "Minimum stock level cannot be negative")
	}

	return &Material{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Category:            category,
		Unit:                unit,
		MinStockLevel:       minStockLevel,
		IsActive:            true,
	}, nil
}

// UpdateInfo updates the descriptive fields of the material
func (m *Material) UpdateInfo(name string, category MaterialCategory, unit, specification string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_MATERIAL_NAME", "Material name cannot be empty")
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Invalid material category: %s", category))
	}
	if unit == "" {
		return shared.NewDomainError("INVALID_UNIT", "Material unit cannot be empty")
	}

	m.Name = name
	m.Category = category
	m.Unit = unit
	m.Specification = specification
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// SetStockLevels updates the on-hand stock and the low-stock threshold
func (m *Material) SetStockLevels(currentStock, minStockLevel int64) error {
	if currentStock < 0 {
		return shared.NewDomainError("INVALID_STOCK_LEVEL", "Current stock cannot be negative")
	}
	if minStockLevel < 0 {
		return shared.NewDomainError("INVALID_STOCK_LEVEL", "Minimum stock level cannot be negative")
	}

	m.CurrentStock = currentStock
	m.MinStockLevel = minStockLevel
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// AdjustStock applies a signed stock movement to the on-hand quantity
func (m *Material) AdjustStock(delta int64) error {
	if m.CurrentStock+delta < 0 {
		return shared.NewDomainErrorWithDetails("INSUFFICIENT_STOCK",
			fmt.Sprintf("Stock adjustment of %d would take %s below zero", delta, m.Name),
			map[string]interface{}{"current_stock": m.CurrentStock, "delta": delta})
	}

	m.CurrentStock += delta
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// Activate marks the material as orderable
func (m *Material) Activate() {
	m.IsActive = true
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// Deactivate removes the material from the orderable catalog
func (m *Material) Deactivate() {
	m.IsActive = false
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}

// StockStatus returns the current stock classification of the material
func (m *Material) StockStatus() StockStatus {
	return ClassifyStock(m.CurrentStock, m.MinStockLevel)
}
