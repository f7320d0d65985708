package models

import (
	"github.com/indentflow/backend/internal/domain/inventory"
)

// MaterialModel is the persistence model for the Material aggregate root.
type MaterialModel struct {
	TenantAggregateModel
	Code          string                     `gorm:"type:varchar(50);not null;uniqueIndex:idx_material_tenant_code,priority:2"`
	Name          string                     `gorm:"type:varchar(200);not null;index"`
	Category      inventory.MaterialCategory `gorm:"type:varchar(20);not null;index"`
	Unit          string                     `gorm:"type:varchar(20);not null"`
	Specification string                     `gorm:"type:varchar(30)"`
	CurrentStock  int64                      `gorm:"not null;default:0"`
	MinStockLevel int64                      `gorm:"not null;default:0"`
	IsActive      bool                       `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a domain Material entity.
func (m *MaterialModel) ToDomain() *inventory.Material {
	material := &inventory.Material{
		Code:          m.Code,
		Name:          m.Name,
		Category:      m.Category,
		Unit:          m.Unit,
		Specification: m.Specification,
		CurrentStock:  m.CurrentStock,
		MinStockLevel: m.MinStockLevel,
		IsActive:      m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&material.TenantAggregateRoot)
	return material
}

// FromDomain populates the persistence model from a domain Material entity.
func (m *MaterialModel) FromDomain(material *inventory.Material) {
	m.FromDomainTenantAggregateRoot(material.TenantAggregateRoot)
	m.Code = material.Code
	m.Name = material.Name
	m.Category = material.Category
	m.Unit = material.Unit
	m.Specification = material.Specification
	m.CurrentStock = material.CurrentStock
	m.MinStockLevel = material.MinStockLevel
	m.IsActive = material.IsActive
}

// MaterialModelFromDomain creates a new persistence model from a domain Material entity.
func MaterialModelFromDomain(material *inventory.Material) *MaterialModel {
	m := &MaterialModel{}
	m.FromDomain(material)
	return m
}

// MachineModel is the persistence model for the Machine aggregate root.
type MachineModel struct {
	TenantAggregateModel
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_machine_tenant_code,priority:2"`
	Name     string `gorm:"type:varchar(200);not null"`
	Location string `gorm:"type:varchar(200)"`
	IsActive bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (MachineModel) TableName() string {
	return "machines"
}

// ToDomain converts the persistence model to a domain Machine entity.
func (m *MachineModel) ToDomain() *inventory.Machine {
	machine := &inventory.Machine{
		Code:     m.Code,
		Name:     m.Name,
		Location: m.Location,
		IsActive: m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&machine.TenantAggregateRoot)
	return machine
}

// FromDomain populates the persistence model from a domain Machine entity.
func (m *MachineModel) FromDomain(machine *inventory.Machine) {
	m.FromDomainTenantAggregateRoot(machine.TenantAggregateRoot)
	m.Code = machine.Code
	m.Name = machine.Name
	m.Location = machine.Location
	m.IsActive = machine.IsActive
}

// MachineModelFromDomain creates a new persistence model from a domain Machine entity.
func MachineModelFromDomain(machine *inventory.Machine) *MachineModel {
	m := &MachineModel{}
	m.FromDomain(machine)
	return m
}
