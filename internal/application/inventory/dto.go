package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/inventory"
)

// ==================== Material DTOs ====================

// CreateMaterialRequest represents a request to create a material
type CreateMaterialRequest struct {
	Code          string `json:"code" binding:"required,min=1,max=50"`
	Name          string `json:"name" binding:"required,min=1,max=200"`
	Category      string `json:"category" binding:"required,oneof=raw_material spare_part consumable tooling other"`
	Unit          string `json:"unit" binding:"required,min=1,max=20"`
	Specification string `json:"specification" binding:"max=200"`
	CurrentStock  int64  `json:"current_stock" binding:"min=0"`
	MinStockLevel int64  `json:"min_stock_level" binding:"min=0"`
}

// UpdateMaterialRequest represents a request to update a material
type UpdateMaterialRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	Category      *string `json:"category" binding:"omitempty,oneof=raw_material spare_part consumable tooling other"`
	Unit          *string `json:"unit" binding:"omitempty,min=1,max=20"`
	Specification *string `json:"specification" binding:"omitempty,max=200"`
	IsActive      *bool   `json:"is_active"`
}

// SetStockLevelsRequest updates the on-hand stock and low-stock threshold
type SetStockLevelsRequest struct {
	CurrentStock  int64 `json:"current_stock" binding:"min=0"`
	MinStockLevel int64 `json:"min_stock_level" binding:"min=0"`
}

// AdjustStockRequest applies a signed stock movement
type AdjustStockRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

// MaterialListFilter represents filter options for the material list
type MaterialListFilter struct {
	Search   string  `form:"search"`
	Category *string `form:"category"`
	Active   *bool   `form:"active"`
	LowStock bool    `form:"low_stock"`
	Page     int     `form:"page" binding:"min=0"`
	PageSize int     `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Unit          string    `json:"unit"`
	Specification string    `json:"specification,omitempty"`
	CurrentStock  int64     `json:"current_stock"`
	MinStockLevel int64     `json:"min_stock_level"`
	StockStatus   string    `json:"stock_status"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Version       int       `json:"version"`
}

// MachineResponse represents a machine in API responses
type MachineResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMachineRequest represents a request to register a machine
type CreateMachineRequest struct {
	Code     string `json:"code" binding:"required,min=1,max=50"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Location string `json:"location" binding:"max=200"`
}

// ToMaterialResponse converts a domain Material to a response DTO
func ToMaterialResponse(m *inventory.Material) MaterialResponse {
	return MaterialResponse{
		ID:            m.ID,
		TenantID:      m.TenantID,
		Code:          m.Code,
		Name:          m.Name,
		Category:      string(m.Category),
		Unit:          m.Unit,
		Specification: m.Specification,
		CurrentStock:  m.CurrentStock,
		MinStockLevel: m.MinStockLevel,
		StockStatus:   string(m.StockStatus()),
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		Version:       m.Version,
	}
}

// ToMaterialResponses converts a slice of domain materials to response DTOs
func ToMaterialResponses(materials []inventory.Material) []MaterialResponse {
	responses := make([]MaterialResponse, len(materials))
	for i := range materials {
		responses[i] = ToMaterialResponse(&materials[i])
	}
	return responses
}

// ToMachineResponse converts a domain Machine to a response DTO
func ToMachineResponse(m *inventory.Machine) MachineResponse {
	return MachineResponse{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Location:  m.Location,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

// ToMachineResponses converts a slice of domain machines to response DTOs
func ToMachineResponses(machines []inventory.Machine) []MachineResponse {
	responses := make([]MachineResponse, len(machines))
	for i := range machines {
		responses[i] = ToMachineResponse(&machines[i])
	}
	return responses
}
