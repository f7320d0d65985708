package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indentflow/backend/internal/domain/shared"
)

func createTestMaterial(t *testing.T) *Material {
	material, err := NewMaterial(uuid.New(), "MAT-001", "Bearing 6204", CategorySparePart, "pcs", 5)
	require.NoError(t, err)
	return material
}

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name          string
		currentStock  int64
		minStockLevel int64
		want          StockStatus
	}{
		{"zero stock", 0, 5, StockStatusOutOfStock},
		{"zero stock zero threshold", 0, 0, StockStatusOutOfStock},
		{"negative stock", -3, 5, StockStatusOutOfStock},
		{"below threshold", 3, 5, StockStatusLowStock},
		{"exactly at threshold", 5, 5, StockStatusLowStock},
		{"one above threshold", 6, 5, StockStatusInStock},
		{"well above threshold", 100, 5, StockStatusInStock},
		{"positive stock zero threshold", 1, 0, StockStatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStock(tt.currentStock, tt.minStockLevel))
		})
	}
}

func TestNewMaterial(t *testing.T) {
	tenantID := uuid.New()

	material, err := NewMaterial(tenantID, "MAT-001", "Bearing 6204", CategorySparePart, "pcs", 5)

	require.NoError(t, err)
	assert.Equal(t, "MAT-001", material.Code)
	assert.Equal(t, tenantID, material.TenantID)
	assert.True(t, material.IsActive)
	assert.Equal(t, int64(0), material.CurrentStock)
}

func TestNewMaterial_Validation(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name     string
		code     string
		matName  string
		category MaterialCategory
		unit     string
		minLevel int64
		wantCode string
	}{
		{"empty code", "", "X", CategoryOther, "pcs", 0, "INVALID_MATERIAL_CODE"},
		{"empty name", "MAT-001", "", CategoryOther, "pcs", 0, "INVALID_MATERIAL_NAME"},
		{"bad category", "MAT-001", "X", MaterialCategory("widget"), "pcs", 0, "INVALID_CATEGORY"},
		{"empty unit", "MAT-001", "X", CategoryOther, "", 0, "INVALID_UNIT"},
		{"negative threshold", "MAT-001", "X", CategoryOther, "pcs", -1, "INVALID_STOCK_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMaterial(tenantID, tt.code, tt.matName, tt.category, tt.unit, tt.minLevel)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestMaterial_StockStatus(t *testing.T) {
	material := createTestMaterial(t)

	assert.Equal(t, StockStatusOutOfStock, material.StockStatus())

	require.NoError(t, material.SetStockLevels(5, 5))
	assert.Equal(t, StockStatusLowStock, material.StockStatus())

	require.NoError(t, material.SetStockLevels(6, 5))
	assert.Equal(t, StockStatusInStock, material.StockStatus())
}

func TestMaterial_AdjustStock(t *testing.T) {
	material := createTestMaterial(t)
	require.NoError(t, material.SetStockLevels(10, 5))

	require.NoError(t, material.AdjustStock(-4))
	assert.Equal(t, int64(6), material.CurrentStock)

	err := material.AdjustStock(-7)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	assert.Equal(t, int64(6), material.CurrentStock)
}

func TestMaterial_ActivateDeactivate(t *testing.T) {
	material := createTestMaterial(t)

	material.Deactivate()
	assert.False(t, material.IsActive)

	material.Activate()
	assert.True(t, material.IsActive)
}

func TestNewMachine(t *testing.T) {
	machine, err := NewMachine(uuid.New(), "CNC-01", "CNC Lathe", "Shop Floor A")
	require.NoError(t, err)
	assert.True(t, machine.IsActive)

	_, err = NewMachine(uuid.New(), "", "CNC Lathe", "")
	assert.Error(t, err)

	_, err = NewMachine(uuid.New(), "CNC-01", "", "")
	assert.Error(t, err)
}
