package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indentflow/backend/internal/domain/procurement"
	"github.com/indentflow/backend/internal/domain/shared"
)

func newReceiptEvent(tenantID, materialID uuid.UUID, quantity int64) *procurement.IndentReceiptRecordedEvent {
	indentID := uuid.New()
	return &procurement.IndentReceiptRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			procurement.EventTypeIndentReceiptRecorded,
			procurement.AggregateTypeMaterialIndent,
			indentID,
			tenantID,
		),
		IndentID:          indentID,
		IndentNumber:      "IND-2026-0001",
		ItemID:            uuid.New(),
		MaterialID:        materialID,
		MaterialName:      "Hydraulic Oil",
		ReceiptID:         uuid.New(),
		Quantity:          quantity,
		ReceivedDate:      time.Now(),
		RemainingQuantity: 0,
		IndentStatus:      procurement.IndentStatusFullyReceived,
	}
}

func TestReceiptStockHandler_EventTypes(t *testing.T) {
	handler := NewReceiptStockHandler(nil, zap.NewNop())

	eventTypes := handler.EventTypes()
	require.Len(t, eventTypes, 1)
	assert.Equal(t, procurement.EventTypeIndentReceiptRecorded, eventTypes[0])
}

func TestReceiptStockHandler_Handle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("replenishes material stock", func(t *testing.T) {
		materialRepo := new(MockMaterialRepository)
		service := NewMaterialService(materialRepo, new(MockMachineRepository))
		handler := NewReceiptStockHandler(service, zap.NewNop())

		material := newTestMaterial(t, tenantID)
		materialRepo.On("FindByIDForTenant", ctx, tenantID, material.ID).Return(material, nil)
		materialRepo.On("SaveWithLock", ctx, material).Return(nil)

		err := handler.Handle(ctx, newReceiptEvent(tenantID, material.ID, 30))
		require.NoError(t, err)
		assert.Equal(t, int64(80), material.CurrentStock)
		materialRepo.AssertExpectations(t)
	})

	t.Run("swallows missing material", func(t *testing.T) {
		materialRepo := new(MockMaterialRepository)
		service := NewMaterialService(materialRepo, new(MockMachineRepository))
		handler := NewReceiptStockHandler(service, zap.NewNop())

		materialID := uuid.New()
		materialRepo.On("FindByIDForTenant", ctx, tenantID, materialID).Return(nil, shared.ErrNotFound)

		err := handler.Handle(ctx, newReceiptEvent(tenantID, materialID, 30))
		require.NoError(t, err)
	})

	t.Run("returns transient errors for retry", func(t *testing.T) {
		materialRepo := new(MockMaterialRepository)
		service := NewMaterialService(materialRepo, new(MockMachineRepository))
		handler := NewReceiptStockHandler(service, zap.NewNop())

		materialID := uuid.New()
		dbErr := errors.New("connection reset")
		materialRepo.On("FindByIDForTenant", ctx, tenantID, materialID).Return(nil, dbErr)

		err := handler.Handle(ctx, newReceiptEvent(tenantID, materialID, 30))
		require.ErrorIs(t, err, dbErr)
	})

	t.Run("rejects unexpected event types", func(t *testing.T) {
		handler := NewReceiptStockHandler(nil, zap.NewNop())

		event := &procurement.IndentClosedEvent{
			BaseDomainEvent: shared.NewBaseDomainEvent(
				procurement.EventTypeIndentClosed,
				procurement.AggregateTypeMaterialIndent,
				uuid.New(),
				tenantID,
			),
		}

		err := handler.Handle(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected event type")
	})
}
