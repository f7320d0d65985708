package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/indentflow/backend/internal/domain/procurement"
	"github.com/indentflow/backend/internal/domain/shared"
)

// ReceiptStockHandler reacts to receipt events from the procurement context
// and replenishes the received material's stock counter. The handler runs
// behind the outbox processor, so a crash between saving the indent and
// adjusting stock is retried rather than lost.
type ReceiptStockHandler struct {
	materialService *MaterialService
	logger          *zap.Logger
}

// NewReceiptStockHandler creates a handler that adjusts material stock when
// indent receipts are recorded
func NewReceiptStockHandler(materialService *MaterialService, logger *zap.Logger) *ReceiptStockHandler {
	return &ReceiptStockHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptStockHandler) EventTypes() []string {
	return []string{procurement.EventTypeIndentReceiptRecorded}
}

// Handle processes an IndentReceiptRecordedEvent
func (h *ReceiptStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	receiptEvent, ok := event.(*procurement.IndentReceiptRecordedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", procurement.EventTypeIndentReceiptRecorded),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			procurement.EventTypeIndentReceiptRecorded, event.EventType())
	}

	_, err := h.materialService.AdjustStock(ctx, event.TenantID(), receiptEvent.MaterialID, AdjustStockRequest{
		Delta: receiptEvent.Quantity,
	})
	if err != nil {
		// The material may have been deleted after the indent was raised.
		// Log and swallow so the outbox entry is not retried forever.
		if shared.IsNotFound(err) {
			h.logger.Warn("material missing during receipt stock adjustment",
				zap.String("tenant_id", event.TenantID().String()),
				zap.String("material_id", receiptEvent.MaterialID.String()),
				zap.String("indent_number", receiptEvent.IndentNumber),
			)
			return nil
		}
		return fmt.Errorf("adjust stock for material %s: %w", receiptEvent.MaterialID, err)
	}

	h.logger.Info("material stock adjusted from receipt",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("material_id", receiptEvent.MaterialID.String()),
		zap.String("indent_number", receiptEvent.IndentNumber),
		zap.Int64("quantity", receiptEvent.Quantity),
	)
	return nil
}

// Ensure ReceiptStockHandler implements shared.EventHandler
var _ shared.EventHandler = (*ReceiptStockHandler)(nil)
