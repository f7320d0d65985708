package procurement

import (
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// MaterialReceipt is one immutable entry in an item's receipt ledger.
// Receipts are append-only: corrections are modelled as new entries on a
// fresh indent, never as edits to an existing one.
type MaterialReceipt struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	ItemID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity     int64     `gorm:"not null"`
	ReceivedDate time.Time `gorm:"not null;index"`
	Notes        string    `gorm:"type:varchar(500)"`
	ReceiverID   uuid.UUID `gorm:"type:uuid;not null"`
	ReceiverName string    `gorm:"type:varchar(200);not null"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (MaterialReceipt) TableName() string {
	return "material_receipts"
}

// NewMaterialReceipt creates a validated receipt entry
func NewMaterialReceipt(itemID uuid.UUID, quantity int64, receivedDate time.Time, notes string, receiverID uuid.UUID, receiverName string) (*MaterialReceipt, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be a positive integer")
	}
	if receivedDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_RECEIPT_DATE", "Received date is required")
	}
	if receiverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECEIVER", "Receiver ID cannot be empty")
	}

	return &MaterialReceipt{
		ID:           uuid.New(),
		ItemID:       itemID,
		Quantity:     quantity,
		ReceivedDate: receivedDate,
		Notes:        notes,
		ReceiverID:   receiverID,
		ReceiverName: receiverName,
		CreatedAt:    time.Now(),
	}, nil
}
