package procurement

import (
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/domain/shared/valueobject"
)

// VendorQuotation represents one vendor's bid for an indent item.
// Quotations exist only inside their item's competitive set; selection is
// governed by the item so that at most one bid per item wins.
type VendorQuotation struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key"`
	ItemID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	VendorName     string             `gorm:"type:varchar(200);not null"`
	ContactPerson  string             `gorm:"type:varchar(100)"`
	ContactPhone   string             `gorm:"type:varchar(30)"`
	QuotedAmount   valueobject.Money  `gorm:"type:decimal(20,2)"`
	UnitPrice      *valueobject.Money `gorm:"type:decimal(20,2)"`
	Notes          string             `gorm:"type:varchar(500)"`
	AttachmentKeys []string           `gorm:"serializer:json;type:jsonb"`
	IsSelected     bool               `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (VendorQuotation) TableName() string {
	return "vendor_quotations"
}

// NewVendorQuotation creates a validated vendor quotation
func NewVendorQuotation(vendorName, contactPerson, contactPhone string, quotedAmount valueobject.Money, notes string, attachmentKeys []string) (*VendorQuotation, error) {
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor name cannot be empty")
	}
	if len(vendorName) > 200 {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor name cannot exceed 200 characters")
	}
	if quotedAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Quoted amount cannot be negative")
	}

	return &VendorQuotation{
		ID:             uuid.New(),
		VendorName:     vendorName,
		ContactPerson:  contactPerson,
		ContactPhone:   contactPhone,
		QuotedAmount:   quotedAmount,
		Notes:          notes,
		AttachmentKeys: attachmentKeys,
		IsSelected:     false,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}, nil
}

// SetUnitPrice records the per-unit price the vendor quoted. The unit price
// is informational alongside the total quoted amount and may be omitted.
func (q *VendorQuotation) SetUnitPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Unit price cannot be negative")
	}
	q.UnitPrice = &price
	q.UpdatedAt = time.Now()
	return nil
}
