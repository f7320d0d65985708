package procurement

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

const (
	// MaxSpecificationLength bounds the free-text specification on an item
	MaxSpecificationLength = 30
	// MaxQuotationsPerItem bounds the competitive quotation set per item
	MaxQuotationsPerItem = 4
)

// IndentPurpose categorizes why a material is being requested
type IndentPurpose string

const (
	PurposeMachine IndentPurpose = "machine"
	PurposeSpare   IndentPurpose = "spare"
	PurposeOther   IndentPurpose = "other"
)

// IsValid checks if the purpose is a valid IndentPurpose
func (p IndentPurpose) IsValid() bool {
	switch p {
	case PurposeMachine, PurposeSpare, PurposeOther:
		return true
	}
	return false
}

// String returns the string representation of IndentPurpose
func (p IndentPurpose) String() string {
	return string(p)
}

// NewItemInput carries the requester-supplied fields of an indent item
type NewItemInput struct {
	MaterialID        uuid.UUID
	MaterialName      string
	Unit              string
	Specifications    string
	RequestedQuantity int64
	StockAtRequest    int64
	Purpose           IndentPurpose
	MachineID         *uuid.UUID
	MachineName       string
	Notes             string
	ImageKeys         []string
}

// IndentItem represents one requested material line on an indent.
// It owns the competitive quotation set and the append-only receipt ledger
// for the line.
type IndentItem struct {
	ID                uuid.UUID     `gorm:"type:uuid;primary_key"`
	IndentID          uuid.UUID     `gorm:"type:uuid;not null;index"`
	MaterialID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	MaterialName      string        `gorm:"type:varchar(200);not null"`
	Unit              string        `gorm:"type:varchar(20);not null"`
	Specifications    string        `gorm:"type:varchar(30)"`
	RequestedQuantity int64         `gorm:"not null"`
	StockAtRequest    int64         `gorm:"not null;default:0"` // on-hand snapshot when the line was raised
	Purpose           IndentPurpose `gorm:"type:varchar(10);not null"`
	MachineID         *uuid.UUID    `gorm:"type:uuid;index"`
	MachineName       string        `gorm:"type:varchar(200)"`
	Notes             string        `gorm:"type:varchar(500)"`
	ImageKeys         []string      `gorm:"serializer:json;type:jsonb"`
	Quotations        []VendorQuotation `gorm:"foreignKey:ItemID;references:ID"`
	Receipts          []MaterialReceipt `gorm:"foreignKey:ItemID;references:ID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName returns the table name for GORM
func (IndentItem) TableName() string {
	return "indent_items"
}

// NewIndentItem creates a validated indent item
func NewIndentItem(indentID uuid.UUID, input NewItemInput) (*IndentItem, error) {
	item := &IndentItem{
		ID:        uuid.New(),
		IndentID:  indentID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := item.apply(input); err != nil {
		return nil, err
	}
	return item, nil
}

// apply overwrites the requester-supplied fields after validating them
func (i *IndentItem) apply(input NewItemInput) error {
	if input.MaterialID == uuid.Nil {
		return shared.NewDomainError("INVALID_MATERIAL", "Material reference is required")
	}
	if input.MaterialName == "" {
		return shared.NewDomainError("INVALID_MATERIAL", "Material name cannot be empty")
	}
	if input.RequestedQuantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be a positive integer")
	}
	if len(input.Specifications) > MaxSpecificationLength {
		return shared.NewDomainError("INVALID_SPECIFICATION", fmt.Sprintf("Specification cannot exceed %d characters", MaxSpecificationLength))
	}
	if !input.Purpose.IsValid() {
		return shared.NewDomainError("INVALID_PURPOSE", fmt.Sprintf("Invalid purpose: %s", input.Purpose))
	}
	if err := validatePurpose(input.Purpose, input.MachineID, input.Notes); err != nil {
		return err
	}

	i.MaterialID = input.MaterialID
	i.MaterialName = input.MaterialName
	i.Unit = input.Unit
	i.Specifications = input.Specifications
	i.RequestedQuantity = input.RequestedQuantity
	i.StockAtRequest = input.StockAtRequest
	i.Purpose = input.Purpose
	i.MachineID = input.MachineID
	i.MachineName = input.MachineName
	i.Notes = input.Notes
	i.ImageKeys = input.ImageKeys
	i.UpdatedAt = time.Now()
	return nil
}

// validatePurpose enforces the purpose specific conditional requirements:
// a machine purpose must reference a machine, spare and other purposes must
// explain themselves in notes.
func validatePurpose(purpose IndentPurpose, machineID *uuid.UUID, notes string) error {
	switch purpose {
	case PurposeMachine:
		if machineID == nil || *machineID == uuid.Nil {
			return shared.NewDomainError("MACHINE_REQUIRED", "A machine reference is required when the purpose is machine")
		}
	case PurposeSpare, PurposeOther:
		if notes == "" {
			return shared.NewDomainError("NOTES_REQUIRED", fmt.Sprintf("Notes are required when the purpose is %s", purpose))
		}
	}
	return nil
}

// validateForSubmission re-checks the line before the indent enters approval
func (i *IndentItem) validateForSubmission() error {
	if i.MaterialID == uuid.Nil {
		return shared.NewDomainError("INVALID_MATERIAL", "Material reference is required")
	}
	if i.RequestedQuantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be a positive integer")
	}
	return validatePurpose(i.Purpose, i.MachineID, i.Notes)
}

// AddQuotation attaches a vendor quotation to the item, bounded by
// MaxQuotationsPerItem.
func (i *IndentItem) AddQuotation(q *VendorQuotation) error {
	if len(i.Quotations) >= MaxQuotationsPerItem {
		return shared.NewDomainErrorWithDetails("QUOTATION_LIMIT",
			fmt.Sprintf("An item cannot carry more than %d quotations", MaxQuotationsPerItem),
			map[string]interface{}{"max_quotations": MaxQuotationsPerItem})
	}
	q.ItemID = i.ID
	i.Quotations = append(i.Quotations, *q)
	i.UpdatedAt = time.Now()
	return nil
}

// RemoveQuotation detaches a quotation from the item
func (i *IndentItem) RemoveQuotation(quotationID uuid.UUID) error {
	for idx, q := range i.Quotations {
		if q.ID == quotationID {
			i.Quotations = append(i.Quotations[:idx], i.Quotations[idx+1:]...)
			i.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("QUOTATION_NOT_FOUND", "Vendor quotation not found")
}

// SelectQuotation marks exactly one quotation of the item as selected,
// clearing any previous selection.
func (i *IndentItem) SelectQuotation(quotationID uuid.UUID) error {
	found := false
	for idx := range i.Quotations {
		if i.Quotations[idx].ID == quotationID {
			found = true
			break
		}
	}
	if !found {
		return shared.NewDomainError("QUOTATION_NOT_FOUND", "Vendor quotation not found")
	}
	for idx := range i.Quotations {
		i.Quotations[idx].IsSelected = i.Quotations[idx].ID == quotationID
		i.Quotations[idx].UpdatedAt = time.Now()
	}
	i.UpdatedAt = time.Now()
	return nil
}

// SelectedQuotation returns the selected quotation, or nil if none is selected
func (i *IndentItem) SelectedQuotation() *VendorQuotation {
	for idx := range i.Quotations {
		if i.Quotations[idx].IsSelected {
			return &i.Quotations[idx]
		}
	}
	return nil
}

// HasValidQuotationSelection returns true if the item is ready for approval:
// either it carries no quotations, or exactly one of them is selected.
func (i *IndentItem) HasValidQuotationSelection() bool {
	if len(i.Quotations) == 0 {
		return true
	}
	selected := 0
	for idx := range i.Quotations {
		if i.Quotations[idx].IsSelected {
			selected++
		}
	}
	return selected == 1
}

// AddReceipt appends a receipt to the item ledger.
// The write is rejected outright when it would push the cumulative received
// quantity past the requested quantity; the error reports how much can still
// be accepted.
func (i *IndentItem) AddReceipt(quantity int64, receivedDate time.Time, notes string, receiverID uuid.UUID, receiverName string) (*MaterialReceipt, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be a positive integer")
	}
	remaining := i.RemainingQuantity()
	if quantity > remaining {
		return nil, shared.NewDomainErrorWithDetails("OVER_RECEIPT",
			fmt.Sprintf("Received quantity %d exceeds remaining quantity %d for %s", quantity, remaining, i.MaterialName),
			map[string]interface{}{
				"requested_quantity": i.RequestedQuantity,
				"received_quantity":  i.TotalReceived(),
				"remaining_quantity": remaining,
			})
	}

	receipt, err := NewMaterialReceipt(i.ID, quantity, receivedDate, notes, receiverID, receiverName)
	if err != nil {
		return nil, err
	}

	i.Receipts = append(i.Receipts, *receipt)
	i.UpdatedAt = time.Now()
	return receipt, nil
}

// TotalReceived returns the cumulative received quantity over the ledger
func (i *IndentItem) TotalReceived() int64 {
	var total int64
	for idx := range i.Receipts {
		total += i.Receipts[idx].Quantity
	}
	return total
}

// RemainingQuantity returns the quantity still outstanding on the line
func (i *IndentItem) RemainingQuantity() int64 {
	remaining := i.RequestedQuantity - i.TotalReceived()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyReceived returns true once the line has received its full quantity
func (i *IndentItem) IsFullyReceived() bool {
	return i.TotalReceived() >= i.RequestedQuantity
}

// ReceiveProgress returns the line progress as a percentage (0-100)
func (i *IndentItem) ReceiveProgress() int {
	if i.RequestedQuantity == 0 {
		return 0
	}
	return progressPercent(i.TotalReceived(), i.RequestedQuantity)
}

// progressPercent computes received/requested as a whole percentage,
// rounded half-up and clamped to [0, 100].
func progressPercent(received, requested int64) int {
	pct := int((received*200 + requested) / (2 * requested))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
