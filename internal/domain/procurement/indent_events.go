package procurement

import (
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeMaterialIndent = "MaterialIndent"

// Event type constants
const (
	EventTypeIndentCreated         = "IndentCreated"
	EventTypeIndentSubmitted       = "IndentSubmitted"
	EventTypeIndentApproved        = "IndentApproved"
	EventTypeIndentRejected        = "IndentRejected"
	EventTypeIndentReverted        = "IndentReverted"
	EventTypeIndentResubmitted     = "IndentResubmitted"
	EventTypeIndentOrdered         = "IndentOrdered"
	EventTypeIndentReceiptRecorded = "IndentReceiptRecorded"
	EventTypeIndentFullyReceived   = "IndentFullyReceived"
	EventTypeIndentClosed          = "IndentClosed"
)

// IndentCreatedEvent is raised when a new indent is created
type IndentCreatedEvent struct {
	shared.BaseDomainEvent
	IndentID      uuid.UUID `json:"indent_id"`
	IndentNumber  string    `json:"indent_number"`
	RequesterID   uuid.UUID `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
}

// NewIndentCreatedEvent creates a new IndentCreatedEvent
func NewIndentCreatedEvent(indent *MaterialIndent) *IndentCreatedEvent {
	return &IndentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentCreated, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
		RequesterID:     indent.RequesterID,
		RequesterName:   indent.RequesterName,
	}
}

// EventType returns the event type name
func (e *IndentCreatedEvent) EventType() string {
	return EventTypeIndentCreated
}

// IndentSubmittedEvent is raised when an indent is submitted for approval
type IndentSubmittedEvent struct {
	shared.BaseDomainEvent
	IndentID     uuid.UUID `json:"indent_id"`
	IndentNumber string    `json:"indent_number"`
	RequesterID  uuid.UUID `json:"requester_id"`
	ItemCount    int       `json:"item_count"`
}

// NewIndentSubmittedEvent creates a new IndentSubmittedEvent
func NewIndentSubmittedEvent(indent *MaterialIndent) *IndentSubmittedEvent {
	return &IndentSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentSubmitted, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
		RequesterID:     indent.RequesterID,
		ItemCount:       len(indent.Items),
	}
}

// EventType returns the event type name
func (e *IndentSubmittedEvent) EventType() string {
	return EventTypeIndentSubmitted
}

// IndentSelectionInfo carries the winning quotation of one item for events
type IndentSelectionInfo struct {
	ItemID       uuid.UUID `json:"item_id"`
	MaterialID   uuid.UUID `json:"material_id"`
	MaterialName string    `json:"material_name"`
	QuotationID  uuid.UUID `json:"quotation_id"`
	VendorName   string    `json:"vendor_name"`
	QuotedAmount string    `json:"quoted_amount"`
}

// IndentApprovedEvent is raised when an indent is approved.
// It carries the full vendor selection so downstream purchasing can act on
// every item, not just the first.
type IndentApprovedEvent struct {
	shared.BaseDomainEvent
	IndentID     uuid.UUID             `json:"indent_id"`
	IndentNumber string                `json:"indent_number"`
	ApproverID   uuid.UUID             `json:"approver_id"`
	ApproverName string                `json:"approver_name"`
	Selections   []IndentSelectionInfo `json:"selections"`
}

// NewIndentApprovedEvent creates a new IndentApprovedEvent
func NewIndentApprovedEvent(indent *MaterialIndent) *IndentApprovedEvent {
	selections := make([]IndentSelectionInfo, 0, len(indent.Items))
	for idx := range indent.Items {
		item := &indent.Items[idx]
		if q := item.SelectedQuotation(); q != nil {
			selections = append(selections, IndentSelectionInfo{
				ItemID:       item.ID,
				MaterialID:   item.MaterialID,
				MaterialName: item.MaterialName,
				QuotationID:  q.ID,
				VendorName:   q.VendorName,
				QuotedAmount: q.QuotedAmount.StringFixed(2),
			})
		}
	}

	var approverID uuid.UUID
	if indent.ApproverID != nil {
		approverID = *indent.ApproverID
	}

	return &IndentApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentApproved, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
		ApproverID:      approverID,
		ApproverName:    indent.ApproverName,
		Selections:      selections,
	}
}

// EventType returns the event type name
func (e *IndentApprovedEvent) EventType() string {
	return EventTypeIndentApproved
}

// IndentRejectedEvent is raised when an indent is rejected
type IndentRejectedEvent struct {
	shared.BaseDomainEvent
	IndentID     uuid.UUID `json:"indent_id"`
	IndentNumber string    `json:"indent_number"`
	Reason       string    `json:"reason"`
}

// NewIndentRejectedEvent creates a new IndentRejectedEvent
func NewIndentRejectedEvent(indent *MaterialIndent) *IndentRejectedEvent {
	return &IndentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentRejected, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
		Reason:          indent.RejectReason,
	}
}

// EventType returns the event type name
func (e *IndentRejectedEvent) EventType() string {
	return EventTypeIndentRejected
}

// IndentRevertedEvent is raised when an indent is sent back for correction
type IndentRevertedEvent struct {
	shared.BaseDomainEvent
	IndentID     uuid.UUID `json:"indent_id"`
	IndentNumber string    `json:"indent_number"`
	RequesterID  uuid.UUID `json:"requester_id"`
	Reason       string    `json:"reason"`
}

// NewIndentRevertedEvent creates a new IndentRevertedEvent
func NewIndentRevertedEvent(indent *MaterialIndent) *IndentRevertedEvent {
	return &IndentRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentReverted, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
		RequesterID:     indent.RequesterID,
		Reason:          indent.RevertReason,
	}
}

// EventType returns the event type name
func (e *IndentRevertedEvent) EventType() string {
	return EventTypeIndentReverted
}

// IndentResubmittedEvent is raised when a corrected indent re-enters approval
type IndentResubmittedEvent struct {
	shared.BaseDomainEvent
	IndentID          uuid.UUID `json:"indent_id"`
	IndentNumber      string    `json:"indent_number"`
	ResubmissionCount int       `json:"resubmission_count"`
	Explanation       string    `json:"explanation"`
}

// NewIndentResubmittedEvent creates a new IndentResubmittedEvent
func NewIndentResubmittedEvent(indent *MaterialIndent) *IndentResubmittedEvent {
	return &IndentResubmittedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeIndentResubmitted, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:          indent.ID,
		IndentNumber:      indent.IndentNumber,
		ResubmissionCount: indent.ResubmissionCount,
		Explanation:       indent.ResubmissionNote,
	}
}

// EventType returns the event type name
func (e *IndentResubmittedEvent) EventType() string {
	return EventTypeIndentResubmitted
}

// IndentOrderedEvent is raised when purchasing places an order for the indent
type IndentOrderedEvent struct {
	shared.BaseDomainEvent
	IndentID     uuid.UUID `json:"indent_id"`
	IndentNumber string    `json:"indent_number"`
}

// NewIndentOrderedEvent creates a new IndentOrderedEvent
func NewIndentOrderedEvent(indent *MaterialIndent) *IndentOrderedEvent {
	return &IndentOrderedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentOrdered, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
	}
}

// EventType returns the event type name
func (e *IndentOrderedEvent) EventType() string {
	return EventTypeIndentOrdered
}

// IndentReceiptRecordedEvent is raised when a receipt is appended to an item
type IndentReceiptRecordedEvent struct {
	shared.BaseDomainEvent
	IndentID          uuid.UUID    `json:"indent_id"`
	IndentNumber      string       `json:"indent_number"`
	ItemID            uuid.UUID    `json:"item_id"`
	MaterialID        uuid.UUID    `json:"material_id"`
	MaterialName      string       `json:"material_name"`
	ReceiptID         uuid.UUID    `json:"receipt_id"`
	Quantity          int64        `json:"quantity"`
	ReceivedDate      time.Time    `json:"received_date"`
	RemainingQuantity int64        `json:"remaining_quantity"`
	IndentStatus      IndentStatus `json:"indent_status"`
}

// NewIndentReceiptRecordedEvent creates a new IndentReceiptRecordedEvent
func NewIndentReceiptRecordedEvent(indent *MaterialIndent, item *IndentItem, receipt *MaterialReceipt) *IndentReceiptRecordedEvent {
	return &IndentReceiptRecordedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeIndentReceiptRecorded, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:          indent.ID,
		IndentNumber:      indent.IndentNumber,
		ItemID:            item.ID,
		MaterialID:        item.MaterialID,
		MaterialName:      item.MaterialName,
		ReceiptID:         receipt.ID,
		Quantity:          receipt.Quantity,
		ReceivedDate:      receipt.ReceivedDate,
		RemainingQuantity: item.RemainingQuantity(),
		IndentStatus:      indent.Status,
	}
}

// EventType returns the event type name
func (e *IndentReceiptRecordedEvent) EventType() string {
	return EventTypeIndentReceiptRecorded
}

// IndentFullyReceivedEvent is raised once the last outstanding quantity of an
// indent arrives, alongside the receipt event for that final delivery
type IndentFullyReceivedEvent struct {
	shared.BaseDomainEvent
	IndentID      uuid.UUID `json:"indent_id"`
	IndentNumber  string    `json:"indent_number"`
	RequesterID   uuid.UUID `json:"requester_id"`
	TotalQuantity int64     `json:"total_quantity"`
}

// NewIndentFullyReceivedEvent creates a new IndentFullyReceivedEvent
func NewIndentFullyReceivedEvent(indent *MaterialIndent) *IndentFullyReceivedEvent {
	return &IndentFullyReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentFullyReceived, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
		RequesterID:     indent.RequesterID,
		TotalQuantity:   indent.TotalRequestedQuantity(),
	}
}

// EventType returns the event type name
func (e *IndentFullyReceivedEvent) EventType() string {
	return EventTypeIndentFullyReceived
}

// IndentClosedEvent is raised when a fully received indent is closed
type IndentClosedEvent struct {
	shared.BaseDomainEvent
	IndentID     uuid.UUID `json:"indent_id"`
	IndentNumber string    `json:"indent_number"`
}

// NewIndentClosedEvent creates a new IndentClosedEvent
func NewIndentClosedEvent(indent *MaterialIndent) *IndentClosedEvent {
	return &IndentClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIndentClosed, AggregateTypeMaterialIndent, indent.ID, indent.TenantID),
		IndentID:        indent.ID,
		IndentNumber:    indent.IndentNumber,
	}
}

// EventType returns the event type name
func (e *IndentClosedEvent) EventType() string {
	return EventTypeIndentClosed
}
