package procurement

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/shared"
)

// IndentStatus represents the lifecycle status of a material indent
type IndentStatus string

const (
	IndentStatusDraft             IndentStatus = "draft"
	IndentStatusPendingApproval   IndentStatus = "pending_approval"
	IndentStatusApproved          IndentStatus = "approved"
	IndentStatusRejected          IndentStatus = "rejected"
	IndentStatusReverted          IndentStatus = "reverted"
	IndentStatusOrdered           IndentStatus = "ordered"
	IndentStatusPartiallyReceived IndentStatus = "partially_received"
	IndentStatusFullyReceived     IndentStatus = "fully_received"
	IndentStatusClosed            IndentStatus = "closed"
)

// IsValid checks if the status is a valid IndentStatus
func (s IndentStatus) IsValid() bool {
	switch s {
	case IndentStatusDraft, IndentStatusPendingApproval, IndentStatusApproved,
		IndentStatusRejected, IndentStatusReverted, IndentStatusOrdered,
		IndentStatusPartiallyReceived, IndentStatusFullyReceived, IndentStatusClosed:
		return true
	}
	return false
}

// String returns the string representation of IndentStatus
func (s IndentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s IndentStatus) CanTransitionTo(target IndentStatus) bool {
	switch s {
	case IndentStatusDraft:
		return target == IndentStatusPendingApproval
	case IndentStatusPendingApproval:
		return target == IndentStatusApproved || target == IndentStatusRejected || target == IndentStatusReverted
	case IndentStatusApproved:
		return target == IndentStatusOrdered
	case IndentStatusReverted:
		return target == IndentStatusPendingApproval
	case IndentStatusOrdered:
		return target == IndentStatusPartiallyReceived || target == IndentStatusFullyReceived
	case IndentStatusPartiallyReceived:
		return target == IndentStatusPartiallyReceived || target == IndentStatusFullyReceived
	case IndentStatusFullyReceived:
		return target == IndentStatusClosed
	case IndentStatusRejected, IndentStatusClosed:
		return false // Terminal states
	}
	return false
}

// CanEditItems returns true if items may be added, removed or changed in this status
func (s IndentStatus) CanEditItems() bool {
	return s == IndentStatusDraft || s == IndentStatusReverted
}

// CanManageQuotations returns true if vendor quotations may be edited in this status
func (s IndentStatus) CanManageQuotations() bool {
	return s == IndentStatusDraft || s == IndentStatusPendingApproval || s == IndentStatusReverted
}

// CanReceive returns true if receipts may be recorded in this status
func (s IndentStatus) CanReceive() bool {
	return s == IndentStatusOrdered || s == IndentStatusPartiallyReceived
}

// CanDelete returns true if the indent may still be deleted in this status
func (s IndentStatus) CanDelete() bool {
	return s == IndentStatusDraft || s == IndentStatusPendingApproval
}

// IsTerminal returns true if no further transition is possible from this status
func (s IndentStatus) IsTerminal() bool {
	return s == IndentStatusRejected || s == IndentStatusClosed
}

// QuotationSelection names the quotation chosen for one item during approval.
// Every item that carries quotations must appear exactly once; items without
// quotations are approved without a selection.
type QuotationSelection struct {
	ItemID      uuid.UUID `json:"item_id"`
	QuotationID uuid.UUID `json:"quotation_id"`
}

// MaterialIndent represents a material requisition aggregate root.
// It manages the approval workflow of a requisition from creation through
// vendor selection, ordering, partial receipts and closure.
type MaterialIndent struct {
	shared.TenantAggregateRoot
	IndentNumber      string       `gorm:"type:varchar(50);not null;uniqueIndex:idx_indent_tenant_number,priority:2"`
	RequestDate       time.Time    `gorm:"not null;index"`
	Status            IndentStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	RequesterID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	RequesterName     string       `gorm:"type:varchar(200);not null"`
	ApproverID        *uuid.UUID   `gorm:"type:uuid;index"`
	ApproverName      string       `gorm:"type:varchar(200)"`
	ApprovedAt        *time.Time
	RejectReason      string `gorm:"type:varchar(500)"`
	RevertReason      string `gorm:"type:varchar(500)"`
	ResubmissionNote  string `gorm:"type:varchar(500)"` // what changed relative to the revert reason
	ResubmissionCount int    `gorm:"not null;default:0"`
	Notes             string `gorm:"type:text"`
	Items             []IndentItem `gorm:"foreignKey:IndentID;references:ID"`
	SubmittedAt       *time.Time
	OrderedAt         *time.Time
	ClosedAt          *time.Time
}

// TableName returns the table name for GORM
func (MaterialIndent) TableName() string {
	return "material_indents"
}

// NewMaterialIndent creates a new indent in draft status
func NewMaterialIndent(tenantID uuid.UUID, indentNumber string, requesterID uuid.UUID, requesterName, notes string) (*MaterialIndent, error) {
	if indentNumber == "" {
		return nil, shared.NewDomainError("INVALID_INDENT_NUMBER", "Indent number cannot be empty")
	}
	if len(indentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INDENT_NUMBER", "Indent number cannot exceed 50 characters")
	}
	if requesterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester ID cannot be empty")
	}
	if requesterName == "" {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester name cannot be empty")
	}

	indent := &MaterialIndent{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		IndentNumber:        indentNumber,
		RequestDate:         time.Now(),
		Status:              IndentStatusDraft,
		RequesterID:         requesterID,
		RequesterName:       requesterName,
		Notes:               notes,
		Items:               make([]IndentItem, 0),
	}

	indent.AddDomainEvent(NewIndentCreatedEvent(indent))

	return indent, nil
}

// AddItem adds a new item to the indent.
// Only allowed while the indent is editable (draft or reverted).
func (m *MaterialIndent) AddItem(input NewItemInput) (*IndentItem, error) {
	if !m.Status.CanEditItems() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to an indent in %s status", m.Status))
	}

	item, err := NewIndentItem(m.ID, input)
	if err != nil {
		return nil, err
	}

	m.Items = append(m.Items, *item)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	return item, nil
}

// RemoveItem removes an item from the indent.
// Only allowed while the indent is editable; the last item cannot be removed
// because an indent must always hold at least one item.
func (m *MaterialIndent) RemoveItem(itemID uuid.UUID) error {
	if !m.Status.CanEditItems() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot remove items from an indent in %s status", m.Status))
	}
	if len(m.Items) == 1 && m.Items[0].ID == itemID {
		return shared.NewDomainError("NO_ITEMS", "An indent must keep at least one item")
	}

	for idx, item := range m.Items {
		if item.ID == itemID {
			m.Items = append(m.Items[:idx], m.Items[idx+1:]...)
			m.UpdatedAt = time.Now()
			m.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Indent item not found")
}

// UpdateItem applies a correction to an existing item.
// Only allowed while the indent is editable (draft or reverted); used by the
// requester to fix an indent that was sent back for correction.
func (m *MaterialIndent) UpdateItem(itemID uuid.UUID, input NewItemInput) error {
	if !m.Status.CanEditItems() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update items of an indent in %s status", m.Status))
	}

	for idx := range m.Items {
		if m.Items[idx].ID == itemID {
			if err := m.Items[idx].apply(input); err != nil {
				return err
			}
			m.UpdatedAt = time.Now()
			m.IncrementVersion()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Indent item not found")
}

// SubmitForApproval transitions the indent from draft to pending_approval.
// Every item must reference a material, request a positive quantity and carry
// either a machine reference or mandatory notes depending on its purpose.
func (m *MaterialIndent) SubmitForApproval() error {
	if !m.Status.CanTransitionTo(IndentStatusPendingApproval) || m.Status != IndentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit an indent in %s status for approval", m.Status))
	}
	if len(m.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit an indent without items")
	}
	for i := range m.Items {
		if err := m.Items[i].validateForSubmission(); err != nil {
			return err
		}
	}

	now := time.Now()
	m.Status = IndentStatusPendingApproval
	m.SubmittedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentSubmittedEvent(m))

	return nil
}

// CanApprove reports whether the indent is ready for approval: every item
// that owns at least one quotation must have exactly one selected.
// The predicate is recomputed from current state on every call.
func (m *MaterialIndent) CanApprove() bool {
	if len(m.Items) == 0 {
		return false
	}
	for i := range m.Items {
		if !m.Items[i].HasValidQuotationSelection() {
			return false
		}
	}
	return true
}

// Approve transitions the indent from pending_approval to approved.
// The caller transmits the vendor selection for every item that carries
// quotations; each selection is applied before the readiness check so that
// per-item choices are persisted, not just the first one.
func (m *MaterialIndent) Approve(approverID uuid.UUID, approverName string, selections []QuotationSelection, notes string) error {
	if !m.Status.CanTransitionTo(IndentStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve an indent in %s status", m.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	for _, sel := range selections {
		item := m.GetItem(sel.ItemID)
		if item == nil {
			return shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Indent item %s not found", sel.ItemID))
		}
		if err := item.SelectQuotation(sel.QuotationID); err != nil {
			return err
		}
	}

	if !m.CanApprove() {
		return shared.NewDomainError("NO_QUOTATION_SELECTED", "Every item with quotations must have exactly one selected quotation")
	}

	now := time.Now()
	m.Status = IndentStatusApproved
	m.ApproverID = &approverID
	m.ApproverName = approverName
	m.ApprovedAt = &now
	if notes != "" {
		m.Notes = notes
	}
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentApprovedEvent(m))

	return nil
}

// Reject transitions the indent from pending_approval to rejected.
// A rejection is terminal for this submission; a non-empty reason is required.
func (m *MaterialIndent) Reject(approverID uuid.UUID, approverName, reason string) error {
	if !m.Status.CanTransitionTo(IndentStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject an indent in %s status", m.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	m.Status = IndentStatusRejected
	m.ApproverID = &approverID
	m.ApproverName = approverName
	m.RejectReason = reason
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentRejectedEvent(m))

	return nil
}

// Revert sends the indent back to the requester for correction.
// Unlike rejection the requester may fix the indent and resubmit it.
func (m *MaterialIndent) Revert(approverID uuid.UUID, approverName, reason string) error {
	if !m.Status.CanTransitionTo(IndentStatusReverted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot revert an indent in %s status", m.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Revert reason is required")
	}

	now := time.Now()
	m.Status = IndentStatusReverted
	m.ApproverID = &approverID
	m.ApproverName = approverName
	m.RevertReason = reason
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentRevertedEvent(m))

	return nil
}

// Resubmit transitions a reverted indent back to pending_approval.
// The requester must explain what changed relative to the revert reason;
// the original revert reason is retained for audit.
func (m *MaterialIndent) Resubmit(explanation string) error {
	if !m.Status.CanTransitionTo(IndentStatusPendingApproval) || m.Status != IndentStatusReverted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot resubmit an indent in %s status", m.Status))
	}
	if explanation == "" {
		return shared.NewDomainError("INVALID_EXPLANATION", "Resubmission explanation is required")
	}
	for i := range m.Items {
		if err := m.Items[i].validateForSubmission(); err != nil {
			return err
		}
	}

	now := time.Now()
	m.Status = IndentStatusPendingApproval
	m.ResubmissionNote = explanation
	m.ResubmissionCount++
	m.SubmittedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentResubmittedEvent(m))

	return nil
}

// MarkOrdered signals that a purchase order has been placed against the
// approved vendor selections. Purchasing detail lives outside this core;
// only the status transition is owned here.
func (m *MaterialIndent) MarkOrdered() error {
	if !m.Status.CanTransitionTo(IndentStatusOrdered) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark an indent in %s status as ordered", m.Status))
	}

	now := time.Now()
	m.Status = IndentStatusOrdered
	m.OrderedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentOrderedEvent(m))

	return nil
}

// RecordReceipt appends a receipt to one item and recomputes the indent
// status: fully_received once every item is complete, partially_received
// otherwise. Status, ledger and audit fields change together; the caller
// persists the aggregate atomically.
func (m *MaterialIndent) RecordReceipt(itemID uuid.UUID, quantity int64, receivedDate time.Time, notes string, receiverID uuid.UUID, receiverName string) (*MaterialReceipt, error) {
	if !m.Status.CanReceive() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record a receipt for an indent in %s status", m.Status))
	}

	item := m.GetItem(itemID)
	if item == nil {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Indent item not found")
	}

	receipt, err := item.AddReceipt(quantity, receivedDate, notes, receiverID, receiverName)
	if err != nil {
		return nil, err
	}

	if m.IsFullyReceived() {
		m.Status = IndentStatusFullyReceived
	} else {
		m.Status = IndentStatusPartiallyReceived
	}

	m.UpdatedAt = time.Now()
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentReceiptRecordedEvent(m, item, receipt))
	if m.Status == IndentStatusFullyReceived {
		m.AddDomainEvent(NewIndentFullyReceivedEvent(m))
	}

	return receipt, nil
}

// Close administratively closes a fully received indent.
// No further mutation is permitted afterwards.
func (m *MaterialIndent) Close() error {
	if !m.Status.CanTransitionTo(IndentStatusClosed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close an indent in %s status", m.Status))
	}

	now := time.Now()
	m.Status = IndentStatusClosed
	m.ClosedAt = &now
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewIndentClosedEvent(m))

	return nil
}

// IsFullyReceived returns true if every item has received its full requested quantity
func (m *MaterialIndent) IsFullyReceived() bool {
	for i := range m.Items {
		if !m.Items[i].IsFullyReceived() {
			return false
		}
	}
	return len(m.Items) > 0
}

// HasAnyReceipt returns true if any item carries at least one receipt
func (m *MaterialIndent) HasAnyReceipt() bool {
	for i := range m.Items {
		if len(m.Items[i].Receipts) > 0 {
			return true
		}
	}
	return false
}

// TotalRequestedQuantity returns the requested quantity summed over all items
func (m *MaterialIndent) TotalRequestedQuantity() int64 {
	var total int64
	for i := range m.Items {
		total += m.Items[i].RequestedQuantity
	}
	return total
}

// TotalReceivedQuantity returns the received quantity summed over all items
func (m *MaterialIndent) TotalReceivedQuantity() int64 {
	var total int64
	for i := range m.Items {
		total += m.Items[i].TotalReceived()
	}
	return total
}

// ReceiveProgress returns the receiving progress as a percentage (0-100)
func (m *MaterialIndent) ReceiveProgress() int {
	requested := m.TotalRequestedQuantity()
	if requested == 0 {
		return 0
	}
	return progressPercent(m.TotalReceivedQuantity(), requested)
}

// GetItem returns an item by its ID
func (m *MaterialIndent) GetItem(itemID uuid.UUID) *IndentItem {
	for idx := range m.Items {
		if m.Items[idx].ID == itemID {
			return &m.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of items in the indent
func (m *MaterialIndent) ItemCount() int {
	return len(m.Items)
}

// IsDraft returns true if the indent is in draft status
func (m *MaterialIndent) IsDraft() bool {
	return m.Status == IndentStatusDraft
}

// IsPendingApproval returns true if the indent awaits an approval decision
func (m *MaterialIndent) IsPendingApproval() bool {
	return m.Status == IndentStatusPendingApproval
}

// CanModifyItems returns true if items may currently be edited
func (m *MaterialIndent) CanModifyItems() bool {
	return m.Status.CanEditItems()
}

// CanDelete returns true if the indent may be deleted. Once any receipt
// exists the indent is retained indefinitely as an audit record.
func (m *MaterialIndent) CanDelete() bool {
	return m.Status.CanDelete() && !m.HasAnyReceipt()
}
