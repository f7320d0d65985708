package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/procurement"
	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/domain/shared/valueobject"
)

// IndentService handles material indent business operations. Domain events
// raised by the aggregate reach the bus through the transactional outbox,
// so the service holds no direct publisher.
type IndentService struct {
	indentRepo procurement.MaterialIndentRepository
}

// NewIndentService creates a new IndentService
func NewIndentService(indentRepo procurement.MaterialIndentRepository) *IndentService {
	return &IndentService{
		indentRepo: indentRepo,
	}
}

// Create creates a new material indent in draft status, optionally
// submitting it for approval in the same operation. Creation and submission
// are persisted together so a failed item validation leaves nothing behind.
func (s *IndentService) Create(ctx context.Context, tenantID, requesterID uuid.UUID, requesterName string, req CreateIndentRequest) (*IndentResponse, error) {
	indentNumber, err := s.indentRepo.GenerateIndentNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	indent, err := procurement.NewMaterialIndent(tenantID, indentNumber, requesterID, requesterName, req.Notes)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		if _, err := indent.AddItem(toNewItemInput(item)); err != nil {
			return nil, err
		}
	}

	if req.CreatedBy != nil {
		indent.CreatedBy = req.CreatedBy
	}

	if req.Submit {
		if err := indent.SubmitForApproval(); err != nil {
			return nil, err
		}
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveNewWithEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// GetByID retrieves an indent by ID
func (s *IndentService) GetByID(ctx context.Context, tenantID, indentID uuid.UUID) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}
	response := ToIndentResponse(indent)
	return &response, nil
}

// GetByIndentNumber retrieves an indent by its indent number
func (s *IndentService) GetByIndentNumber(ctx context.Context, tenantID uuid.UUID, indentNumber string) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIndentNumber(ctx, tenantID, indentNumber)
	if err != nil {
		return nil, err
	}
	response := ToIndentResponse(indent)
	return &response, nil
}

// List retrieves indents with filtering and pagination
func (s *IndentService) List(ctx context.Context, tenantID uuid.UUID, filter IndentListFilter) ([]IndentListItemResponse, int64, error) {
	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.RequesterID != nil {
		domainFilter.Filters["requester_id"] = *filter.RequesterID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	indents, err := s.indentRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.indentRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToIndentListItemResponses(indents), total, nil
}

// ListByRequester retrieves indents raised by a specific requester
func (s *IndentService) ListByRequester(ctx context.Context, tenantID, requesterID uuid.UUID, filter IndentListFilter) ([]IndentListItemResponse, int64, error) {
	filter.RequesterID = &requesterID
	return s.List(ctx, tenantID, filter)
}

// ListPendingReceipt retrieves indents open for receiving
func (s *IndentService) ListPendingReceipt(ctx context.Context, tenantID uuid.UUID, filter IndentListFilter) ([]IndentListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	indents, err := s.indentRepo.FindPendingReceipt(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	countFilter := shared.Filter{Filters: map[string]interface{}{
		"statuses": []string{
			string(procurement.IndentStatusOrdered),
			string(procurement.IndentStatusPartiallyReceived),
		},
	}}
	total, err := s.indentRepo.CountForTenant(ctx, tenantID, countFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToIndentListItemResponses(indents), total, nil
}

// Update updates indent header fields (only while editable)
func (s *IndentService) Update(ctx context.Context, tenantID, indentID uuid.UUID, req UpdateIndentRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if !indent.CanModifyItems() {
		return nil, shared.NewDomainError("INVALID_STATE", "Indent can only be modified in draft or reverted status")
	}

	if req.Notes != nil {
		indent.Notes = *req.Notes
		indent.IncrementVersion()
	}

	if err := s.indentRepo.SaveWithLock(ctx, indent); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// AddItem adds an item to an indent
func (s *IndentService) AddItem(ctx context.Context, tenantID, indentID uuid.UUID, req AddIndentItemRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if _, err := indent.AddItem(toNewItemInput(req.CreateIndentItemInput)); err != nil {
		return nil, err
	}

	if err := s.indentRepo.SaveWithLock(ctx, indent); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// UpdateItem replaces the requester-supplied fields of an item
func (s *IndentService) UpdateItem(ctx context.Context, tenantID, indentID, itemID uuid.UUID, req UpdateIndentItemRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.UpdateItem(itemID, toNewItemInput(req.CreateIndentItemInput)); err != nil {
		return nil, err
	}

	if err := s.indentRepo.SaveWithLock(ctx, indent); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// RemoveItem removes an item from an indent
func (s *IndentService) RemoveItem(ctx context.Context, tenantID, indentID, itemID uuid.UUID) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.indentRepo.SaveWithLock(ctx, indent); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// AddQuotation attaches a vendor quotation to an indent item
func (s *IndentService) AddQuotation(ctx context.Context, tenantID, indentID, itemID uuid.UUID, req AddQuotationRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if !indent.Status.CanManageQuotations() {
		return nil, shared.NewDomainError("INVALID_STATE", "Quotations cannot be changed in the current status")
	}

	item := indent.GetItem(itemID)
	if item == nil {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Indent item not found")
	}

	quotation, err := procurement.NewVendorQuotation(
		req.VendorName,
		req.ContactPerson,
		req.ContactPhone,
		valueobject.NewMoneyINR(req.QuotedAmount),
		req.Notes,
		req.AttachmentKeys,
	)
	if err != nil {
		return nil, err
	}
	if req.UnitPrice != nil {
		if err := quotation.SetUnitPrice(valueobject.NewMoneyINR(*req.UnitPrice)); err != nil {
			return nil, err
		}
	}

	if err := item.AddQuotation(quotation); err != nil {
		return nil, err
	}
	indent.IncrementVersion()

	if err := s.indentRepo.SaveWithLock(ctx, indent); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// RemoveQuotation detaches a vendor quotation from an indent item
func (s *IndentService) RemoveQuotation(ctx context.Context, tenantID, indentID, itemID, quotationID uuid.UUID) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if !indent.Status.CanManageQuotations() {
		return nil, shared.NewDomainError("INVALID_STATE", "Quotations cannot be changed in the current status")
	}

	item := indent.GetItem(itemID)
	if item == nil {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Indent item not found")
	}

	if err := item.RemoveQuotation(quotationID); err != nil {
		return nil, err
	}
	indent.IncrementVersion()

	if err := s.indentRepo.SaveWithLock(ctx, indent); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// Submit submits a draft indent for approval
func (s *IndentService) Submit(ctx context.Context, tenantID, indentID uuid.UUID) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.SubmitForApproval(); err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// Approve approves a pending indent, applying the transmitted vendor
// selections before the readiness check
func (s *IndentService) Approve(ctx context.Context, tenantID, indentID, approverID uuid.UUID, approverName string, req ApproveIndentRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	selections := make([]procurement.QuotationSelection, len(req.Selections))
	for i, sel := range req.Selections {
		selections[i] = procurement.QuotationSelection{
			ItemID:      sel.ItemID,
			QuotationID: sel.QuotationID,
		}
	}

	if err := indent.Approve(approverID, approverName, selections, req.Notes); err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// Reject rejects a pending indent
func (s *IndentService) Reject(ctx context.Context, tenantID, indentID, approverID uuid.UUID, approverName string, req RejectIndentRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.Reject(approverID, approverName, req.Reason); err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// Revert sends a pending indent back to the requester for correction
func (s *IndentService) Revert(ctx context.Context, tenantID, indentID, approverID uuid.UUID, approverName string, req RevertIndentRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.Revert(approverID, approverName, req.Reason); err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// Resubmit re-enters a corrected indent into the approval queue
func (s *IndentService) Resubmit(ctx context.Context, tenantID, indentID uuid.UUID, req ResubmitIndentRequest) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.Resubmit(req.Explanation); err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// MarkOrdered signals an approved indent has been ordered with its vendors
func (s *IndentService) MarkOrdered(ctx context.Context, tenantID, indentID uuid.UUID) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.MarkOrdered(); err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// RecordReceipt appends a receipt to an indent item and persists the
// resulting status, ledger entry and events in one transaction
func (s *IndentService) RecordReceipt(ctx context.Context, tenantID, indentID, receiverID uuid.UUID, receiverName string, req RecordReceiptRequest) (*ReceiptResultResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	receivedDate := time.Now()
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}

	receipt, err := indent.RecordReceipt(req.ItemID, req.Quantity, receivedDate, req.Notes, receiverID, receiverName)
	if err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	return &ReceiptResultResponse{
		Indent:          ToIndentResponse(indent),
		Receipt:         ToReceiptResponse(receipt),
		IsFullyReceived: indent.Status == procurement.IndentStatusFullyReceived,
	}, nil
}

// Close closes a fully received indent
func (s *IndentService) Close(ctx context.Context, tenantID, indentID uuid.UUID) (*IndentResponse, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return nil, err
	}

	if err := indent.Close(); err != nil {
		return nil, err
	}

	events := indent.GetDomainEvents()
	indent.ClearDomainEvents()

	if err := s.indentRepo.SaveWithLockAndEvents(ctx, indent, events); err != nil {
		return nil, err
	}

	response := ToIndentResponse(indent)
	return &response, nil
}

// Delete deletes an indent (only in draft or pending_approval, never after
// any receipt exists)
func (s *IndentService) Delete(ctx context.Context, tenantID, indentID uuid.UUID) error {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		return err
	}

	if !indent.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Indent can only be deleted in draft or pending approval status")
	}

	return s.indentRepo.DeleteForTenant(ctx, tenantID, indentID)
}

// GetStatusSummary retrieves indent counts grouped by status for a tenant
func (s *IndentService) GetStatusSummary(ctx context.Context, tenantID uuid.UUID) (*IndentStatusSummary, error) {
	summary := &IndentStatusSummary{}

	counts := []struct {
		status procurement.IndentStatus
		target *int64
	}{
		{procurement.IndentStatusDraft, &summary.Draft},
		{procurement.IndentStatusPendingApproval, &summary.PendingApproval},
		{procurement.IndentStatusApproved, &summary.Approved},
		{procurement.IndentStatusRejected, &summary.Rejected},
		{procurement.IndentStatusReverted, &summary.Reverted},
		{procurement.IndentStatusOrdered, &summary.Ordered},
		{procurement.IndentStatusPartiallyReceived, &summary.PartiallyReceived},
		{procurement.IndentStatusFullyReceived, &summary.FullyReceived},
		{procurement.IndentStatusClosed, &summary.Closed},
	}

	for _, c := range counts {
		count, err := s.indentRepo.CountByStatus(ctx, tenantID, c.status)
		if err != nil {
			return nil, err
		}
		*c.target = count
		summary.Total += count
	}

	return summary, nil
}

func toNewItemInput(input CreateIndentItemInput) procurement.NewItemInput {
	return procurement.NewItemInput{
		MaterialID:        input.MaterialID,
		MaterialName:      input.MaterialName,
		Unit:              input.Unit,
		Specifications:    input.Specifications,
		RequestedQuantity: input.RequestedQuantity,
		StockAtRequest:    input.StockAtRequest,
		Purpose:           procurement.IndentPurpose(input.Purpose),
		MachineID:         input.MachineID,
		MachineName:       input.MachineName,
		Notes:             input.Notes,
		ImageKeys:         input.ImageKeys,
	}
}
