package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	procurementapp "github.com/indentflow/backend/internal/application/procurement"
	"github.com/indentflow/backend/internal/interfaces/http/middleware"
)

// IndentHandler handles material indent API endpoints
type IndentHandler struct {
	BaseHandler
	indentService *procurementapp.IndentService
}

// NewIndentHandler creates a new IndentHandler
func NewIndentHandler(indentService *procurementapp.IndentService) *IndentHandler {
	return &IndentHandler{
		indentService: indentService,
	}
}

// actor resolves the authenticated user's ID and display name from the
// request context.
func actor(c *gin.Context) (uuid.UUID, string, error) {
	userID, err := getUserID(c)
	if err != nil {
		return uuid.Nil, "", err
	}
	name := middleware.GetJWTUsername(c)
	if name == "" {
		name = c.GetHeader("X-User-Name")
	}
	return userID, name, nil
}

// pathUUID parses a UUID path parameter
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

// Create creates a material indent, optionally submitting it in the same call
func (h *IndentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requesterID, requesterName, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req procurementapp.CreateIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.Create(c.Request.Context(), tenantID, requesterID, requesterName, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, indent)
}

// GetByID retrieves a material indent with items, quotations and receipts
func (h *IndentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	indent, err := h.indentService.GetByID(c.Request.Context(), tenantID, indentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// GetByNumber retrieves a material indent by its indent number
func (h *IndentHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Indent number is required")
		return
	}

	indent, err := h.indentService.GetByIndentNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// List retrieves a paginated list of indents with optional filtering
func (h *IndentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter procurementapp.IndentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	indents, total, err := h.indentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, indents, total, filter.Page, filter.PageSize)
}

// ListMine retrieves the authenticated user's own indents
func (h *IndentHandler) ListMine(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter procurementapp.IndentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	indents, total, err := h.indentService.ListByRequester(c.Request.Context(), tenantID, requesterID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, indents, total, filter.Page, filter.PageSize)
}

// ListPendingReceipt retrieves indents that still have outstanding deliveries
func (h *IndentHandler) ListPendingReceipt(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter procurementapp.IndentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	indents, total, err := h.indentService.ListPendingReceipt(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, indents, total, filter.Page, filter.PageSize)
}

// StatusSummary returns indent counts grouped by lifecycle status
func (h *IndentHandler) StatusSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.indentService.GetStatusSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// Update updates the header fields of a draft or reverted indent
func (h *IndentHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	var req procurementapp.UpdateIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.Update(c.Request.Context(), tenantID, indentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Delete removes a draft indent that has no recorded receipts
func (h *IndentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	if err := h.indentService.Delete(c.Request.Context(), tenantID, indentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddItem appends an item to an editable indent
func (h *IndentHandler) AddItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	var req procurementapp.AddIndentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.AddItem(c.Request.Context(), tenantID, indentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// UpdateItem replaces the requester-supplied fields of an item
func (h *IndentHandler) UpdateItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req procurementapp.UpdateIndentItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.UpdateItem(c.Request.Context(), tenantID, indentID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// RemoveItem removes an item from an editable indent
func (h *IndentHandler) RemoveItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	indent, err := h.indentService.RemoveItem(c.Request.Context(), tenantID, indentID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// AddQuotation attaches a vendor quotation to an item
func (h *IndentHandler) AddQuotation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	var req procurementapp.AddQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.AddQuotation(c.Request.Context(), tenantID, indentID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// RemoveQuotation removes a vendor quotation from an item
func (h *IndentHandler) RemoveQuotation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	itemID, ok := pathUUID(c, "item_id")
	if !ok {
		h.BadRequest(c, "Invalid item ID format")
		return
	}

	quotationID, ok := pathUUID(c, "quotation_id")
	if !ok {
		h.BadRequest(c, "Invalid quotation ID format")
		return
	}

	indent, err := h.indentService.RemoveQuotation(c.Request.Context(), tenantID, indentID, itemID, quotationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Submit moves a draft indent into the approval queue
func (h *IndentHandler) Submit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	indent, err := h.indentService.Submit(c.Request.Context(), tenantID, indentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Approve approves a pending indent, recording the vendor selection per item
func (h *IndentHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	approverID, approverName, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req procurementapp.ApproveIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.Approve(c.Request.Context(), tenantID, indentID, approverID, approverName, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Reject terminally rejects a pending indent
func (h *IndentHandler) Reject(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	approverID, approverName, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req procurementapp.RejectIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.Reject(c.Request.Context(), tenantID, indentID, approverID, approverName, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Revert sends a pending indent back to the requester for correction
func (h *IndentHandler) Revert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	approverID, approverName, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req procurementapp.RevertIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.Revert(c.Request.Context(), tenantID, indentID, approverID, approverName, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// Resubmit re-enters a corrected indent into the approval queue
func (h *IndentHandler) Resubmit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	var req procurementapp.ResubmitIndentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	indent, err := h.indentService.Resubmit(c.Request.Context(), tenantID, indentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// MarkOrdered records that purchase orders were placed for an approved indent
func (h *IndentHandler) MarkOrdered(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	indent, err := h.indentService.MarkOrdered(c.Request.Context(), tenantID, indentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}

// RecordReceipt appends a delivery receipt to an item's ledger
func (h *IndentHandler) RecordReceipt(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	receiverID, receiverName, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req procurementapp.RecordReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.indentService.RecordReceipt(c.Request.Context(), tenantID, indentID, receiverID, receiverName, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Close archives a fully received indent
func (h *IndentHandler) Close(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	indentID, ok := pathUUID(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid indent ID format")
		return
	}

	indent, err := h.indentService.Close(c.Request.Context(), tenantID, indentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, indent)
}
