package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/indentflow/backend/internal/domain/procurement"
)

// ==================== Material Indent DTOs ====================

// CreateIndentRequest represents a request to create a material indent
type CreateIndentRequest struct {
	Items     []CreateIndentItemInput `json:"items" binding:"required,min=1"`
	Notes     string                  `json:"notes" binding:"max=500"`
	Submit    bool                    `json:"submit"` // create and submit atomically
	CreatedBy *uuid.UUID              `json:"-"`      // from JWT context via handler
}

// CreateIndentItemInput represents an item in the create indent request
type CreateIndentItemInput struct {
	MaterialID        uuid.UUID  `json:"material_id" binding:"required"`
	MaterialName      string     `json:"material_name" binding:"required,min=1,max=200"`
	Unit              string     `json:"unit" binding:"required,min=1,max=20"`
	Specifications    string     `json:"specifications" binding:"max=30"`
	RequestedQuantity int64      `json:"requested_quantity" binding:"required,gt=0"`
	StockAtRequest    int64      `json:"stock_at_request" binding:"min=0"`
	Purpose           string     `json:"purpose" binding:"required,oneof=machine spare other"`
	MachineID         *uuid.UUID `json:"machine_id"`
	MachineName       string     `json:"machine_name" binding:"max=200"`
	Notes             string     `json:"notes" binding:"max=500"`
	ImageKeys         []string   `json:"image_keys" binding:"max=10"`
}

// UpdateIndentRequest represents a request to update indent header fields
type UpdateIndentRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

// AddIndentItemRequest represents a request to add an item to an indent
type AddIndentItemRequest struct {
	CreateIndentItemInput
}

// UpdateIndentItemRequest replaces the requester-supplied fields of an item
type UpdateIndentItemRequest struct {
	CreateIndentItemInput
}

// AddQuotationRequest represents a request to attach a vendor quotation
type AddQuotationRequest struct {
	VendorName     string           `json:"vendor_name" binding:"required,min=1,max=200"`
	ContactPerson  string           `json:"contact_person" binding:"max=100"`
	ContactPhone   string           `json:"contact_phone" binding:"max=30"`
	QuotedAmount   decimal.Decimal  `json:"quoted_amount" binding:"required"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	Notes          string           `json:"notes" binding:"max=500"`
	AttachmentKeys []string         `json:"attachment_keys" binding:"max=10"`
}

// QuotationSelectionInput names the chosen quotation for one item
type QuotationSelectionInput struct {
	ItemID      uuid.UUID `json:"item_id" binding:"required"`
	QuotationID uuid.UUID `json:"quotation_id" binding:"required"`
}

// ApproveIndentRequest represents an approval decision with the full vendor
// selection for every quoted item
type ApproveIndentRequest struct {
	Selections []QuotationSelectionInput `json:"selections" binding:"dive"`
	Notes      string                    `json:"notes" binding:"max=500"`
}

// RejectIndentRequest represents a terminal rejection with its reason
type RejectIndentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RevertIndentRequest sends an indent back to the requester for correction
type RevertIndentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ResubmitIndentRequest re-enters a corrected indent into approval
type ResubmitIndentRequest struct {
	Explanation string `json:"explanation" binding:"required,min=1,max=500"`
}

// RecordReceiptRequest represents a request to append a receipt to an item
type RecordReceiptRequest struct {
	ItemID       uuid.UUID  `json:"item_id" binding:"required"`
	Quantity     int64      `json:"quantity" binding:"required,gt=0"`
	ReceivedDate *time.Time `json:"received_date"`
	Notes        string     `json:"notes" binding:"max=500"`
}

// IndentListFilter represents filter options for the indent list
type IndentListFilter struct {
	Search      string     `form:"search"`
	RequesterID *uuid.UUID `form:"requester_id"`
	Status      *string    `form:"status"`
	Statuses    []string   `form:"statuses"`
	StartDate   *time.Time `form:"start_date"`
	EndDate     *time.Time `form:"end_date"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// IndentResponse represents a material indent in API responses
type IndentResponse struct {
	ID                uuid.UUID            `json:"id"`
	TenantID          uuid.UUID            `json:"tenant_id"`
	IndentNumber      string               `json:"indent_number"`
	RequestDate       time.Time            `json:"request_date"`
	Status            string               `json:"status"`
	RequesterID       uuid.UUID            `json:"requester_id"`
	RequesterName     string               `json:"requester_name"`
	ApproverID        *uuid.UUID           `json:"approver_id,omitempty"`
	ApproverName      string               `json:"approver_name,omitempty"`
	ApprovedAt        *time.Time           `json:"approved_at,omitempty"`
	RejectReason      string               `json:"reject_reason,omitempty"`
	RevertReason      string               `json:"revert_reason,omitempty"`
	ResubmissionNote  string               `json:"resubmission_note,omitempty"`
	ResubmissionCount int                  `json:"resubmission_count"`
	Notes             string               `json:"notes,omitempty"`
	Items             []IndentItemResponse `json:"items"`
	ItemCount         int                  `json:"item_count"`
	RequestedQuantity int64                `json:"requested_quantity"`
	ReceivedQuantity  int64                `json:"received_quantity"`
	ReceiveProgress   int                  `json:"receive_progress"`
	SubmittedAt       *time.Time           `json:"submitted_at,omitempty"`
	OrderedAt         *time.Time           `json:"ordered_at,omitempty"`
	ClosedAt          *time.Time           `json:"closed_at,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Version           int                  `json:"version"`
}

// IndentListItemResponse represents an indent in list responses (less detail)
type IndentListItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	IndentNumber      string     `json:"indent_number"`
	RequestDate       time.Time  `json:"request_date"`
	Status            string     `json:"status"`
	RequesterID       uuid.UUID  `json:"requester_id"`
	RequesterName     string     `json:"requester_name"`
	ItemCount         int        `json:"item_count"`
	ResubmissionCount int        `json:"resubmission_count"`
	ReceiveProgress   int        `json:"receive_progress"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IndentItemResponse represents an indent item in API responses
type IndentItemResponse struct {
	ID                uuid.UUID           `json:"id"`
	MaterialID        uuid.UUID           `json:"material_id"`
	MaterialName      string              `json:"material_name"`
	Unit              string              `json:"unit"`
	Specifications    string              `json:"specifications,omitempty"`
	RequestedQuantity int64               `json:"requested_quantity"`
	ReceivedQuantity  int64               `json:"received_quantity"`
	RemainingQuantity int64               `json:"remaining_quantity"`
	ReceiveProgress   int                 `json:"receive_progress"`
	StockAtRequest    int64               `json:"stock_at_request"`
	Purpose           string              `json:"purpose"`
	MachineID         *uuid.UUID          `json:"machine_id,omitempty"`
	MachineName       string              `json:"machine_name,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	ImageKeys         []string            `json:"image_keys,omitempty"`
	Quotations        []QuotationResponse `json:"quotations"`
	Receipts          []ReceiptResponse   `json:"receipts"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// QuotationResponse represents a vendor quotation in API responses
type QuotationResponse struct {
	ID             uuid.UUID        `json:"id"`
	VendorName     string           `json:"vendor_name"`
	ContactPerson  string           `json:"contact_person,omitempty"`
	ContactPhone   string           `json:"contact_phone,omitempty"`
	QuotedAmount   decimal.Decimal  `json:"quoted_amount"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	AttachmentKeys []string         `json:"attachment_keys,omitempty"`
	IsSelected     bool             `json:"is_selected"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ReceiptResponse represents a receipt ledger entry in API responses
type ReceiptResponse struct {
	ID           uuid.UUID `json:"id"`
	Quantity     int64     `json:"quantity"`
	ReceivedDate time.Time `json:"received_date"`
	Notes        string    `json:"notes,omitempty"`
	ReceiverID   uuid.UUID `json:"receiver_id"`
	ReceiverName string    `json:"receiver_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReceiptResultResponse represents the result of a receipt recording
type ReceiptResultResponse struct {
	Indent          IndentResponse  `json:"indent"`
	Receipt         ReceiptResponse `json:"receipt"`
	IsFullyReceived bool            `json:"is_fully_received"`
}

// ==================== Attachment DTOs ====================

// InitiateUploadRequest requests a presigned upload URL for an indent item
// image or a quotation file
type InitiateUploadRequest struct {
	IndentID    uuid.UUID `json:"indent_id" binding:"required"`
	ItemID      uuid.UUID `json:"item_id" binding:"required"`
	FileName    string    `json:"file_name" binding:"required,max=255"`
	ContentType string    `json:"content_type" binding:"required,max=100"`
}

// InitiateUploadResponse carries the presigned PUT URL and the storage key
// the client must submit back once the upload completes
type InitiateUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// DownloadURLResponse carries a presigned GET URL for a stored object
type DownloadURLResponse struct {
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IndentStatusSummary represents indent counts grouped by status
type IndentStatusSummary struct {
	Draft             int64 `json:"draft"`
	PendingApproval   int64 `json:"pending_approval"`
	Approved          int64 `json:"approved"`
	Rejected          int64 `json:"rejected"`
	Reverted          int64 `json:"reverted"`
	Ordered           int64 `json:"ordered"`
	PartiallyReceived int64 `json:"partially_received"`
	FullyReceived     int64 `json:"fully_received"`
	Closed            int64 `json:"closed"`
	Total             int64 `json:"total"`
}

// ToIndentResponse converts a domain MaterialIndent to a response DTO
func ToIndentResponse(indent *procurement.MaterialIndent) IndentResponse {
	items := make([]IndentItemResponse, len(indent.Items))
	for i := range indent.Items {
		items[i] = ToIndentItemResponse(&indent.Items[i])
	}

	return IndentResponse{
		ID:                indent.ID,
		TenantID:          indent.TenantID,
		IndentNumber:      indent.IndentNumber,
		RequestDate:       indent.RequestDate,
		Status:            string(indent.Status),
		RequesterID:       indent.RequesterID,
		RequesterName:     indent.RequesterName,
		ApproverID:        indent.ApproverID,
		ApproverName:      indent.ApproverName,
		ApprovedAt:        indent.ApprovedAt,
		RejectReason:      indent.RejectReason,
		RevertReason:      indent.RevertReason,
		ResubmissionNote:  indent.ResubmissionNote,
		ResubmissionCount: indent.ResubmissionCount,
		Notes:             indent.Notes,
		Items:             items,
		ItemCount:         indent.ItemCount(),
		RequestedQuantity: indent.TotalRequestedQuantity(),
		ReceivedQuantity:  indent.TotalReceivedQuantity(),
		ReceiveProgress:   indent.ReceiveProgress(),
		SubmittedAt:       indent.SubmittedAt,
		OrderedAt:         indent.OrderedAt,
		ClosedAt:          indent.ClosedAt,
		CreatedAt:         indent.CreatedAt,
		UpdatedAt:         indent.UpdatedAt,
		Version:           indent.Version,
	}
}

// ToIndentListItemResponse converts a domain MaterialIndent to a list DTO
func ToIndentListItemResponse(indent *procurement.MaterialIndent) IndentListItemResponse {
	return IndentListItemResponse{
		ID:                indent.ID,
		IndentNumber:      indent.IndentNumber,
		RequestDate:       indent.RequestDate,
		Status:            string(indent.Status),
		RequesterID:       indent.RequesterID,
		RequesterName:     indent.RequesterName,
		ItemCount:         indent.ItemCount(),
		ResubmissionCount: indent.ResubmissionCount,
		ReceiveProgress:   indent.ReceiveProgress(),
		SubmittedAt:       indent.SubmittedAt,
		CreatedAt:         indent.CreatedAt,
		UpdatedAt:         indent.UpdatedAt,
	}
}

// ToIndentListItemResponses converts a slice of domain indents to list DTOs
func ToIndentListItemResponses(indents []procurement.MaterialIndent) []IndentListItemResponse {
	responses := make([]IndentListItemResponse, len(indents))
	for i := range indents {
		responses[i] = ToIndentListItemResponse(&indents[i])
	}
	return responses
}

// ToIndentItemResponse converts a domain IndentItem to a response DTO
func ToIndentItemResponse(item *procurement.IndentItem) IndentItemResponse {
	quotations := make([]QuotationResponse, len(item.Quotations))
	for i := range item.Quotations {
		quotations[i] = ToQuotationResponse(&item.Quotations[i])
	}
	receipts := make([]ReceiptResponse, len(item.Receipts))
	for i := range item.Receipts {
		receipts[i] = ToReceiptResponse(&item.Receipts[i])
	}

	return IndentItemResponse{
		ID:                item.ID,
		MaterialID:        item.MaterialID,
		MaterialName:      item.MaterialName,
		Unit:              item.Unit,
		Specifications:    item.Specifications,
		RequestedQuantity: item.RequestedQuantity,
		ReceivedQuantity:  item.TotalReceived(),
		RemainingQuantity: item.RemainingQuantity(),
		ReceiveProgress:   item.ReceiveProgress(),
		StockAtRequest:    item.StockAtRequest,
		Purpose:           string(item.Purpose),
		MachineID:         item.MachineID,
		MachineName:       item.MachineName,
		Notes:             item.Notes,
		ImageKeys:         item.ImageKeys,
		Quotations:        quotations,
		Receipts:          receipts,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

// ToQuotationResponse converts a domain VendorQuotation to a response DTO
func ToQuotationResponse(q *procurement.VendorQuotation) QuotationResponse {
	var unitPrice *decimal.Decimal
	if q.UnitPrice != nil {
		p := q.UnitPrice.Amount()
		unitPrice = &p
	}
	return QuotationResponse{
		ID:             q.ID,
		VendorName:     q.VendorName,
		ContactPerson:  q.ContactPerson,
		ContactPhone:   q.ContactPhone,
		QuotedAmount:   q.QuotedAmount.Amount(),
		UnitPrice:      unitPrice,
		Notes:          q.Notes,
		AttachmentKeys: q.AttachmentKeys,
		IsSelected:     q.IsSelected,
		CreatedAt:      q.CreatedAt,
	}
}

// ToReceiptResponse converts a domain MaterialReceipt to a response DTO
func ToReceiptResponse(r *procurement.MaterialReceipt) ReceiptResponse {
	return ReceiptResponse{
		ID:           r.ID,
		Quantity:     r.Quantity,
		ReceivedDate: r.ReceivedDate,
		Notes:        r.Notes,
		ReceiverID:   r.ReceiverID,
		ReceiverName: r.ReceiverName,
		CreatedAt:    r.CreatedAt,
	}
}
