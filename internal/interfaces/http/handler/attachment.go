package handler

import (
	"github.com/gin-gonic/gin"

	procurementapp "github.com/indentflow/backend/internal/application/procurement"
)

// AttachmentHandler handles presigned upload/download endpoints for indent
// item images and vendor quotation files.
type AttachmentHandler struct {
	BaseHandler
	attachmentService *procurementapp.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *procurementapp.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// ConfirmUploadRequest carries the storage key of a completed client upload
type ConfirmUploadRequest struct {
	StorageKey string `json:"storage_key" binding:"required,max=512"`
}

// StorageKeyQuery binds the storage key from the query string
type StorageKeyQuery struct {
	StorageKey string `form:"storage_key" binding:"required,max=512"`
}

// InitiateItemImageUpload issues a presigned PUT URL for an indent item image
func (h *AttachmentHandler) InitiateItemImageUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req procurementapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.attachmentService.InitiateItemImageUpload(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// InitiateQuotationFileUpload issues a presigned PUT URL for a quotation file
func (h *AttachmentHandler) InitiateQuotationFileUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req procurementapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.attachmentService.InitiateQuotationFileUpload(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfirmUpload verifies that a previously presigned upload actually landed
// in object storage before the client references its key.
func (h *AttachmentHandler) ConfirmUpload(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.attachmentService.ConfirmUpload(c.Request.Context(), tenantID, req.StorageKey); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"storage_key": req.StorageKey})
}

// DownloadURL issues a presigned GET URL for a stored attachment
func (h *AttachmentHandler) DownloadURL(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StorageKeyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.attachmentService.DownloadURL(c.Request.Context(), tenantID, query.StorageKey)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes an uploaded object that is no longer referenced
func (h *AttachmentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StorageKeyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.attachmentService.DeleteObject(c.Request.Context(), tenantID, query.StorageKey); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
