package procurement

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/indentflow/backend/internal/domain/procurement"
	"github.com/indentflow/backend/internal/domain/shared"
)

// AllowedImageContentTypes is the whitelist for indent item images.
// SECURITY: SVG files are explicitly NOT allowed due to XSS risk (can contain
// <script> tags and inline event handlers like onload, onerror, etc.)
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// AllowedDocumentContentTypes is the whitelist for quotation attachments.
// Quotations are typically scanned documents or spreadsheets from vendors.
var AllowedDocumentContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer (S3, MinIO, RustFS, etc.)
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AttachmentServiceConfig holds configuration for the attachment service
type AttachmentServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxImagesPerItem caps the image keys a single indent item may carry
	MaxImagesPerItem int
	// MaxFilesPerQuotation caps the attachment keys a single quotation may carry
	MaxFilesPerQuotation int
}

// DefaultAttachmentServiceConfig returns the default configuration
func DefaultAttachmentServiceConfig() AttachmentServiceConfig {
	return AttachmentServiceConfig{
		UploadURLExpiry:      15 * time.Minute,
		DownloadURLExpiry:    1 * time.Hour,
		MaxImagesPerItem:     10,
		MaxFilesPerQuotation: 10,
	}
}

// AttachmentService issues presigned upload and download URLs for indent item
// images and vendor quotation files. Files never pass through the API server:
// the client uploads directly to object storage with a presigned PUT, then
// submits the returned storage key through the regular item/quotation
// endpoints, where it lands in ImageKeys or AttachmentKeys.
type AttachmentService struct {
	indentRepo     procurement.MaterialIndentRepository
	storageService ObjectStorageService
	config         AttachmentServiceConfig
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	indentRepo procurement.MaterialIndentRepository,
	storageService ObjectStorageService,
) *AttachmentService {
	return &AttachmentService{
		indentRepo:     indentRepo,
		storageService: storageService,
		config:         DefaultAttachmentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *AttachmentService) SetConfig(config AttachmentServiceConfig) {
	s.config = config
}

// InitiateItemImageUpload validates the request against the indent and returns
// a presigned PUT URL plus the storage key the client must echo back in the
// item's image_keys once the upload completes.
func (s *AttachmentService) InitiateItemImageUpload(
	ctx context.Context,
	tenantID uuid.UUID,
	req InitiateUploadRequest,
) (*InitiateUploadResponse, error) {
	indent, item, err := s.resolveItem(ctx, tenantID, req.IndentID, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !indent.CanModifyItems() {
		return nil, shared.NewDomainError("INDENT_NOT_EDITABLE",
			"Item images can only be added while the indent is editable")
	}

	if len(item.ImageKeys) >= s.config.MaxImagesPerItem {
		return nil, shared.NewDomainError("IMAGE_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d images per item allowed", s.config.MaxImagesPerItem))
	}

	if !AllowedImageContentTypes[strings.ToLower(req.ContentType)] {
		return nil, shared.NewDomainError("CONTENT_TYPE_NOT_ALLOWED",
			fmt.Sprintf("Content type '%s' is not allowed for item images", req.ContentType))
	}

	storageKey := itemImageStorageKey(tenantID, req.IndentID, req.ItemID, req.FileName)
	return s.presignUpload(ctx, storageKey, req.ContentType)
}

// InitiateQuotationFileUpload returns a presigned PUT URL for a vendor quotation
// document. Quotation files are attached while the indent is editable, before
// the approver selects a winning quotation.
func (s *AttachmentService) InitiateQuotationFileUpload(
	ctx context.Context,
	tenantID uuid.UUID,
	req InitiateUploadRequest,
) (*InitiateUploadResponse, error) {
	indent, _, err := s.resolveItem(ctx, tenantID, req.IndentID, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !indent.CanModifyItems() {
		return nil, shared.NewDomainError("INDENT_NOT_EDITABLE",
			"Quotation files can only be added while the indent is editable")
	}

	if !AllowedDocumentContentTypes[strings.ToLower(req.ContentType)] {
		return nil, shared.NewDomainError("CONTENT_TYPE_NOT_ALLOWED",
			fmt.Sprintf("Content type '%s' is not allowed for quotation files", req.ContentType))
	}

	storageKey := quotationFileStorageKey(tenantID, req.IndentID, req.ItemID, req.FileName)
	return s.presignUpload(ctx, storageKey, req.ContentType)
}

// ConfirmUpload verifies that the object behind a previously issued storage key
// actually landed in storage. Handlers call this before accepting the key into
// an item or quotation, so dangling keys never reach the database.
func (s *AttachmentService) ConfirmUpload(ctx context.Context, tenantID uuid.UUID, storageKey string) error {
	if err := s.checkKeyOwnership(tenantID, storageKey); err != nil {
		return err
	}

	exists, err := s.storageService.ObjectExists(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("failed to verify uploaded object: %w", err)
	}
	if !exists {
		return shared.NewDomainError("UPLOAD_NOT_FOUND",
			"File was not uploaded to storage. Please upload the file first.")
	}
	return nil
}

// DownloadURL generates a presigned GET URL for a stored object
func (s *AttachmentService) DownloadURL(ctx context.Context, tenantID uuid.UUID, storageKey string) (*DownloadURLResponse, error) {
	if err := s.checkKeyOwnership(tenantID, storageKey); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storageService.GenerateDownloadURL(ctx, storageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return &DownloadURLResponse{
		StorageKey: storageKey,
		URL:        url,
		ExpiresAt:  expiresAt,
	}, nil
}

// DeleteObject removes an object from storage. Callers are responsible for
// removing the key from the owning item or quotation as well.
func (s *AttachmentService) DeleteObject(ctx context.Context, tenantID uuid.UUID, storageKey string) error {
	if err := s.checkKeyOwnership(tenantID, storageKey); err != nil {
		return err
	}

	if err := s.storageService.DeleteObject(ctx, storageKey); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *AttachmentService) resolveItem(
	ctx context.Context,
	tenantID, indentID, itemID uuid.UUID,
) (*procurement.MaterialIndent, *procurement.IndentItem, error) {
	indent, err := s.indentRepo.FindByIDForTenant(ctx, tenantID, indentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, shared.NewDomainError("INDENT_NOT_FOUND", "Material indent not found")
		}
		return nil, nil, err
	}

	item := indent.GetItem(itemID)
	if item == nil {
		return nil, nil, shared.NewDomainError("ITEM_NOT_FOUND", "Indent item not found")
	}
	return indent, item, nil
}

func (s *AttachmentService) presignUpload(ctx context.Context, storageKey, contentType string) (*InitiateUploadResponse, error) {
	url, expiresAt, err := s.storageService.GenerateUploadURL(ctx, storageKey, contentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &InitiateUploadResponse{
		StorageKey: storageKey,
		UploadURL:  url,
		ExpiresAt:  expiresAt,
	}, nil
}

// checkKeyOwnership rejects storage keys that do not belong to the tenant.
// Keys are opaque to clients but arrive back through the API, so the prefix
// is re-validated on every operation.
func (s *AttachmentService) checkKeyOwnership(tenantID uuid.UUID, storageKey string) error {
	prefix := fmt.Sprintf("tenants/%s/", tenantID.String())
	if !strings.HasPrefix(storageKey, prefix) {
		return shared.NewDomainError("STORAGE_KEY_FORBIDDEN", "Storage key does not belong to this tenant")
	}
	return nil
}

// itemImageStorageKey builds a unique storage key for an item image.
// Format: tenants/{tenantID}/indents/{indentID}/items/{itemID}/images/{uniqueID}{ext}
func itemImageStorageKey(tenantID, indentID, itemID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("tenants/%s/indents/%s/items/%s/images/%s%s",
		tenantID.String(),
		indentID.String(),
		itemID.String(),
		uuid.New().String(),
		ext,
	)
}

// quotationFileStorageKey builds a unique storage key for a quotation document.
// Format: tenants/{tenantID}/indents/{indentID}/items/{itemID}/quotations/{uniqueID}{ext}
func quotationFileStorageKey(tenantID, indentID, itemID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("tenants/%s/indents/%s/items/%s/quotations/%s%s",
		tenantID.String(),
		indentID.String(),
		itemID.String(),
		uuid.New().String(),
		ext,
	)
}
