package procurement

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/indentflow/backend/internal/domain/procurement"
	"github.com/indentflow/backend/internal/domain/shared"
)

// MockObjectStorageService is a mock implementation of ObjectStorageService
type MockObjectStorageService struct {
	mock.Mock
}

func (m *MockObjectStorageService) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorageService) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorageService) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorageService) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

var _ ObjectStorageService = (*MockObjectStorageService)(nil)

func newTestAttachmentService() (*AttachmentService, *MockIndentRepository, *MockObjectStorageService) {
	mockRepo := new(MockIndentRepository)
	mockStorage := new(MockObjectStorageService)
	return NewAttachmentService(mockRepo, mockStorage), mockRepo, mockStorage
}

func draftIndentWithItem(t *testing.T, tenantID uuid.UUID) *procurement.MaterialIndent {
	t.Helper()
	indent, err := procurement.NewMaterialIndent(tenantID, "IND-2026-00001", uuid.New(), "Requester", "")
	require.NoError(t, err)
	machineID := uuid.New()
	_, err = indent.AddItem(procurement.NewItemInput{
		MaterialID:        uuid.New(),
		MaterialName:      "Bearing 6204",
		Unit:              "pcs",
		RequestedQuantity: 10,
		Purpose:           procurement.PurposeMachine,
		MachineID:         &machineID,
	})
	require.NoError(t, err)
	indent.ClearDomainEvents()
	return indent
}

func TestAttachmentService_InitiateItemImageUpload(t *testing.T) {
	service, mockRepo, mockStorage := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indent := draftIndentWithItem(t, tenantID)
	item := &indent.Items[0]
	expiresAt := time.Now().Add(15 * time.Minute)

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indent.ID).Return(indent, nil)
	mockStorage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "image/jpeg", 15*time.Minute).
		Return("https://storage.example.com/upload?token=xyz", expiresAt, nil)

	resp, err := service.InitiateItemImageUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indent.ID,
		ItemID:      item.ID,
		FileName:    "bearing-photo.jpg",
		ContentType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/upload?token=xyz", resp.UploadURL)
	expectedPrefix := fmt.Sprintf("tenants/%s/indents/%s/items/%s/images/", tenantID, indent.ID, item.ID)
	assert.True(t, strings.HasPrefix(resp.StorageKey, expectedPrefix))
	assert.True(t, strings.HasSuffix(resp.StorageKey, ".jpg"))
	mockRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
}

func TestAttachmentService_InitiateItemImageUpload_SVGRejected(t *testing.T) {
	service, mockRepo, _ := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indent := draftIndentWithItem(t, tenantID)

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indent.ID).Return(indent, nil)

	_, err := service.InitiateItemImageUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indent.ID,
		ItemID:      indent.Items[0].ID,
		FileName:    "diagram.svg",
		ContentType: "image/svg+xml",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONTENT_TYPE_NOT_ALLOWED", domainErr.Code)
}

func TestAttachmentService_InitiateItemImageUpload_NotEditable(t *testing.T) {
	service, mockRepo, _ := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indent := draftIndentWithItem(t, tenantID)
	require.NoError(t, indent.SubmitForApproval())
	require.NoError(t, indent.Approve(uuid.New(), "Approver", nil, ""))

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indent.ID).Return(indent, nil)

	_, err := service.InitiateItemImageUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indent.ID,
		ItemID:      indent.Items[0].ID,
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INDENT_NOT_EDITABLE", domainErr.Code)
}

func TestAttachmentService_InitiateItemImageUpload_ImageLimit(t *testing.T) {
	service, mockRepo, _ := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indent := draftIndentWithItem(t, tenantID)
	item := &indent.Items[0]
	for i := 0; i < 10; i++ {
		item.ImageKeys = append(item.ImageKeys, fmt.Sprintf("tenants/%s/key-%d.jpg", tenantID, i))
	}

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indent.ID).Return(indent, nil)

	_, err := service.InitiateItemImageUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indent.ID,
		ItemID:      item.ID,
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "IMAGE_LIMIT_EXCEEDED", domainErr.Code)
}

func TestAttachmentService_InitiateItemImageUpload_IndentNotFound(t *testing.T) {
	service, mockRepo, _ := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indentID := uuid.New()

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indentID).Return(nil, shared.ErrNotFound)

	_, err := service.InitiateItemImageUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indentID,
		ItemID:      uuid.New(),
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INDENT_NOT_FOUND", domainErr.Code)
}

func TestAttachmentService_InitiateItemImageUpload_ItemNotFound(t *testing.T) {
	service, mockRepo, _ := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indent := draftIndentWithItem(t, tenantID)

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indent.ID).Return(indent, nil)

	_, err := service.InitiateItemImageUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indent.ID,
		ItemID:      uuid.New(),
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ITEM_NOT_FOUND", domainErr.Code)
}

func TestAttachmentService_InitiateQuotationFileUpload(t *testing.T) {
	service, mockRepo, mockStorage := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indent := draftIndentWithItem(t, tenantID)
	item := &indent.Items[0]
	expiresAt := time.Now().Add(15 * time.Minute)

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indent.ID).Return(indent, nil)
	mockStorage.On("GenerateUploadURL", ctx, mock.AnythingOfType("string"), "application/pdf", 15*time.Minute).
		Return("https://storage.example.com/upload?token=abc", expiresAt, nil)

	resp, err := service.InitiateQuotationFileUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indent.ID,
		ItemID:      item.ID,
		FileName:    "vendor-quote.pdf",
		ContentType: "application/pdf",
	})

	require.NoError(t, err)
	expectedPrefix := fmt.Sprintf("tenants/%s/indents/%s/items/%s/quotations/", tenantID, indent.ID, item.ID)
	assert.True(t, strings.HasPrefix(resp.StorageKey, expectedPrefix))
	mockStorage.AssertExpectations(t)
}

func TestAttachmentService_InitiateQuotationFileUpload_ExecutableRejected(t *testing.T) {
	service, mockRepo, _ := newTestAttachmentService()
	ctx := context.Background()
	tenantID := uuid.New()
	indent := draftIndentWithItem(t, tenantID)

	mockRepo.On("FindByIDForTenant", ctx, tenantID, indent.ID).Return(indent, nil)

	_, err := service.InitiateQuotationFileUpload(ctx, tenantID, InitiateUploadRequest{
		IndentID:    indent.ID,
		ItemID:      indent.Items[0].ID,
		FileName:    "quote.exe",
		ContentType: "application/x-msdownload",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONTENT_TYPE_NOT_ALLOWED", domainErr.Code)
}

func TestAttachmentService_ConfirmUpload(t *testing.T) {
	tenantID := uuid.New()
	key := fmt.Sprintf("tenants/%s/indents/abc/items/def/images/x.jpg", tenantID)

	t.Run("object exists", func(t *testing.T) {
		service, _, mockStorage := newTestAttachmentService()
		mockStorage.On("ObjectExists", mock.Anything, key).Return(true, nil)

		err := service.ConfirmUpload(context.Background(), tenantID, key)
		require.NoError(t, err)
		mockStorage.AssertExpectations(t)
	})

	t.Run("object missing", func(t *testing.T) {
		service, _, mockStorage := newTestAttachmentService()
		mockStorage.On("ObjectExists", mock.Anything, key).Return(false, nil)

		err := service.ConfirmUpload(context.Background(), tenantID, key)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UPLOAD_NOT_FOUND", domainErr.Code)
	})

	t.Run("foreign tenant key rejected", func(t *testing.T) {
		service, _, mockStorage := newTestAttachmentService()
		foreignKey := fmt.Sprintf("tenants/%s/indents/abc/items/def/images/x.jpg", uuid.New())

		err := service.ConfirmUpload(context.Background(), tenantID, foreignKey)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STORAGE_KEY_FORBIDDEN", domainErr.Code)
		mockStorage.AssertNotCalled(t, "ObjectExists", mock.Anything, mock.Anything)
	})
}

func TestAttachmentService_DownloadURL(t *testing.T) {
	service, _, mockStorage := newTestAttachmentService()
	tenantID := uuid.New()
	key := fmt.Sprintf("tenants/%s/indents/abc/items/def/images/x.jpg", tenantID)
	expiresAt := time.Now().Add(1 * time.Hour)

	mockStorage.On("GenerateDownloadURL", mock.Anything, key, 1*time.Hour).
		Return("https://storage.example.com/download?token=xyz", expiresAt, nil)

	resp, err := service.DownloadURL(context.Background(), tenantID, key)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/download?token=xyz", resp.URL)
	assert.Equal(t, key, resp.StorageKey)
	mockStorage.AssertExpectations(t)
}

func TestAttachmentService_DeleteObject(t *testing.T) {
	service, _, mockStorage := newTestAttachmentService()
	tenantID := uuid.New()
	key := fmt.Sprintf("tenants/%s/indents/abc/items/def/images/x.jpg", tenantID)

	mockStorage.On("DeleteObject", mock.Anything, key).Return(nil)

	err := service.DeleteObject(context.Background(), tenantID, key)
	require.NoError(t, err)
	mockStorage.AssertExpectations(t)
}
