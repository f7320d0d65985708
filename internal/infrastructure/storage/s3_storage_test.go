package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/indentflow/backend/internal/infrastructure/config"
)

// attachmentStorageConfig is a minimal valid config pointing at a local
// S3-compatible endpoint. Tests mutate copies of it.
func attachmentStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:            "indent-attachments",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func newTestStorage(t *testing.T) *S3ObjectStorage {
	t.Helper()
	store, err := NewS3ObjectStorage(attachmentStorageConfig())
	require.NoError(t, err)
	return store
}

func TestNewS3ObjectStorage_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.StorageConfig)
		wantErr string
	}{
		{
			name:    "missing bucket",
			mutate:  func(cfg *config.StorageConfig) { cfg.Bucket = "" },
			wantErr: "bucket is required",
		},
		{
			name:    "missing access key",
			mutate:  func(cfg *config.StorageConfig) { cfg.AccessKey = "" },
			wantErr: "access key is required",
		},
		{
			name:    "missing secret key",
			mutate:  func(cfg *config.StorageConfig) { cfg.SecretKey = "" },
			wantErr: "secret key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := attachmentStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("valid config", func(t *testing.T) {
		store, err := NewS3ObjectStorage(attachmentStorageConfig())
		require.NoError(t, err)
		require.NotNil(t, store)
		assert.Equal(t, "indent-attachments", store.GetBucket())
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})
}

func TestNewS3ObjectStorage_Defaults(t *testing.T) {
	t.Run("region and endpoint default when empty", func(t *testing.T) {
		cfg := attachmentStorageConfig()
		cfg.Region = ""
		cfg.Endpoint = ""
		store, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		require.NotNil(t, store)
	})

	t.Run("presign expiration defaults to 15 minutes", func(t *testing.T) {
		cfg := attachmentStorageConfig()
		cfg.PresignExpiration = 0
		store, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, store.presignExpiration)
	})

	t.Run("bare endpoint gets http scheme", func(t *testing.T) {
		cfg := attachmentStorageConfig()
		cfg.Endpoint = "localhost:9000"
		cfg.UseSSL = false
		_, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
	})

	t.Run("bare endpoint gets https scheme when SSL enabled", func(t *testing.T) {
		cfg := attachmentStorageConfig()
		cfg.Endpoint = "minio.plant.internal:9000"
		cfg.UseSSL = true
		_, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
	})
}

func TestS3ObjectStorage_Options(t *testing.T) {
	t.Run("WithLogger", func(t *testing.T) {
		store, err := NewS3ObjectStorage(attachmentStorageConfig(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.NotNil(t, store.logger)
	})

	t.Run("WithPresignExpiration", func(t *testing.T) {
		store, err := NewS3ObjectStorage(attachmentStorageConfig(), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, store.presignExpiration)
	})
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	t.Run("empty storage key", func(t *testing.T) {
		url, _, err := store.GenerateUploadURL(ctx, "", "application/pdf", 15*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
		assert.Empty(t, url)
	})

	t.Run("presigns a PUT for a quotation file", func(t *testing.T) {
		key := "indents/IND-2026-0042/quotation.pdf"
		url, expiresAt, err := store.GenerateUploadURL(ctx, key, "application/pdf", 15*time.Minute)
		require.NoError(t, err)
		assert.Contains(t, url, "localhost:9000")
		assert.Contains(t, url, "indent-attachments")
		assert.True(t, strings.Contains(url, key) || strings.Contains(url, "indents%2FIND-2026-0042%2Fquotation.pdf"))
		assert.True(t, expiresAt.After(time.Now()))
		assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))
	})

	t.Run("zero expiry falls back to the default", func(t *testing.T) {
		url, expiresAt, err := store.GenerateUploadURL(ctx, "indents/IND-2026-0042/item-1.jpg", "image/jpeg", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.True(t, expiresAt.After(time.Now()))
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	t.Run("empty storage key", func(t *testing.T) {
		url, _, err := store.GenerateDownloadURL(ctx, "", 15*time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
		assert.Empty(t, url)
	})

	t.Run("presigns a GET", func(t *testing.T) {
		url, expiresAt, err := store.GenerateDownloadURL(ctx, "indents/IND-2026-0042/quotation.pdf", time.Hour)
		require.NoError(t, err)
		assert.Contains(t, url, "localhost:9000")
		assert.Contains(t, url, "indent-attachments")
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("zero expiry falls back to the default", func(t *testing.T) {
		url, expiresAt, err := store.GenerateDownloadURL(ctx, "indents/IND-2026-0042/quotation.pdf", 0)
		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.True(t, expiresAt.After(time.Now()))
	})
}

func TestS3ObjectStorage_KeyValidation(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	t.Run("DeleteObject rejects empty key", func(t *testing.T) {
		err := store.DeleteObject(ctx, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})

	t.Run("ObjectExists rejects empty key", func(t *testing.T) {
		exists, err := store.ObjectExists(ctx, "")
		require.Error(t, err)
		assert.False(t, exists)
		assert.Contains(t, err.Error(), "storage key is required")
	})

	t.Run("Upload rejects empty key", func(t *testing.T) {
		err := store.Upload(ctx, "", []byte("x"), "text/plain")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}

// Integration tests below need an S3-compatible server on localhost:9000.
// Enable with INTEGRATION_TEST=1.

func newIntegrationStorage(t *testing.T) *S3ObjectStorage {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("set INTEGRATION_TEST=1 and run MinIO/RustFS on localhost:9000")
	}

	cfg := &config.StorageConfig{
		Bucket:            "indentflow-integration",
		AccessKey:         "minioadmin",
		SecretKey:         "minioadmin",
		Endpoint:          "http://localhost:9000",
		Region:            "us-east-1",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}

	store, err := NewS3ObjectStorage(cfg, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	require.NoError(t, store.EnsureBucket(context.Background()))
	return store
}

func TestIntegration_AttachmentLifecycle(t *testing.T) {
	store := newIntegrationStorage(t)
	ctx := context.Background()
	key := "indents/IND-2026-0001/quotation.pdf"

	require.NoError(t, store.Upload(ctx, key, []byte("%PDF-1.4 test"), "application/pdf"))

	exists, err := store.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	downloadURL, _, err := store.GenerateDownloadURL(ctx, key, 15*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, downloadURL)

	require.NoError(t, store.DeleteObject(ctx, key))

	exists, err = store.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIntegration_EnsureBucketIsIdempotent(t *testing.T) {
	store := newIntegrationStorage(t)
	require.NoError(t, store.EnsureBucket(context.Background()))
}
