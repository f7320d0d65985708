// Package storage provides object storage backends for indent attachments.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	appprocurement "github.com/indentflow/backend/internal/application/procurement"
)

var _ appprocurement.ObjectStorageService = (*StubObjectStorage)(nil)

// StubObjectStorage is an in-memory ObjectStorageService for development and
// tests. URLs are deterministic fakes, and object existence is tracked in a
// map so the upload confirmation flow can be exercised without a real backend.
type StubObjectStorage struct {
	// BaseURL is the base URL for generated upload/download URLs
	BaseURL string

	// AlwaysExists makes ObjectExists return true regardless of uploads.
	// Enabled by default so dev flows work without simulated uploads.
	AlwaysExists bool

	mu      sync.RWMutex
	objects map[string]bool
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL:      "https://storage.example.com",
		AlwaysExists: true,
		objects:      make(map[string]bool),
	}
}

// MarkUploaded records a key as present, simulating a completed client upload
func (s *StubObjectStorage) MarkUploaded(storageKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = true
}

// GenerateUploadURL generates a fake presigned URL for uploading a file
func (s *StubObjectStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// GenerateDownloadURL generates a fake presigned URL for downloading a file
func (s *StubObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)
	return url, expiresAt, nil
}

// DeleteObject removes a key from the in-memory set
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether the key was marked uploaded, unless
// AlwaysExists is set
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	if s.AlwaysExists {
		return true, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[storageKey], nil
}
