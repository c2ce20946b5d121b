package mocks

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/coursehub/coursehub-api/internal/service"
	"github.com/google/uuid"
)

// MockFileStore implements service.FileStore in memory.
type MockFileStore struct {
	SaveImageFn      func(ctx context.Context, originalName string, data []byte) (string, error)
	PublishVideoFn   func(ctx context.Context, name string) error
	UnpublishVideoFn func(ctx context.Context, name string) error

	mu        sync.Mutex
	Images    map[string][]byte
	Published map[string]bool
	Deleted   []string
}

var _ service.FileStore = (*MockFileStore)(nil)

// NewMockFileStore creates an empty file store.
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{Images: make(map[string][]byte), Published: make(map[string]bool)}
}

// SaveImage stores data under a uuid name keeping the original extension.
func (m *MockFileStore) SaveImage(ctx context.Context, originalName string, data []byte) (string, error) {
	if m.SaveImageFn != nil {
		return m.SaveImageFn(ctx, originalName, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name := uuid.NewString() + filepath.Ext(originalName)
	m.Images[name] = data
	return name, nil
}

// DeleteImage removes a stored image.
func (m *MockFileStore) DeleteImage(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Images, name)
	return nil
}

// PublishVideo marks name as published.
func (m *MockFileStore) PublishVideo(ctx context.Context, name string) error {
	if m.PublishVideoFn != nil {
		return m.PublishVideoFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published[name] = true
	return nil
}

// UnpublishVideo clears the published mark of name.
func (m *MockFileStore) UnpublishVideo(ctx context.Context, name string) error {
	if m.UnpublishVideoFn != nil {
		return m.UnpublishVideoFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Published, name)
	return nil
}

// DeleteVideo records name as deleted and clears its published mark.
func (m *MockFileStore) DeleteVideo(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Published, name)
	m.Deleted = append(m.Deleted, name)
	return nil
}

// DeletedVideos returns the names passed to DeleteVideo.
func (m *MockFileStore) DeletedVideos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// HasImage reports whether an image named name is stored.
func (m *MockFileStore) HasImage(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Images[name]
	return ok
}

// IsPublished reports whether name is currently published.
func (m *MockFileStore) IsPublished(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Published[name]
}
