package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/store"
)

// MockResetCodeStore implements store.ResetCodeStore in memory.
type MockResetCodeStore struct {
	CreateFn          func(ctx context.Context, code *domain.ResetCode) error
	GetLatestUnusedFn func(ctx context.Context, email string) (*domain.ResetCode, error)
	MarkUsedFn        func(ctx context.Context, code *domain.ResetCode) error
	RecordAttemptFn   func(ctx context.Context, code *domain.ResetCode) error

	mu     sync.Mutex
	codes  []*domain.ResetCode
	nextID int64
}

var _ store.ResetCodeStore = (*MockResetCodeStore)(nil)

// NewMockResetCodeStore creates an empty store.
func NewMockResetCodeStore() *MockResetCodeStore {
	return &MockResetCodeStore{nextID: 1}
}

// Codes returns copies of all stored codes in creation order.
func (m *MockResetCodeStore) Codes() []domain.ResetCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ResetCode, 0, len(m.codes))
	for _, c := range m.codes {
		out = append(out, *c)
	}
	return out
}

// Create implements store.ResetCodeStore.
func (m *MockResetCodeStore) Create(ctx context.Context, code *domain.ResetCode) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	code.ID = m.nextID
	m.nextID++
	cp := *code
	m.codes = append(m.codes, &cp)
	return nil
}

// GetLatestUnused implements store.ResetCodeStore.
func (m *MockResetCodeStore) GetLatestUnused(ctx context.Context, email string) (*domain.ResetCode, error) {
	if m.GetLatestUnusedFn != nil {
		return m.GetLatestUnusedFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.codes) - 1; i >= 0; i-- {
		c := m.codes[i]
		if c.Email == email && c.UsedAt == nil {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrResetCodeNotFound
}

// MarkUsed implements store.ResetCodeStore.
func (m *MockResetCodeStore) MarkUsed(ctx context.Context, code *domain.ResetCode) error {
	if m.MarkUsedFn != nil {
		return m.MarkUsedFn(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == code.ID {
			usedAt := *code.UsedAt
			c.UsedAt = &usedAt
			return nil
		}
	}
	return store.ErrResetCodeNotFound
}

// RecordFailedAttempt implements store.ResetCodeStore.
func (m *MockResetCodeStore) RecordFailedAttempt(ctx context.Context, code *domain.ResetCode) error {
	if m.RecordAttemptFn != nil {
		return m.RecordAttemptFn(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.codes {
		if c.ID == code.ID && c.UsedAt == nil {
			c.FailedAttempts++
			code.FailedAttempts = c.FailedAttempts
			return nil
		}
	}
	return store.ErrResetCodeNotFound
}

// WithTx implements store.ResetCodeStore.
func (m *MockResetCodeStore) WithTx(*sql.Tx) store.ResetCodeStore {
	return m
}
