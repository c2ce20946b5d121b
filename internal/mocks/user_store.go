package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/store"
)

// MockUserStore implements store.UserStore in memory.
type MockUserStore struct {
	CreateFn         func(ctx context.Context, user *domain.User) error
	GetByIDFn        func(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameFn  func(ctx context.Context, username string) (*domain.User, error)
	GetByEmailFn     func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn         func(ctx context.Context, user *domain.User) error
	UpdateRoleFn     func(ctx context.Context, id int64, role domain.Role) error
	UpdatePasswordFn func(ctx context.Context, email, hashedPassword string) error
	DeleteFn         func(ctx context.Context, id int64) error

	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[int64]*domain.User), nextID: 1}
}

// Seed stores copies of users as they are, assigning ids to those without one.
func (m *MockUserStore) Seed(users ...*domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		if u.ID == 0 {
			u.ID = m.nextID
		}
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
		cp := *u
		m.users[u.ID] = &cp
	}
}

func (m *MockUserStore) findLocked(match func(*domain.User) bool) *domain.User {
	for _, u := range m.users {
		if match(u) {
			return u
		}
	}
	return nil
}

// Create implements store.UserStore and enforces username and email uniqueness.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findLocked(func(u *domain.User) bool { return u.Username == user.Username }) != nil {
		return store.ErrUsernameExists
	}
	if m.findLocked(func(u *domain.User) bool { return u.Email == user.Email }) != nil {
		return store.ErrEmailExists
	}
	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrUserNotFound
}

// GetByUsername implements store.UserStore.
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.findLocked(func(u *domain.User) bool { return u.Username == username }); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.findLocked(func(u *domain.User) bool { return u.Email == email }); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, store.ErrUserNotFound
}

// ExistsByUsername implements store.UserStore.
func (m *MockUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ExistsByEmail implements store.UserStore.
func (m *MockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List implements store.UserStore, ordered by id.
func (m *MockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update implements store.UserStore.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if other := m.findLocked(func(u *domain.User) bool {
		return u.Email == user.Email && u.ID != user.ID
	}); other != nil {
		return store.ErrEmailExists
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// UpdateRole implements store.UserStore.
func (m *MockUserStore) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	if m.UpdateRoleFn != nil {
		return m.UpdateRoleFn(ctx, id, role)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdatePassword implements store.UserStore.
func (m *MockUserStore) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, email, hashedPassword)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findLocked(func(u *domain.User) bool { return u.Email == email })
	if u == nil {
		return store.ErrUserNotFound
	}
	u.HashedPassword = hashedPassword
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements store.UserStore.
func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// WithTx implements store.UserStore.
func (m *MockUserStore) WithTx(*sql.Tx) store.UserStore {
	return m
}
