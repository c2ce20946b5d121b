package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/store"
)

// MockCourseStore implements store.CourseStore in memory.
type MockCourseStore struct {
	CreateFn  func(ctx context.Context, course *domain.Course) error
	GetByIDFn func(ctx context.Context, id int64) (*domain.Course, error)
	UpdateFn  func(ctx context.Context, course *domain.Course) error
	DeleteFn  func(ctx context.Context, id int64) error

	mu      sync.Mutex
	courses map[int64]*domain.Course
	nextID  int64
}

var _ store.CourseStore = (*MockCourseStore)(nil)

// NewMockCourseStore creates an empty store.
func NewMockCourseStore() *MockCourseStore {
	return &MockCourseStore{courses: make(map[int64]*domain.Course), nextID: 1}
}

// Seed stores copies of courses, assigning ids to those without one.
func (m *MockCourseStore) Seed(courses ...*domain.Course) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range courses {
		if c.ID == 0 {
			c.ID = m.nextID
		}
		if c.ID >= m.nextID {
			m.nextID = c.ID + 1
		}
		cp := *c
		m.courses[c.ID] = &cp
	}
}

func (m *MockCourseStore) list(match func(*domain.Course) bool) []*domain.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Course, 0)
	for _, c := range m.courses {
		if match(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create implements store.CourseStore.
func (m *MockCourseStore) Create(ctx context.Context, course *domain.Course) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, course)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	course.ID = m.nextID
	m.nextID++
	cp := *course
	m.courses[course.ID] = &cp
	return nil
}

// GetByID implements store.CourseStore.
func (m *MockCourseStore) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, store.ErrCourseNotFound
}

// ListByState implements store.CourseStore.
func (m *MockCourseStore) ListByState(_ context.Context, state domain.ContentState) ([]*domain.Course, error) {
	return m.list(func(c *domain.Course) bool { return c.State == state }), nil
}

// ListAll implements store.CourseStore.
func (m *MockCourseStore) ListAll(context.Context) ([]*domain.Course, error) {
	return m.list(func(*domain.Course) bool { return true }), nil
}

// ListByTeacher implements store.CourseStore.
func (m *MockCourseStore) ListByTeacher(_ context.Context, teacherID int64) ([]*domain.Course, error) {
	return m.list(func(c *domain.Course) bool { return c.TeacherID == teacherID }), nil
}

// Update implements store.CourseStore.
func (m *MockCourseStore) Update(ctx context.Context, course *domain.Course) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, course)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[course.ID]; !ok {
		return store.ErrCourseNotFound
	}
	cp := *course
	m.courses[course.ID] = &cp
	return nil
}

// Delete implements store.CourseStore.
func (m *MockCourseStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return store.ErrCourseNotFound
	}
	delete(m.courses, id)
	return nil
}

// WithTx implements store.CourseStore.
func (m *MockCourseStore) WithTx(*sql.Tx) store.CourseStore {
	return m
}

// MockLectureStore implements store.LectureStore in memory.
type MockLectureStore struct {
	CreateFn  func(ctx context.Context, lecture *domain.Lecture) error
	GetByIDFn func(ctx context.Context, id int64) (*domain.Lecture, error)
	UpdateFn  func(ctx context.Context, lecture *domain.Lecture) error
	DeleteFn  func(ctx context.Context, id int64) error

	mu       sync.Mutex
	lectures map[int64]*domain.Lecture
	nextID   int64
}

var _ store.LectureStore = (*MockLectureStore)(nil)

// NewMockLectureStore creates an empty store.
func NewMockLectureStore() *MockLectureStore {
	return &MockLectureStore{lectures: make(map[int64]*domain.Lecture), nextID: 1}
}

// Seed stores copies of lectures, assigning ids to those without one.
func (m *MockLectureStore) Seed(lectures ...*domain.Lecture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lectures {
		if l.ID == 0 {
			l.ID = m.nextID
		}
		if l.ID >= m.nextID {
			m.nextID = l.ID + 1
		}
		cp := *l
		m.lectures[l.ID] = &cp
	}
}

// Create implements store.LectureStore.
func (m *MockLectureStore) Create(ctx context.Context, lecture *domain.Lecture) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, lecture)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	lecture.ID = m.nextID
	m.nextID++
	cp := *lecture
	m.lectures[lecture.ID] = &cp
	return nil
}

// GetByID implements store.LectureStore.
func (m *MockLectureStore) GetByID(ctx context.Context, id int64) (*domain.Lecture, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lectures[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, store.ErrLectureNotFound
}

// ListByCourse implements store.LectureStore, ordered by id.
func (m *MockLectureStore) ListByCourse(_ context.Context, courseID int64) ([]*domain.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Lecture, 0)
	for _, l := range m.lectures {
		if l.CourseID == courseID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update implements store.LectureStore.
func (m *MockLectureStore) Update(ctx context.Context, lecture *domain.Lecture) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, lecture)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lectures[lecture.ID]; !ok {
		return store.ErrLectureNotFound
	}
	cp := *lecture
	m.lectures[lecture.ID] = &cp
	return nil
}

// Delete implements store.LectureStore.
func (m *MockLectureStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lectures[id]; !ok {
		return store.ErrLectureNotFound
	}
	delete(m.lectures, id)
	return nil
}

// WithTx implements store.LectureStore.
func (m *MockLectureStore) WithTx(*sql.Tx) store.LectureStore {
	return m
}
