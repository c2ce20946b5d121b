package store

import (
	"context"
	"database/sql"

	"github.com/coursehub/coursehub-api/internal/domain"
)

// CourseStore defines the interface for course persistence.
type CourseStore interface {
	// Create saves a new course and sets course.ID.
	Create(ctx context.Context, course *domain.Course) error

	// GetByID returns ErrCourseNotFound if the course does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Course, error)

	// ListByState returns courses in the given state, newest first.
	ListByState(ctx context.Context, state domain.ContentState) ([]*domain.Course, error)

	// ListAll returns every course, newest first.
	ListAll(ctx context.Context) ([]*domain.Course, error)

	// ListByTeacher returns the courses owned by teacherID, newest first.
	ListByTeacher(ctx context.Context, teacherID int64) ([]*domain.Course, error)

	// Update saves title, description, price, image, state and reject reason.
	// Returns ErrCourseNotFound if the course does not exist.
	Update(ctx context.Context, course *domain.Course) error

	// Delete returns ErrCourseNotFound if the course does not exist.
	Delete(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) CourseStore
}

// LectureStore defines the interface for lecture persistence.
type LectureStore interface {
	Create(ctx context.Context, lecture *domain.Lecture) error

	// GetByID returns ErrLectureNotFound if the lecture does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Lecture, error)

	// ListByCourse returns the lectures of a course in creation order.
	ListByCourse(ctx context.Context, courseID int64) ([]*domain.Lecture, error)

	// Update saves title, content, video, state and reject reason.
	Update(ctx context.Context, lecture *domain.Lecture) error

	Delete(ctx context.Context, id int64) error

	WithTx(tx *sql.Tx) LectureStore
}
