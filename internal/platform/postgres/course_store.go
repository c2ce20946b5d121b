package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/redact"
	"github.com/coursehub/coursehub-api/internal/store"
)

const courseColumns = `id, teacher_id, title, description, price, image, state, reject_reason, created_at, updated_at`

// PostgresCourseStore implements the store.CourseStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a new PostgreSQL implementation of the CourseStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

// WithTx implements store.CourseStore.WithTx
func (s *PostgresCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return &PostgresCourseStore{db: tx, logger: s.logger}
}

func scanCourse(row rowScanner) (*domain.Course, error) {
	var c domain.Course
	var state string
	if err := row.Scan(
		&c.ID,
		&c.TeacherID,
		&c.Title,
		&c.Description,
		&c.Price,
		&c.Image,
		&state,
		&c.RejectReason,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.State = domain.ContentState(state)
	return &c, nil
}

// Create implements store.CourseStore.Create
// Returns store.ErrInvalidEntity if the teacher does not exist.
func (s *PostgresCourseStore) Create(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := course.Validate(); err != nil {
		log.Warn("course validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO courses (teacher_id, title, description, price, image, state, reject_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		course.TeacherID,
		course.Title,
		course.Description,
		course.Price,
		course.Image,
		string(course.State),
		course.RejectReason,
		course.CreatedAt,
		course.UpdatedAt,
	).Scan(&course.ID)
	if err != nil {
		log.Error("failed to create course",
			slog.String("error", redact.Error(err)),
			slog.Int64("teacher_id", course.TeacherID))
		return fmt.Errorf("failed to create course: %w", MapError(err))
	}

	log.Info("course created",
		slog.Int64("course_id", course.ID),
		slog.Int64("teacher_id", course.TeacherID))
	return nil
}

// GetByID implements store.CourseStore.GetByID
func (s *PostgresCourseStore) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	course, err := scanCourse(s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("course not found", slog.Int64("course_id", id))
			return nil, store.ErrCourseNotFound
		}
		log.Error("failed to get course",
			slog.String("error", redact.Error(err)),
			slog.Int64("course_id", id))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *PostgresCourseStore) list(ctx context.Context, where string, args ...any) ([]*domain.Course, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + courseColumns + ` FROM courses`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query courses", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	courses := []*domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			log.Error("failed to scan course row", slog.String("error", err.Error()))
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}
	return courses, nil
}

// ListByState implements store.CourseStore.ListByState
func (s *PostgresCourseStore) ListByState(ctx context.Context, state domain.ContentState) ([]*domain.Course, error) {
	return s.list(ctx, "state = $1", string(state))
}

// ListAll implements store.CourseStore.ListAll
func (s *PostgresCourseStore) ListAll(ctx context.Context) ([]*domain.Course, error) {
	return s.list(ctx, "")
}

// ListByTeacher implements store.CourseStore.ListByTeacher
func (s *PostgresCourseStore) ListByTeacher(ctx context.Context, teacherID int64) ([]*domain.Course, error) {
	return s.list(ctx, "teacher_id = $1", teacherID)
}

// Update implements store.CourseStore.Update
func (s *PostgresCourseStore) Update(ctx context.Context, course *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE courses
		SET title = $1, description = $2, price = $3, image = $4, state = $5, reject_reason = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		course.Title,
		course.Description,
		course.Price,
		course.Image,
		string(course.State),
		course.RejectReason,
		course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		log.Error("failed to update course",
			slog.String("error", redact.Error(err)),
			slog.Int64("course_id", course.ID))
		return fmt.Errorf("failed to update course: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrCourseNotFound)
}

// Delete implements store.CourseStore.Delete
// Lectures of the course are removed by the foreign key cascade.
func (s *PostgresCourseStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete course",
			slog.String("error", redact.Error(err)),
			slog.Int64("course_id", id))
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return CheckRowsAffected(result, store.ErrCourseNotFound)
}
