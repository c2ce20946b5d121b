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

const lectureColumns = `id, course_id, title, content, video, state, reject_reason, created_at, updated_at`

// PostgresLectureStore implements store.LectureStore.
type PostgresLectureStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLectureStore creates a PostgresLectureStore. If logger is nil, a
// default logger will be used.
func NewPostgresLectureStore(db store.DBTX, logger *slog.Logger) *PostgresLectureStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLectureStore{
		db:     db,
		logger: logger.With(slog.String("component", "lecture_store")),
	}
}

var _ store.LectureStore = (*PostgresLectureStore)(nil)

// WithTx implements store.LectureStore.WithTx
func (s *PostgresLectureStore) WithTx(tx *sql.Tx) store.LectureStore {
	return &PostgresLectureStore{db: tx, logger: s.logger}
}

func scanLecture(row rowScanner) (*domain.Lecture, error) {
	var l domain.Lecture
	var state string
	if err := row.Scan(
		&l.ID,
		&l.CourseID,
		&l.Title,
		&l.Content,
		&l.Video,
		&state,
		&l.RejectReason,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l.State = domain.ContentState(state)
	return &l, nil
}

// Create implements store.LectureStore.Create
// Returns store.ErrInvalidEntity if the course does not exist.
func (s *PostgresLectureStore) Create(ctx context.Context, lecture *domain.Lecture) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lecture.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO lectures (course_id, title, content, video, state, reject_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		lecture.CourseID,
		lecture.Title,
		lecture.Content,
		lecture.Video,
		string(lecture.State),
		lecture.RejectReason,
		lecture.CreatedAt,
		lecture.UpdatedAt,
	).Scan(&lecture.ID)
	if err != nil {
		log.Error("failed to create lecture",
			slog.String("error", redact.Error(err)),
			slog.Int64("course_id", lecture.CourseID))
		return fmt.Errorf("failed to create lecture: %w", MapError(err))
	}
	return nil
}

// GetByID implements store.LectureStore.GetByID
func (s *PostgresLectureStore) GetByID(ctx context.Context, id int64) (*domain.Lecture, error) {
	lecture, err := scanLecture(s.db.QueryRowContext(ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLectureNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get lecture",
			slog.String("error", redact.Error(err)),
			slog.Int64("lecture_id", id))
		return nil, fmt.Errorf("failed to get lecture: %w", err)
	}
	return lecture, nil
}

// ListByCourse implements store.LectureStore.ListByCourse
func (s *PostgresLectureStore) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Lecture, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE course_id = $1 ORDER BY created_at, id`, courseID)
	if err != nil {
		log.Error("failed to query lectures",
			slog.String("error", redact.Error(err)),
			slog.Int64("course_id", courseID))
		return nil, fmt.Errorf("failed to list lectures: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	lectures := []*domain.Lecture{}
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lectures, nil
}

// Update implements store.LectureStore.Update
func (s *PostgresLectureStore) Update(ctx context.Context, lecture *domain.Lecture) error {
	query := `
		UPDATE lectures
		SET title = $1, content = $2, video = $3, state = $4, reject_reason = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		lecture.Title,
		lecture.Content,
		lecture.Video,
		string(lecture.State),
		lecture.RejectReason,
		lecture.UpdatedAt,
		lecture.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update lecture",
			slog.String("error", redact.Error(err)),
			slog.Int64("lecture_id", lecture.ID))
		return fmt.Errorf("failed to update lecture: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrLectureNotFound)
}

// Delete implements store.LectureStore.Delete
func (s *PostgresLectureStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete lecture",
			slog.String("error", redact.Error(err)),
			slog.Int64("lecture_id", id))
		return fmt.Errorf("failed to delete lecture: %w", err)
	}
	return CheckRowsAffected(result, store.ErrLectureNotFound)
}
