package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/redact"
	"github.com/coursehub/coursehub-api/internal/store"
)

// CourseInput holds the editable course fields. Image is optional raw image
// data stored under a generated name derived from ImageName.
type CourseInput struct {
	Title       string
	Description string
	Price       int64
	Image       []byte
	ImageName   string
}

// LectureInput holds the editable lecture fields. Video names a file already
// placed in the pending video area.
type LectureInput struct {
	Title   string
	Content string
	Video   string
}

// CourseService runs the course and lecture review workflow.
type CourseService struct {
	courses  store.CourseStore
	lectures store.LectureStore
	users    store.UserStore
	files    FileStore
	db       store.TxBeginner
	logger   *slog.Logger
}

// NewCourseService creates a CourseService.
func NewCourseService(
	courses store.CourseStore,
	lectures store.LectureStore,
	users store.UserStore,
	files FileStore,
	db store.TxBeginner,
	logger *slog.Logger,
) (*CourseService, error) {
	switch {
	case courses == nil:
		return nil, domain.NewValidationError("courses", "cannot be nil", nil)
	case lectures == nil:
		return nil, domain.NewValidationError("lectures", "cannot be nil", nil)
	case users == nil:
		return nil, domain.NewValidationError("users", "cannot be nil", nil)
	case files == nil:
		return nil, domain.NewValidationError("files", "cannot be nil", nil)
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", nil)
	}
	return &CourseService{
		courses:  courses,
		lectures: lectures,
		users:    users,
		files:    files,
		db:       db,
		logger:   logger.With("component", "course_service"),
	}, nil
}

func (s *CourseService) ownsCourse(courseID int64) authz.Policy {
	return authz.AdminOrOwner(courseOwner(s.courses, courseID), actorID(s.users))
}

func (s *CourseService) ownsLecture(lectureID int64) authz.Policy {
	return authz.AdminOrOwner(lectureOwner(s.courses, s.lectures, lectureID), actorID(s.users))
}

// CreateCourse creates a PENDING course owned by the calling teacher.
func (s *CourseService) CreateCourse(ctx context.Context, in CourseInput) (*domain.Course, error) {
	p, err := authz.Enforce(ctx, authz.HasRole(domain.RoleTeacher, domain.RoleAdmin))
	if err != nil {
		return nil, err
	}
	teacher, err := currentUser(ctx, s.users, p)
	if err != nil {
		return nil, err
	}

	course, err := domain.NewCourse(teacher.ID, in.Title, in.Description, in.Price, "")
	if err != nil {
		return nil, err
	}

	if len(in.Image) > 0 {
		name, err := s.files.SaveImage(ctx, in.ImageName, in.Image)
		if err != nil {
			s.logger.Error("failed to save course image", "error", redact.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrFileStore, err)
		}
		course.Image = name
	}

	if err := s.courses.Create(ctx, course); err != nil {
		if course.Image != "" {
			if rmErr := s.files.DeleteImage(ctx, course.Image); rmErr != nil {
				s.logger.Warn("failed to remove orphaned course image", "image", course.Image, "error", rmErr)
			}
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("course created", "course_id", course.ID, "teacher_id", teacher.ID)
	return course, nil
}

// GetCourse returns a course in any state.
func (s *CourseService) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// ListApprovedCourses returns the public catalogue.
func (s *CourseService) ListApprovedCourses(ctx context.Context) ([]*domain.Course, error) {
	return s.courses.ListByState(ctx, domain.StateApproved)
}

// ListAllCourses returns courses in every state. Admin only.
func (s *CourseService) ListAllCourses(ctx context.Context) ([]*domain.Course, error) {
	if _, err := authz.Enforce(ctx, authz.AdminOnly()); err != nil {
		return nil, err
	}
	return s.courses.ListAll(ctx)
}

// ListMyCourses returns the courses owned by the caller.
func (s *CourseService) ListMyCourses(ctx context.Context) ([]*domain.Course, error) {
	p, err := authz.Enforce(ctx, authz.Authenticated())
	if err != nil {
		return nil, err
	}
	me, err := currentUser(ctx, s.users, p)
	if err != nil {
		return nil, err
	}
	return s.courses.ListByTeacher(ctx, me.ID)
}

// MyNewestCourseID returns the id of the caller's most recently created course.
func (s *CourseService) MyNewestCourseID(ctx context.Context) (int64, error) {
	mine, err := s.ListMyCourses(ctx)
	if err != nil {
		return 0, err
	}
	if len(mine) == 0 {
		return 0, ErrNoCourses
	}
	sort.SliceStable(mine, func(i, j int) bool {
		if mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].ID > mine[j].ID
		}
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine[0].ID, nil
}

// UpdateCourse changes title, description and price. Allowed for admins and the owner.
func (s *CourseService) UpdateCourse(ctx context.Context, id int64, in CourseInput) (*domain.Course, error) {
	if _, err := authz.Enforce(ctx, s.ownsCourse(id)); err != nil {
		return nil, err
	}

	var updated *domain.Course
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCourses := s.courses.WithTx(tx)
		course, err := txCourses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		course.Title = strings.TrimSpace(in.Title)
		course.Description = in.Description
		course.Price = in.Price
		if err := course.Validate(); err != nil {
			return err
		}
		course.UpdatedAt = time.Now().UTC()
		if err := txCourses.Update(ctx, course); err != nil {
			return err
		}
		updated = course
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.logger.Info("course updated", "course_id", id)
	return updated, nil
}

// DeleteCourse removes a course together with its lectures, its image and
// the lecture videos. Allowed for admins and the owner.
func (s *CourseService) DeleteCourse(ctx context.Context, id int64) error {
	if _, err := authz.Enforce(ctx, s.ownsCourse(id)); err != nil {
		return err
	}
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	lectures, err := s.lectures.ListByCourse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list lectures: %w", err)
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	if course.Image != "" {
		if err := s.files.DeleteImage(ctx, course.Image); err != nil {
			s.logger.Warn("failed to remove course image", "course_id", id, "image", course.Image, "error", err)
		}
	}
	for _, l := range lectures {
		s.removeVideo(ctx, l)
	}
	s.logger.Info("course deleted", "course_id", id, "lectures", len(lectures))
	return nil
}

func (s *CourseService) removeVideo(ctx context.Context, lecture *domain.Lecture) {
	if lecture.Video == "" {
		return
	}
	if err := s.files.DeleteVideo(ctx, lecture.Video); err != nil {
		s.logger.Warn("failed to remove lecture video",
			"lecture_id", lecture.ID,
			"video", lecture.Video,
			"error", err)
	}
}

// ApproveCourse moves a PENDING course to APPROVED. Admin only.
func (s *CourseService) ApproveCourse(ctx context.Context, id int64) (*domain.Course, error) {
	return s.reviewCourse(ctx, id, func(c *domain.Course) error { return c.Approve() })
}

// RejectCourse moves a PENDING course to REJECTED with a reason. Admin only.
func (s *CourseService) RejectCourse(ctx context.Context, id int64, reason string) (*domain.Course, error) {
	return s.reviewCourse(ctx, id, func(c *domain.Course) error { return c.Reject(reason) })
}

func (s *CourseService) reviewCourse(ctx context.Context, id int64, apply func(*domain.Course) error) (*domain.Course, error) {
	p, err := authz.Enforce(ctx, authz.AdminOnly())
	if err != nil {
		return nil, err
	}

	var reviewed *domain.Course
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCourses := s.courses.WithTx(tx)
		course, err := txCourses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(course); err != nil {
			return err
		}
		if err := txCourses.Update(ctx, course); err != nil {
			return err
		}
		reviewed = course
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to review course: %w", err)
	}

	s.logger.Info("course reviewed", "course_id", id, "state", reviewed.State, "reviewer", p.Username)
	return reviewed, nil
}

// AddLecture adds a PENDING lecture to a course. Allowed for admins and the course owner.
func (s *CourseService) AddLecture(ctx context.Context, courseID int64, in LectureInput) (*domain.Lecture, error) {
	if _, err := authz.Enforce(ctx, s.ownsCourse(courseID)); err != nil {
		return nil, err
	}

	lecture, err := domain.NewLecture(courseID, in.Title, in.Content, strings.TrimSpace(in.Video))
	if err != nil {
		return nil, err
	}
	if err := s.lectures.Create(ctx, lecture); err != nil {
		return nil, fmt.Errorf("failed to create lecture: %w", err)
	}

	s.logger.Info("lecture added", "lecture_id", lecture.ID, "course_id", courseID)
	return lecture, nil
}

// GetLecture returns a lecture in any state.
func (s *CourseService) GetLecture(ctx context.Context, id int64) (*domain.Lecture, error) {
	return s.lectures.GetByID(ctx, id)
}

// ListLectures returns the lectures of a course. A missing course is not found.
func (s *CourseService) ListLectures(ctx context.Context, courseID int64) ([]*domain.Lecture, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.lectures.ListByCourse(ctx, courseID)
}

// UpdateLecture changes title and content. Allowed for admins and the course owner.
func (s *CourseService) UpdateLecture(ctx context.Context, id int64, in LectureInput) (*domain.Lecture, error) {
	if _, err := authz.Enforce(ctx, s.ownsLecture(id)); err != nil {
		return nil, err
	}

	var updated *domain.Lecture
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txLectures := s.lectures.WithTx(tx)
		lecture, err := txLectures.GetByID(ctx, id)
		if err != nil {
			return err
		}
		lecture.Title = strings.TrimSpace(in.Title)
		lecture.Content = in.Content
		if err := lecture.Validate(); err != nil {
			return err
		}
		lecture.UpdatedAt = time.Now().UTC()
		if err := txLectures.Update(ctx, lecture); err != nil {
			return err
		}
		updated = lecture
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update lecture: %w", err)
	}

	s.logger.Info("lecture updated", "lecture_id", id)
	return updated, nil
}

// DeleteLecture removes a lecture and its video. Allowed for admins and the course owner.
func (s *CourseService) DeleteLecture(ctx context.Context, id int64) error {
	if _, err := authz.Enforce(ctx, s.ownsLecture(id)); err != nil {
		return err
	}
	lecture, err := s.lectures.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.lectures.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lecture: %w", err)
	}
	s.removeVideo(ctx, lecture)
	s.logger.Info("lecture deleted", "lecture_id", id)
	return nil
}

// ApproveLecture publishes the lecture's video and marks it APPROVED, as one
// unit: if the video cannot be moved the lecture stays PENDING and ErrFileMove
// is returned, and if the transaction does not commit the move is reverted.
// Admin only.
func (s *CourseService) ApproveLecture(ctx context.Context, id int64) (*domain.Lecture, error) {
	p, err := authz.Enforce(ctx, authz.AdminOnly())
	if err != nil {
		return nil, err
	}

	var (
		approved  *domain.Lecture
		published *domain.Lecture
	)
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txLectures := s.lectures.WithTx(tx)
		lecture, err := txLectures.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := lecture.Approve(); err != nil {
			return err
		}

		if lecture.Video != "" {
			if err := s.files.PublishVideo(ctx, lecture.Video); err != nil {
				s.logger.Error("failed to publish lecture video",
					"lecture_id", id,
					"video", lecture.Video,
					"error", redact.Error(err))
				return fmt.Errorf("%w: %v", ErrFileMove, err)
			}
			published = lecture
		}

		if err := txLectures.Update(ctx, lecture); err != nil {
			return err
		}
		approved = lecture
		return nil
	})
	if err != nil {
		if published != nil {
			s.revertPublish(ctx, published)
		}
		return nil, fmt.Errorf("failed to approve lecture: %w", err)
	}

	s.logger.Info("lecture approved", "lecture_id", id, "reviewer", p.Username)
	return approved, nil
}

func (s *CourseService) revertPublish(ctx context.Context, lecture *domain.Lecture) {
	if lecture.Video == "" {
		return
	}
	if err := s.files.UnpublishVideo(context.WithoutCancel(ctx), lecture.Video); err != nil {
		s.logger.Error("failed to revert published video",
			"lecture_id", lecture.ID,
			"video", lecture.Video,
			"error", redact.Error(err))
	}
}

// RejectLecture moves a PENDING lecture to REJECTED with a reason. Admin only.
func (s *CourseService) RejectLecture(ctx context.Context, id int64, reason string) (*domain.Lecture, error) {
	p, err := authz.Enforce(ctx, authz.AdminOnly())
	if err != nil {
		return nil, err
	}

	var rejected *domain.Lecture
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txLectures := s.lectures.WithTx(tx)
		lecture, err := txLectures.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := lecture.Reject(reason); err != nil {
			return err
		}
		if err := txLectures.Update(ctx, lecture); err != nil {
			return err
		}
		rejected = lecture
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidStateTransition) && !store.IsNotFoundError(err) {
			s.logger.Error("failed to reject lecture", "lecture_id", id, "error", redact.Error(err))
		}
		return nil, fmt.Errorf("failed to reject lecture: %w", err)
	}

	s.logger.Info("lecture rejected", "lecture_id", id, "reviewer", p.Username)
	return rejected, nil
}
