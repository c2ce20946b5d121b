package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coursehub/coursehub-api/internal/api/shared"
	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/service"
)

// CourseService is the course workflow used by CourseHandler.
// *service.CourseService satisfies it.
type CourseService interface {
	CreateCourse(ctx context.Context, in service.CourseInput) (*domain.Course, error)
	GetCourse(ctx context.Context, id int64) (*domain.Course, error)
	ListApprovedCourses(ctx context.Context) ([]*domain.Course, error)
	ListAllCourses(ctx context.Context) ([]*domain.Course, error)
	ListMyCourses(ctx context.Context) ([]*domain.Course, error)
	MyNewestCourseID(ctx context.Context) (int64, error)
	UpdateCourse(ctx context.Context, id int64, in service.CourseInput) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
	ApproveCourse(ctx context.Context, id int64) (*domain.Course, error)
	RejectCourse(ctx context.Context, id int64, reason string) (*domain.Course, error)

	AddLecture(ctx context.Context, courseID int64, in service.LectureInput) (*domain.Lecture, error)
	GetLecture(ctx context.Context, id int64) (*domain.Lecture, error)
	ListLectures(ctx context.Context, courseID int64) ([]*domain.Lecture, error)
	UpdateLecture(ctx context.Context, id int64, in service.LectureInput) (*domain.Lecture, error)
	DeleteLecture(ctx context.Context, id int64) error
	ApproveLecture(ctx context.Context, id int64) (*domain.Lecture, error)
	RejectLecture(ctx context.Context, id int64, reason string) (*domain.Lecture, error)
}

var _ CourseService = (*service.CourseService)(nil)

// CourseHandler handles course, lecture and review endpoints.
type CourseHandler struct {
	courses CourseService
	logger  *slog.Logger
}

// NewCourseHandler creates a new CourseHandler with the given dependencies.
func NewCourseHandler(courses CourseService, logger *slog.Logger) *CourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseHandler{
		courses: courses,
		logger:  logger.With("component", "course_handler"),
	}
}

// ownership marks a policy failure on an existing course or lecture so it is
// reported as a course permission error.
func ownership(err error) error {
	if errors.Is(err, authz.ErrForbidden) && !errors.Is(err, errCourseForbidden) {
		return fmt.Errorf("%w: %w", errCourseForbidden, err)
	}
	return err
}

func (h *CourseHandler) courseInput(w http.ResponseWriter, r *http.Request) (service.CourseInput, bool) {
	var req CourseRequest
	if !decodeAndValidate(w, r, &req) {
		return service.CourseInput{}, false
	}

	in := service.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		ImageName:   req.ImageName,
	}
	if req.Image != "" {
		data, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("image", "must be base64 encoded", nil), "Invalid image")
			return service.CourseInput{}, false
		}
		in.Image = data
	}
	return in, true
}

// ListApproved handles GET /api/courses.
func (h *CourseHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListApprovedCourses(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list courses")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, courses)
}

// ListAll handles GET /api/admin/courses.
func (h *CourseHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListAllCourses(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list courses")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, courses)
}

// ListMine handles GET /api/courses/mine.
func (h *CourseHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListMyCourses(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list courses")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, courses)
}

// MyNewest handles GET /api/courses/mine/newest.
func (h *CourseHandler) MyNewest(w http.ResponseWriter, r *http.Request) {
	id, err := h.courses.MyNewestCourseID(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load newest course")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, NewestCourseResponse{CourseID: id})
}

// CreateCourse handles POST /api/courses.
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	in, ok := h.courseInput(w, r)
	if !ok {
		return
	}

	course, err := h.courses.CreateCourse(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create course")
		return
	}

	requestLogger(r, h.logger).Info("course created", "course_id", course.ID)
	shared.RespondWithResult(w, r, http.StatusCreated, course)
}

// GetCourse handles GET /api/courses/{id}.
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	course, err := h.courses.GetCourse(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load course")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, course)
}

// UpdateCourse handles PUT /api/courses/{id}.
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	in, ok := h.courseInput(w, r)
	if !ok {
		return
	}

	course, err := h.courses.UpdateCourse(r.Context(), id, in)
	if err != nil {
		HandleAPIError(w, r, ownership(err), "Failed to update course")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, course)
}

// DeleteCourse handles DELETE /api/courses/{id}.
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.courses.DeleteCourse(r.Context(), id); err != nil {
		HandleAPIError(w, r, ownership(err), "Failed to delete course")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, MessageResponse{Message: "Course has been deleted"})
}

// ApproveCourse handles POST /api/admin/courses/{id}/approve.
func (h *CourseHandler) ApproveCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	course, err := h.courses.ApproveCourse(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to approve course")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, course)
}

// RejectCourse handles POST /api/admin/courses/{id}/reject.
func (h *CourseHandler) RejectCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courses.RejectCourse(r.Context(), id, req.Reason)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reject course")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, course)
}

// ListLectures handles GET /api/courses/{id}/lectures.
func (h *CourseHandler) ListLectures(w http.ResponseWriter, r *http.Request) {
	courseID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	lectures, err := h.courses.ListLectures(r.Context(), courseID)
	if err != nil {
		HandleAPIError(w, r, ownership(err), "Failed to list lectures")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, lectures)
}

// AddLecture handles POST /api/courses/{id}/lectures.
func (h *CourseHandler) AddLecture(w http.ResponseWriter, r *http.Request) {
	courseID, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req LectureRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lecture, err := h.courses.AddLecture(r.Context(), courseID, service.LectureInput{
		Title:   req.Title,
		Content: req.Content,
		Video:   req.Video,
	})
	if err != nil {
		HandleAPIError(w, r, ownership(err), "Failed to add lecture")
		return
	}
	shared.RespondWithResult(w, r, http.StatusCreated, lecture)
}

// GetLecture handles GET /api/lectures/{id}.
func (h *CourseHandler) GetLecture(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	lecture, err := h.courses.GetLecture(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, ownership(err), "Failed to load lecture")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, lecture)
}

// UpdateLecture handles PUT /api/lectures/{id}.
func (h *CourseHandler) UpdateLecture(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req LectureRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lecture, err := h.courses.UpdateLecture(r.Context(), id, service.LectureInput{
		Title:   req.Title,
		Content: req.Content,
		Video:   req.Video,
	})
	if err != nil {
		HandleAPIError(w, r, ownership(err), "Failed to update lecture")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, lecture)
}

// DeleteLecture handles DELETE /api/lectures/{id}.
func (h *CourseHandler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.courses.DeleteLecture(r.Context(), id); err != nil {
		HandleAPIError(w, r, ownership(err), "Failed to delete lecture")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, MessageResponse{Message: "Lecture has been deleted"})
}

// ApproveLecture handles POST /api/admin/lectures/{id}/approve.
func (h *CourseHandler) ApproveLecture(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	lecture, err := h.courses.ApproveLecture(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to approve lecture")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, lecture)
}

// RejectLecture handles POST /api/admin/lectures/{id}/reject.
func (h *CourseHandler) RejectLecture(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lecture, err := h.courses.RejectLecture(r.Context(), id, req.Reason)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reject lecture")
		return
	}
	shared.RespondWithResult(w, r, http.StatusOK, lecture)
}
