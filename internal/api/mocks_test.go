package api

import (
	"context"

	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/service"
	"github.com/coursehub/coursehub-api/internal/service/auth"
	"github.com/stretchr/testify/mock"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, username, password string) (*auth.AuthResult, error) {
	args := m.Called(ctx, username, password)
	result, _ := args.Get(0).(*auth.AuthResult)
	return result, args.Error(1)
}

func (m *mockAuthenticator) Introspect(ctx context.Context, token string) bool {
	return m.Called(ctx, token).Bool(0)
}

type mockUserService struct {
	mock.Mock
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) user(args mock.Arguments) (*domain.User, error) {
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	return m.user(m.Called(ctx, in))
}

func (m *mockUserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *mockUserService) GetMyInfo(ctx context.Context) (*domain.User, error) {
	return m.user(m.Called(ctx))
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *mockUserService) UpdateUser(ctx context.Context, id int64, in service.UpdateUserInput) (*domain.User, error) {
	return m.user(m.Called(ctx, id, in))
}

func (m *mockUserService) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserService) AssignRole(ctx context.Context, id int64, roleName string) (*domain.User, error) {
	return m.user(m.Called(ctx, id, roleName))
}

func (m *mockUserService) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockResetter struct {
	mock.Mock
}

func (m *mockResetter) RequestReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockResetter) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.Called(ctx, email, code, newPassword).Error(0)
}

type mockCourseService struct {
	mock.Mock
}

var _ CourseService = (*mockCourseService)(nil)

func courseResult(args mock.Arguments) (*domain.Course, error) {
	c, _ := args.Get(0).(*domain.Course)
	return c, args.Error(1)
}

func coursesResult(args mock.Arguments) ([]*domain.Course, error) {
	c, _ := args.Get(0).([]*domain.Course)
	return c, args.Error(1)
}

func lectureResult(args mock.Arguments) (*domain.Lecture, error) {
	l, _ := args.Get(0).(*domain.Lecture)
	return l, args.Error(1)
}

func (m *mockCourseService) CreateCourse(ctx context.Context, in service.CourseInput) (*domain.Course, error) {
	return courseResult(m.Called(ctx, in))
}

func (m *mockCourseService) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	return courseResult(m.Called(ctx, id))
}

func (m *mockCourseService) ListApprovedCourses(ctx context.Context) ([]*domain.Course, error) {
	return coursesResult(m.Called(ctx))
}

func (m *mockCourseService) ListAllCourses(ctx context.Context) ([]*domain.Course, error) {
	return coursesResult(m.Called(ctx))
}

func (m *mockCourseService) ListMyCourses(ctx context.Context) ([]*domain.Course, error) {
	return coursesResult(m.Called(ctx))
}

func (m *mockCourseService) MyNewestCourseID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCourseService) UpdateCourse(ctx context.Context, id int64, in service.CourseInput) (*domain.Course, error) {
	return courseResult(m.Called(ctx, id, in))
}

func (m *mockCourseService) DeleteCourse(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCourseService) ApproveCourse(ctx context.Context, id int64) (*domain.Course, error) {
	return courseResult(m.Called(ctx, id))
}

func (m *mockCourseService) RejectCourse(ctx context.Context, id int64, reason string) (*domain.Course, error) {
	return courseResult(m.Called(ctx, id, reason))
}

func (m *mockCourseService) AddLecture(ctx context.Context, courseID int64, in service.LectureInput) (*domain.Lecture, error) {
	return lectureResult(m.Called(ctx, courseID, in))
}

func (m *mockCourseService) GetLecture(ctx context.Context, id int64) (*domain.Lecture, error) {
	return lectureResult(m.Called(ctx, id))
}

func (m *mockCourseService) ListLectures(ctx context.Context, courseID int64) ([]*domain.Lecture, error) {
	args := m.Called(ctx, courseID)
	l, _ := args.Get(0).([]*domain.Lecture)
	return l, args.Error(1)
}

func (m *mockCourseService) UpdateLecture(ctx context.Context, id int64, in service.LectureInput) (*domain.Lecture, error) {
	return lectureResult(m.Called(ctx, id, in))
}

func (m *mockCourseService) DeleteLecture(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCourseService) ApproveLecture(ctx context.Context, id int64) (*domain.Lecture, error) {
	return lectureResult(m.Called(ctx, id))
}

func (m *mockCourseService) RejectLecture(ctx context.Context, id int64, reason string) (*domain.Lecture, error) {
	return lectureResult(m.Called(ctx, id, reason))
}
