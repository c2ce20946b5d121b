package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/coursehub/coursehub-api/internal/authz"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/store"
)

// usernameOf resolves a user id to its username for AdminOrSelf.
func usernameOf(users store.UserStore) authz.UsernameLookup {
	return func(ctx context.Context, id int64) (string, error) {
		u, err := users.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return u.Username, nil
	}
}

// actorID resolves the principal to its user id. A principal whose user no
// longer exists is treated as unauthenticated.
func actorID(users store.UserStore) authz.ActorLookup {
	return func(ctx context.Context, p authz.Principal) (int64, error) {
		u, err := currentUser(ctx, users, p)
		if err != nil {
			return 0, err
		}
		return u.ID, nil
	}
}

func currentUser(ctx context.Context, users store.UserStore, p authz.Principal) (*domain.User, error) {
	u, err := users.GetByUsername(ctx, p.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %q no longer exists", authz.ErrUnauthenticated, p.Username)
		}
		return nil, err
	}
	return u, nil
}

// courseOwner loads the teacher id of a course.
func courseOwner(courses store.CourseStore, courseID int64) authz.OwnerLookup {
	return func(ctx context.Context) (int64, error) {
		c, err := courses.GetByID(ctx, courseID)
		if err != nil {
			return 0, err
		}
		return c.TeacherID, nil
	}
}

// lectureOwner loads the teacher id of a lecture's course.
func lectureOwner(courses store.CourseStore, lectures store.LectureStore, lectureID int64) authz.OwnerLookup {
	return func(ctx context.Context) (int64, error) {
		l, err := lectures.GetByID(ctx, lectureID)
		if err != nil {
			return 0, err
		}
		return courseOwner(courses, l.CourseID)(ctx)
	}
}
