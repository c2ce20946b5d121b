package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/coursehub/coursehub-api/internal/events"
	"github.com/coursehub/coursehub-api/internal/mocks"
	"github.com/coursehub/coursehub-api/internal/service"
	"github.com/coursehub/coursehub-api/internal/service/auth"
	"github.com/coursehub/coursehub-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type resetFixture struct {
	svc     *service.PasswordResetService
	users   *mocks.MockUserStore
	codes   *mocks.MockResetCodeStore
	emitter *mocks.MockEventEmitter
	hasher  *auth.BcryptHasher
	mock    sqlmock.Sqlmock
	now     time.Time
	sent    []events.PasswordResetRequested
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	db, sqlMock := newTxDB(t)
	f := &resetFixture{
		users:   mocks.NewMockUserStore(),
		codes:   mocks.NewMockResetCodeStore(),
		emitter: &mocks.MockEventEmitter{},
		hasher:  auth.NewBcryptHasher(bcrypt.MinCost),
		mock:    sqlMock,
		now:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	svc, err := service.NewPasswordResetService(f.users, f.codes, f.hasher, f.emitter, db, testLogger(),
		service.WithResetCodeTTL(10*time.Minute),
		service.WithResetClock(func() time.Time { return f.now }),
	)
	require.NoError(t, err)
	f.svc = svc

	f.users.Seed(&domain.User{ID: 2, Username: "alice", Email: "alice@example.com", Role: domain.RoleStudent, HashedPassword: "x"})
	t.Cleanup(func() { assert.NoError(t, sqlMock.ExpectationsWereMet()) })
	return f
}

// captureEvents makes the emitter accept events and records their payloads.
func (f *resetFixture) captureEvents(t *testing.T) {
	f.emitter.On("EmitEvent", mock.Anything, mock.AnythingOfType("*events.Event")).
		Run(func(args mock.Arguments) {
			var payload events.PasswordResetRequested
			require.NoError(t, args.Get(1).(*events.Event).UnmarshalPayload(&payload))
			f.sent = append(f.sent, payload)
		}).
		Return(nil)
}

func (f *resetFixture) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1].Code
}

func (f *resetFixture) passwordIs(t *testing.T, password string) bool {
	t.Helper()
	u, err := f.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	return f.hasher.Verify(u.HashedPassword, password)
}

// wrongCode returns a six digit code different from code.
func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestRequestReset(t *testing.T) {
	t.Parallel()
	f := newResetFixture(t)
	f.captureEvents(t)

	require.NoError(t, f.svc.RequestReset(context.Background(), " alice@example.com "))

	f.emitter.AssertNumberOfCalls(t, "EmitEvent", 1)
	code := f.lastCode(t)
	assert.Regexp(t, `^\d{6}$`, code)
	assert.True(t, f.now.Add(10*time.Minute).Equal(f.sent[0].ExpiresAt))

	stored := f.codes.Codes()
	require.Len(t, stored, 1)
	assert.NotEqual(t, code, stored[0].CodeHash)
	assert.True(t, f.hasher.Verify(stored[0].CodeHash, code))
	assert.Nil(t, stored[0].UsedAt)
}

func TestRequestResetFailures(t *testing.T) {
	t.Parallel()

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		err := f.svc.RequestReset(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		f.emitter.AssertNotCalled(t, "EmitEvent", mock.Anything, mock.Anything)
		assert.Empty(t, f.codes.Codes())
	})

	t.Run("malformed email", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		assert.ErrorIs(t, f.svc.RequestReset(context.Background(), "nope"), domain.ErrValidation)
	})

	t.Run("dispatch failure", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.emitter.On("EmitEvent", mock.Anything, mock.Anything).Return(errors.New("queue full"))
		err := f.svc.RequestReset(context.Background(), "alice@example.com")
		assert.EqualError(t, err, "failed to dispatch reset code: queue full")
	})
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	t.Run("code is single use", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.captureEvents(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		code := f.lastCode(t)

		expectCommit(f.mock)
		require.NoError(t, f.svc.ResetPassword(context.Background(), "alice@example.com", code, "new-secret"))
		assert.True(t, f.passwordIs(t, "new-secret"))
		require.NotNil(t, f.codes.Codes()[0].UsedAt)

		expectRollback(f.mock)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", code, "another")
		assert.ErrorIs(t, err, service.ErrInvalidResetCode)
		assert.True(t, f.passwordIs(t, "new-secret"))
	})

	t.Run("expired code", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.captureEvents(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		code := f.lastCode(t)

		f.now = f.now.Add(10 * time.Minute)
		expectRollback(f.mock)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", code, "new-secret")
		assert.ErrorIs(t, err, service.ErrInvalidResetCode)
		assert.Nil(t, f.codes.Codes()[0].UsedAt)
	})

	t.Run("wrong code", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.captureEvents(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		code := f.lastCode(t)

		expectCommit(f.mock)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", wrongCode(code), "new-secret")
		assert.ErrorIs(t, err, service.ErrInvalidResetCode)
		assert.False(t, f.passwordIs(t, "new-secret"))

		stored := f.codes.Codes()[0]
		assert.Equal(t, 1, stored.FailedAttempts)
		assert.Nil(t, stored.UsedAt)

		expectCommit(f.mock)
		require.NoError(t, f.svc.ResetPassword(context.Background(), "alice@example.com", code, "new-secret"))
		assert.True(t, f.passwordIs(t, "new-secret"))
	})

	t.Run("code dies after too many wrong guesses", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.captureEvents(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		code := f.lastCode(t)

		for i := 0; i < domain.MaxResetCodeAttempts; i++ {
			expectCommit(f.mock)
			err := f.svc.ResetPassword(context.Background(), "alice@example.com", wrongCode(code), "new-secret")
			require.ErrorIs(t, err, service.ErrInvalidResetCode)
		}
		assert.Equal(t, domain.MaxResetCodeAttempts, f.codes.Codes()[0].FailedAttempts)

		expectRollback(f.mock)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", code, "new-secret")
		assert.ErrorIs(t, err, service.ErrInvalidResetCode)
		assert.False(t, f.passwordIs(t, "new-secret"))

		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		expectCommit(f.mock)
		require.NoError(t, f.svc.ResetPassword(context.Background(), "alice@example.com", f.lastCode(t), "new-secret"))
		assert.True(t, f.passwordIs(t, "new-secret"))
	})

	t.Run("attempt counter failure", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.captureEvents(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		f.codes.RecordAttemptFn = func(context.Context, *domain.ResetCode) error { return errors.New("db down") }

		expectRollback(f.mock)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", wrongCode(f.lastCode(t)), "new-secret")
		require.Error(t, err)
		assert.NotErrorIs(t, err, service.ErrInvalidResetCode)
	})

	t.Run("only newest code redeems", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.captureEvents(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		first := f.lastCode(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		second := f.lastCode(t)

		if first != second {
			expectCommit(f.mock)
			err := f.svc.ResetPassword(context.Background(), "alice@example.com", first, "new-secret")
			assert.ErrorIs(t, err, service.ErrInvalidResetCode)
		}

		expectCommit(f.mock)
		require.NoError(t, f.svc.ResetPassword(context.Background(), "alice@example.com", second, "new-secret"))
	})

	t.Run("no code requested", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		expectRollback(f.mock)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", "123456", "new-secret")
		assert.ErrorIs(t, err, service.ErrInvalidResetCode)
	})

	t.Run("weak password checked first", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", "123456", "pw")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("password update failure is not an invalid code", func(t *testing.T) {
		t.Parallel()
		f := newResetFixture(t)
		f.captureEvents(t)
		require.NoError(t, f.svc.RequestReset(context.Background(), "alice@example.com"))
		code := f.lastCode(t)

		f.users.UpdatePasswordFn = func(context.Context, string, string) error { return errors.New("db down") }
		expectRollback(f.mock)
		err := f.svc.ResetPassword(context.Background(), "alice@example.com", code, "new-secret")
		require.Error(t, err)
		assert.NotErrorIs(t, err, service.ErrInvalidResetCode)
	})
}
