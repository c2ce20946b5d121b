package task

import (
	"context"
	"fmt"
	"time"

	"github.com/coursehub/coursehub-api/internal/events"
	"github.com/coursehub/coursehub-api/internal/platform/mailer"
	"github.com/google/uuid"
)

// PasswordResetDeliveryTask sends one reset code through a Mailer.
type PasswordResetDeliveryTask struct {
	id     uuid.UUID
	msg    mailer.ResetCodeMessage
	mailer mailer.Mailer
	status *statusTracker
}

var _ Task = (*PasswordResetDeliveryTask)(nil)

// NewPasswordResetDeliveryTask creates a pending delivery task.
func NewPasswordResetDeliveryTask(m mailer.Mailer, email, code string, expiresAt time.Time) *PasswordResetDeliveryTask {
	return &PasswordResetDeliveryTask{
		id:     uuid.New(),
		msg:    mailer.ResetCodeMessage{Email: email, Code: code, ExpiresAt: expiresAt},
		mailer: m,
		status: newStatusTracker(),
	}
}

// ID implements Task.
func (t *PasswordResetDeliveryTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *PasswordResetDeliveryTask) Type() string { return TaskTypePasswordResetDelivery }

// Status implements Task.
func (t *PasswordResetDeliveryTask) Status() TaskStatus { return t.status.get() }

// Execute sends the message. Codes past their expiry are not sent.
func (t *PasswordResetDeliveryTask) Execute(ctx context.Context) error {
	t.status.set(TaskStatusProcessing)

	if !time.Now().Before(t.msg.ExpiresAt) {
		t.status.set(TaskStatusFailed)
		return fmt.Errorf("reset code expired before delivery")
	}
	if err := t.mailer.SendResetCode(ctx, t.msg); err != nil {
		t.status.set(TaskStatusFailed)
		return fmt.Errorf("failed to send reset code: %w", err)
	}

	t.status.set(TaskStatusCompleted)
	return nil
}

// PasswordResetDeliveryFactory builds delivery tasks from
// events.TypePasswordResetRequested events.
type PasswordResetDeliveryFactory struct {
	mailer mailer.Mailer
}

// NewPasswordResetDeliveryFactory creates a factory sending through m.
func NewPasswordResetDeliveryFactory(m mailer.Mailer) *PasswordResetDeliveryFactory {
	return &PasswordResetDeliveryFactory{mailer: m}
}

// CreateTask implements TaskFactory.
func (f *PasswordResetDeliveryFactory) CreateTask(event *events.Event) (Task, error) {
	var payload events.PasswordResetRequested
	if err := event.UnmarshalPayload(&payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.Email == "" || payload.Code == "" {
		return nil, fmt.Errorf("password reset payload is missing email or code")
	}
	return NewPasswordResetDeliveryTask(f.mailer, payload.Email, payload.Code, payload.ExpiresAt), nil
}
