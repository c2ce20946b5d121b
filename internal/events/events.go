package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypePasswordResetRequested is emitted after a reset code has been stored.
	TypePasswordResetRequested = "password_reset_requested"
)

// Event is a typed notification with a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the given type and JSON-encoded payload.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// PasswordResetRequested is the payload of TypePasswordResetRequested. Code is
// the plaintext code to deliver; it is never persisted.
type PasswordResetRequested struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewPasswordResetRequested creates a TypePasswordResetRequested event.
func NewPasswordResetRequested(email, code string, expiresAt time.Time) (*Event, error) {
	return NewEvent(TypePasswordResetRequested, PasswordResetRequested{
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
	})
}

// EventHandler processes events. Handlers ignore types they do not handle.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events to handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
