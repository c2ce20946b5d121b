// Package mailer defines outbound notification delivery. No transport is
// bundled; LogMailer records messages through the structured logger.
package mailer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coursehub/coursehub-api/internal/platform/logger"
	"github.com/coursehub/coursehub-api/internal/redact"
)

// ResetCodeMessage is the content of a password reset notification.
type ResetCodeMessage struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Mailer delivers notifications to users.
type Mailer interface {
	SendResetCode(ctx context.Context, msg ResetCodeMessage) error
}

// LogMailer writes messages to the log instead of sending them. The code
// itself is redacted.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(l *slog.Logger) *LogMailer {
	return &LogMailer{logger: l.With("component", "log_mailer")}
}

// SendResetCode implements Mailer.
func (m *LogMailer) SendResetCode(ctx context.Context, msg ResetCodeMessage) error {
	logger.FromContextOrDefault(ctx, m.logger).Info("password reset code issued",
		"email", redact.Email(msg.Email),
		"code", redact.Placeholder,
		"expires_at", msg.ExpiresAt)
	return nil
}

// RecordingMailer keeps sent messages in memory.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []ResetCodeMessage
	Err  error
}

// SendResetCode implements Mailer.
func (m *RecordingMailer) SendResetCode(_ context.Context, msg ResetCodeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (m *RecordingMailer) Sent() []ResetCodeMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ResetCodeMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

var (
	_ Mailer = (*LogMailer)(nil)
	_ Mailer = (*RecordingMailer)(nil)
)
