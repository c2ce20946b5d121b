package task

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// mockTask is a Task whose behaviour is set per test.
type mockTask struct {
	id       uuid.UUID
	taskType string
	status   *statusTracker
	execFn   func(ctx context.Context) error
}

func newMockTask(execFn func(ctx context.Context) error) *mockTask {
	return &mockTask{id: uuid.New(), taskType: "mock", status: newStatusTracker(), execFn: execFn}
}

func (m *mockTask) ID() uuid.UUID      { return m.id }
func (m *mockTask) Type() string       { return m.taskType }
func (m *mockTask) Status() TaskStatus { return m.status.get() }

func (m *mockTask) Execute(ctx context.Context) error {
	if m.execFn == nil {
		m.status.set(TaskStatusCompleted)
		return nil
	}
	err := m.execFn(ctx)
	if err != nil {
		m.status.set(TaskStatusFailed)
	} else {
		m.status.set(TaskStatusCompleted)
	}
	return err
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
