package task

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypePasswordResetDelivery sends a reset code to the user's email.
	TaskTypePasswordResetDelivery = "password_reset_delivery"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to queued tasks for workers.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter lets services enqueue tasks.
type TaskQueueWriter interface {
	// Enqueue adds a task without blocking. It fails when the queue is full or closed.
	Enqueue(task Task) error

	// Close stops further submissions; queued tasks remain readable.
	Close()
}

// statusTracker holds a task's status for concurrent readers.
type statusTracker struct {
	v atomic.Value
}

func newStatusTracker() *statusTracker {
	s := &statusTracker{}
	s.v.Store(TaskStatusPending)
	return s
}

func (s *statusTracker) set(status TaskStatus) { s.v.Store(status) }

func (s *statusTracker) get() TaskStatus { return s.v.Load().(TaskStatus) }
