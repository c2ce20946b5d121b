package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coursehub/coursehub-api/internal/events"
)

// TaskFactory creates a task from an event.
type TaskFactory interface {
	CreateTask(event *events.Event) (Task, error)
}

// TaskSubmitter accepts tasks for execution. *TaskRunner satisfies it.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns events into tasks using the factory registered
// for the event type and submits them. Events with no factory are ignored.
type TaskFactoryEventHandler struct {
	mu        sync.RWMutex
	factories map[string]TaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates a handler submitting to submitter.
func NewTaskFactoryEventHandler(submitter TaskSubmitter, logger *slog.Logger) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factories: make(map[string]TaskFactory),
		submitter: submitter,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// Register routes events of eventType to factory, replacing any earlier factory.
func (h *TaskFactoryEventHandler) Register(eventType string, factory TaskFactory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.factories[eventType] = factory
}

// HandleEvent implements events.EventHandler.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	h.mu.RLock()
	factory, ok := h.factories[event.Type]
	h.mu.RUnlock()
	if !ok {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	task, err := factory.CreateTask(event)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return err
	}

	h.logger.Info("task created and submitted",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"event_id", event.ID)
	return nil
}
