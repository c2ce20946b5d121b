package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// TaskTimeout bounds a single task execution
	TaskTimeout time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		TaskTimeout: 30 * time.Second,
	}
}

// TaskRunner owns the queue and worker pool for background tasks.
type TaskRunner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		TaskTimeout: config.TaskTimeout,
	}, logger)
	pool.SetErrorHandler(func(task Task, err error) {
		logger.Error("task execution failed",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"error", err)
	})

	return &TaskRunner{queue: queue, pool: pool, logger: logger}
}

// SetErrorHandler replaces the failure callback. Call it before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit queues task for execution without blocking.
func (r *TaskRunner) Submit(_ context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}
	return nil
}

// Start begins processing. Calling it again has no effect.
func (r *TaskRunner) Start() {
	r.startOnce.Do(r.pool.Start)
}

// Stop closes the queue and lets workers drain it. If ctx ends first, running
// tasks are cancelled and the remaining queue is dropped.
func (r *TaskRunner) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		r.queue.Close()
		if err = r.pool.Wait(ctx); err != nil {
			r.logger.Warn("task runner stopped before the queue drained", "error", err)
			return
		}
		r.logger.Info("task runner stopped")
	})
	return err
}
