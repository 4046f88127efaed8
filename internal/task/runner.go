package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// MaxRetries is how many times a failed task is retried before it is
	// marked failed for good
	MaxRetries int

	// RetryBackoff is the base delay before the first retry; it doubles
	// with each subsequent attempt
	RetryBackoff time.Duration

	// SoftTimeLimit bounds a task's execution context. When it expires
	// the task's context is cancelled so it can stop cleanly and record
	// partial progress. Zero disables the limit.
	SoftTimeLimit time.Duration

	// HardTimeLimit is the point at which the runner stops waiting for a
	// task that ignored its cancelled context and marks it failed. Zero
	// disables the limit.
	HardTimeLimit time.Duration

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              50,
		MaxRetries:             3,
		RetryBackoff:           time.Minute,
		SoftTimeLimit:          25 * time.Minute,
		HardTimeLimit:          30 * time.Minute,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store      TaskStore
	rehydrator Rehydrator
	queue      *TaskQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)

	retryMu sync.Mutex
	retries map[uuid.UUID]int
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:      store,
		queue:      NewTaskQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		retries:    make(map[uuid.UUID]int),
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				slog.String("task_id", task.ID().String()),
				slog.String("task_type", task.Type()),
				slog.String("error", err.Error()))
		},
	}
}

// SetErrorHandler allows setting a custom handler invoked when a task has
// exhausted its retries.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// SetRehydrator installs the component used to rebuild executable tasks
// recovered from the database. Must be called before Start.
func (r *TaskRunner) SetRehydrator(rehydrator Rehydrator) {
	r.rehydrator = rehydrator
}

// Submit adds a new task to the queue
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	// Save task to database first so it survives a crash before pickup
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start initializes the worker pool and begins processing tasks
func (r *TaskRunner) Start() error {
	// Recover unfinished tasks from previous runs
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.queue.Close()
}

// Recover loads unfinished tasks from the database and requeues them.
// Tasks found in processing state were interrupted by a crash and are
// reset to pending first.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pendingTasks)),
		slog.Int("processing_count", len(processingTasks)))

	for _, t := range pendingTasks {
		r.requeueRecovered(ctx, t)
	}

	for _, t := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				slog.String("task_id", t.ID().String()),
				slog.String("task_type", t.Type()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeueRecovered(ctx, t)
	}

	return nil
}

// requeueRecovered rehydrates a stored task and puts it back on the queue.
func (r *TaskRunner) requeueRecovered(ctx context.Context, t Task) {
	if r.rehydrator != nil {
		rehydrated, err := r.rehydrator.Rehydrate(t)
		if err != nil {
			r.logger.Error("failed to rehydrate recovered task, marking failed",
				slog.String("task_id", t.ID().String()),
				slog.String("task_type", t.Type()),
				slog.String("error", err.Error()))
			if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed,
				fmt.Sprintf("unrecoverable: %v", err)); updateErr != nil {
				r.logger.Error("failed to mark unrecoverable task failed",
					slog.String("task_id", t.ID().String()),
					slog.String("error", updateErr.Error()))
			}
			return
		}
		t = rehydrated
	}

	if err := r.queue.Enqueue(t); err != nil {
		r.logger.Error("failed to requeue recovered task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
	}
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case t, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker",
					slog.Int("worker_id", id))
				return
			}
			r.processTask(t, id)
		}
	}
}

// processTask handles execution of a single task, enforcing the soft and
// hard time limits and scheduling retries on failure.
func (r *TaskRunner) processTask(t Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("worker_id", workerID),
	)

	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing",
			slog.String("error", err.Error()))
		return
	}

	logger.Info("processing task")

	err := r.execute(t)

	if err != nil {
		logger.Error("task execution failed", slog.String("error", err.Error()))
		r.handleFailure(ctx, t, err, logger)
		return
	}

	logger.Info("task completed successfully")
	r.clearRetries(t.ID())
	if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusCompleted, ""); updateErr != nil {
		logger.Error("failed to update task status to completed",
			slog.String("error", updateErr.Error()))
	}
}

// execute runs the task under the configured time limits. The soft limit
// cancels the task's context so it can wind down and record partial
// progress; the hard limit stops waiting for a task that did not.
func (r *TaskRunner) execute(t Task) error {
	execCtx := r.ctx
	if r.config.SoftTimeLimit > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(execCtx, r.config.SoftTimeLimit)
		defer cancel()
	}

	if r.config.HardTimeLimit <= 0 {
		return t.Execute(execCtx)
	}

	done := make(chan error, 1)
	go func() {
		done <- t.Execute(execCtx)
	}()

	hardTimer := time.NewTimer(r.config.HardTimeLimit)
	defer hardTimer.Stop()

	select {
	case err := <-done:
		return err
	case <-hardTimer.C:
		// The task ignored its cancelled context. Abandon it rather than
		// blocking a worker indefinitely.
		return fmt.Errorf("task exceeded hard time limit of %s", r.config.HardTimeLimit)
	}
}

// handleFailure either schedules a retry with exponential backoff or, once
// retries are exhausted, marks the task failed.
func (r *TaskRunner) handleFailure(ctx context.Context, t Task, taskErr error, logger *slog.Logger) {
	attempt := r.incrementRetries(t.ID())

	if attempt <= r.config.MaxRetries {
		delay := r.config.RetryBackoff << (attempt - 1)
		logger.Info("scheduling task retry",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", r.config.MaxRetries),
			slog.Duration("delay", delay))

		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending,
			fmt.Sprintf("retry %d/%d scheduled: %v", attempt, r.config.MaxRetries, taskErr)); err != nil {
			logger.Error("failed to reset task status for retry",
				slog.String("error", err.Error()))
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			select {
			case <-r.ctx.Done():
				// Shutdown; the task is persisted as pending and will be
				// recovered on the next start.
				return
			case <-time.After(delay):
			}
			if err := r.queue.Enqueue(t); err != nil {
				logger.Error("failed to requeue task for retry",
					slog.String("error", err.Error()))
			}
		}()
		return
	}

	r.clearRetries(t.ID())
	if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, taskErr.Error()); updateErr != nil {
		logger.Error("failed to update task status to failed",
			slog.String("error", updateErr.Error()))
	}
	r.errHandler(t, taskErr)
}

func (r *TaskRunner) incrementRetries(id uuid.UUID) int {
	r.retryMu.Lock()
	defer r.retryMu.Unlock()
	r.retries[id]++
	return r.retries[id]
}

func (r *TaskRunner) clearRetries(id uuid.UUID) {
	r.retryMu.Lock()
	defer r.retryMu.Unlock()
	delete(r.retries, id)
}

// stuckTaskMonitor periodically checks for tasks that have been in
// "processing" state for too long and resets them
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks",
					slog.String("error", err.Error()))
				continue
			}

			if len(stuckTasks) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", slog.Int("count", len(stuckTasks)))

			for _, t := range stuckTasks {
				if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending,
					"Reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task status",
						slog.String("task_id", t.ID().String()),
						slog.String("task_type", t.Type()),
						slog.String("error", err.Error()))
					continue
				}
				r.requeueRecovered(ctx, t)
			}
		}
	}
}
