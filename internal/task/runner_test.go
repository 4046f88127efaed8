package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            1,
		QueueSize:              8,
		MaxRetries:             3,
		RetryBackoff:           5 * time.Millisecond,
		StuckTaskAge:           time.Hour,
		StuckTaskCheckInterval: time.Hour,
	}
}

func newTestRunner(store TaskStore, cfg TaskRunnerConfig) *TaskRunner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTaskRunner(store, cfg, logger)
}

func TestTaskRunnerProcessesTask(t *testing.T) {
	store := newMockTaskStore()
	runner := newTestRunner(store, testRunnerConfig())

	executed := make(chan struct{})
	mock := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))
	mock.ExecuteFn = func(ctx context.Context) error {
		close(executed)
		return nil
	}

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), mock))

	select {
	case <-executed:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}

	assert.Eventually(t, func() bool {
		return store.statusOf(mock.ID()) == TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTaskRunnerRetriesFailedTask(t *testing.T) {
	store := newMockTaskStore()
	runner := newTestRunner(store, testRunnerConfig())

	var attempts atomic.Int32
	mock := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))
	mock.ExecuteFn = func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient failure")
		}
		return nil
	}

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), mock))

	assert.Eventually(t, func() bool {
		return store.statusOf(mock.ID()) == TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load())

	// Each retry is recorded as a transition back to pending.
	var retryResets int
	for _, u := range store.updateHistory() {
		if u.Status == TaskStatusPending && strings.Contains(u.Message, "retry") {
			retryResets++
		}
	}
	assert.Equal(t, 2, retryResets)
}

func TestTaskRunnerExhaustsRetries(t *testing.T) {
	store := newMockTaskStore()
	cfg := testRunnerConfig()
	cfg.MaxRetries = 2
	runner := newTestRunner(store, cfg)

	var attempts atomic.Int32
	taskErr := errors.New("permanent failure")
	mock := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))
	mock.ExecuteFn = func(ctx context.Context) error {
		attempts.Add(1)
		return taskErr
	}

	failed := make(chan error, 1)
	runner.SetErrorHandler(func(_ Task, err error) {
		failed <- err
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), mock))

	select {
	case err := <-failed:
		assert.ErrorIs(t, err, taskErr)
	case <-time.After(5 * time.Second):
		t.Fatal("task never reached the error handler")
	}

	// Initial attempt plus two retries.
	assert.Equal(t, int32(3), attempts.Load())
	assert.Eventually(t, func() bool {
		return store.statusOf(mock.ID()) == TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTaskRunnerSoftTimeLimit(t *testing.T) {
	store := newMockTaskStore()
	cfg := testRunnerConfig()
	cfg.MaxRetries = 0
	cfg.SoftTimeLimit = 20 * time.Millisecond
	runner := newTestRunner(store, cfg)

	mock := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))
	mock.ExecuteFn = func(ctx context.Context) error {
		// A cooperative task winds down when its context expires.
		<-ctx.Done()
		return ctx.Err()
	}

	failed := make(chan error, 1)
	runner.SetErrorHandler(func(_ Task, err error) {
		failed <- err
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), mock))

	select {
	case err := <-failed:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("soft time limit did not fire")
	}
}

func TestTaskRunnerHardTimeLimit(t *testing.T) {
	store := newMockTaskStore()
	cfg := testRunnerConfig()
	cfg.MaxRetries = 0
	cfg.SoftTimeLimit = 10 * time.Millisecond
	cfg.HardTimeLimit = 30 * time.Millisecond
	runner := newTestRunner(store, cfg)

	release := make(chan struct{})
	defer close(release)

	mock := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))
	mock.ExecuteFn = func(ctx context.Context) error {
		// An uncooperative task that ignores its cancelled context.
		<-release
		return nil
	}

	failed := make(chan error, 1)
	runner.SetErrorHandler(func(_ Task, err error) {
		failed <- err
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), mock))

	select {
	case err := <-failed:
		assert.Contains(t, err.Error(), "hard time limit")
	case <-time.After(2 * time.Second):
		t.Fatal("hard time limit did not fire")
	}

	assert.Eventually(t, func() bool {
		return store.statusOf(mock.ID()) == TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTaskRunnerRecover(t *testing.T) {
	store := newMockTaskStore()

	pendingExecuted := make(chan struct{})
	pending := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))
	pending.ExecuteFn = func(ctx context.Context) error {
		close(pendingExecuted)
		return nil
	}
	require.NoError(t, store.SaveTask(context.Background(), pending))

	interruptedExecuted := make(chan struct{})
	interrupted := newMockTask(TaskTypeDocumentProcessing, []byte("{}"))
	interrupted.ExecuteFn = func(ctx context.Context) error {
		close(interruptedExecuted)
		return nil
	}
	require.NoError(t, store.SaveTask(context.Background(), interrupted))
	require.NoError(t, store.UpdateTaskStatus(
		context.Background(), interrupted.ID(), TaskStatusProcessing, ""))

	runner := newTestRunner(store, testRunnerConfig())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	for name, ch := range map[string]chan struct{}{
		"pending":     pendingExecuted,
		"interrupted": interruptedExecuted,
	} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s task was not re-executed after recovery", name)
		}
	}

	assert.Eventually(t, func() bool {
		return store.statusOf(pending.ID()) == TaskStatusCompleted &&
			store.statusOf(interrupted.ID()) == TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTaskRunnerRecoverRehydrates(t *testing.T) {
	store := newMockTaskStore()

	// A stored task carries type and payload but no execution logic.
	stored := newMockTask("unknown_type", []byte("{}"))
	stored.ExecuteFn = func(ctx context.Context) error {
		t.Error("stored task must not run without rehydration")
		return nil
	}
	require.NoError(t, store.SaveTask(context.Background(), stored))

	runner := newTestRunner(store, testRunnerConfig())
	runner.SetRehydrator(rehydratorFunc(func(t Task) (Task, error) {
		return nil, errors.New("unknown task type")
	}))

	require.NoError(t, runner.Start())
	defer runner.Stop()

	// Tasks that cannot be rehydrated are marked failed instead of requeued.
	assert.Eventually(t, func() bool {
		return store.statusOf(stored.ID()) == TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

// rehydratorFunc adapts a function to the Rehydrator interface.
type rehydratorFunc func(t Task) (Task, error)

func (f rehydratorFunc) Rehydrate(t Task) (Task, error) { return f(t) }
