package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opendeck/opendeck-api/internal/domain"
)

// mockTask is a controllable Task implementation for runner tests.
type mockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error
}

func newMockTask(taskType string, payload []byte) *mockTask {
	return &mockTask{
		TaskID:      uuid.New(),
		TaskType:    taskType,
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
		ExecuteFn:   func(ctx context.Context) error { return nil },
	}
}

func (t *mockTask) ID() uuid.UUID             { return t.TaskID }
func (t *mockTask) Type() string              { return t.TaskType }
func (t *mockTask) Payload() []byte           { return t.TaskPayload }
func (t *mockTask) Status() TaskStatus        { return t.TaskStatus }
func (t *mockTask) Execute(ctx context.Context) error {
	return t.ExecuteFn(ctx)
}

// statusUpdate records one UpdateTaskStatus call.
type statusUpdate struct {
	ID      uuid.UUID
	Status  TaskStatus
	Message string
}

// mockTaskStore is a thread-safe in-memory TaskStore.
type mockTaskStore struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]Task
	statuses map[uuid.UUID]TaskStatus
	updates  []statusUpdate
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{
		tasks:    make(map[uuid.UUID]Task),
		statuses: make(map[uuid.UUID]TaskStatus),
	}
}

func (s *mockTaskStore) SaveTask(_ context.Context, t Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID()] = t
	s.statuses[t.ID()] = t.Status()
	return nil
}

func (s *mockTaskStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[taskID] = status
	s.updates = append(s.updates, statusUpdate{ID: taskID, Status: status, Message: errorMsg})
	return nil
}

func (s *mockTaskStore) GetPendingTasks(_ context.Context) ([]Task, error) {
	return s.tasksWithStatus(TaskStatusPending), nil
}

func (s *mockTaskStore) GetProcessingTasks(_ context.Context, _ time.Duration) ([]Task, error) {
	return s.tasksWithStatus(TaskStatusProcessing), nil
}

func (s *mockTaskStore) WithTx(_ *sql.Tx) TaskStore { return s }

func (s *mockTaskStore) tasksWithStatus(status TaskStatus) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Task
	for id, t := range s.tasks {
		if s.statuses[id] == status {
			out = append(out, t)
		}
	}
	return out
}

func (s *mockTaskStore) statusOf(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}

func (s *mockTaskStore) updateHistory() []statusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]statusUpdate, len(s.updates))
	copy(out, s.updates)
	return out
}

// mockProcessor implements Processor with a configurable function.
type mockProcessor struct {
	ProcessFn func(ctx context.Context, collectionID uuid.UUID, documentIDs []uuid.UUID, ownerID uuid.UUID) (*domain.ProcessingResult, error)
}

func (p *mockProcessor) ProcessDocuments(
	ctx context.Context,
	collectionID uuid.UUID,
	documentIDs []uuid.UUID,
	ownerID uuid.UUID,
) (*domain.ProcessingResult, error) {
	return p.ProcessFn(ctx, collectionID, documentIDs, ownerID)
}
