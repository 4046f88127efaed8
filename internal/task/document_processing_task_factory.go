package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DocumentProcessingTaskFactory creates DocumentProcessingTask instances.
// It also serves as the Rehydrator for tasks recovered from the database.
type DocumentProcessingTaskFactory struct {
	processor Processor
	logger    *slog.Logger
}

// NewDocumentProcessingTaskFactory creates a new factory for
// DocumentProcessingTasks.
func NewDocumentProcessingTaskFactory(
	processor Processor,
	logger *slog.Logger,
) *DocumentProcessingTaskFactory {
	return &DocumentProcessingTaskFactory{
		processor: processor,
		logger:    logger.With(slog.String("component", "document_processing_task_factory")),
	}
}

// CreateTask creates a new DocumentProcessingTask for the given batch.
func (f *DocumentProcessingTaskFactory) CreateTask(
	collectionID uuid.UUID,
	documentIDs []uuid.UUID,
	ownerID uuid.UUID,
) (Task, error) {
	t, err := NewDocumentProcessingTask(collectionID, documentIDs, ownerID, f.processor, f.logger)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Rehydrate rebuilds an executable DocumentProcessingTask from a stored
// record, preserving its ID.
func (f *DocumentProcessingTaskFactory) Rehydrate(stored Task) (Task, error) {
	if stored.Type() != TaskTypeDocumentProcessing {
		return nil, fmt.Errorf("unknown task type %q", stored.Type())
	}

	var payload documentProcessingPayload
	if err := json.Unmarshal(stored.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode task payload: %w", err)
	}

	t, err := NewDocumentProcessingTask(
		payload.CollectionID,
		payload.DocumentIDs,
		payload.OwnerID,
		f.processor,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	t.id = stored.ID()
	t.status = stored.Status()
	return t, nil
}

var _ Rehydrator = (*DocumentProcessingTaskFactory)(nil)
