package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opendeck/opendeck-api/internal/domain"
)

// Common errors
var (
	ErrNilProcessor      = errors.New("document processor cannot be nil")
	ErrNilLogger         = errors.New("logger cannot be nil")
	ErrEmptyCollectionID = errors.New("collection ID cannot be empty")
	ErrEmptyOwnerID      = errors.New("owner ID cannot be empty")
	ErrNoDocuments       = errors.New("at least one document ID is required")
)

// Processor defines the interface for the document processing pipeline.
type Processor interface {
	// ProcessDocuments runs the flashcard generation pipeline for a batch
	// of documents belonging to a collection.
	ProcessDocuments(
		ctx context.Context,
		collectionID uuid.UUID,
		documentIDs []uuid.UUID,
		ownerID uuid.UUID,
	) (*domain.ProcessingResult, error)
}

// documentProcessingPayload is the serialized data stored with the task.
type documentProcessingPayload struct {
	CollectionID uuid.UUID   `json:"collection_id"`
	DocumentIDs  []uuid.UUID `json:"document_ids"`
	OwnerID      uuid.UUID   `json:"owner_id"`
}

// DocumentProcessingTask implements the Task interface for generating
// flashcards from a batch of uploaded documents.
type DocumentProcessingTask struct {
	id           uuid.UUID
	collectionID uuid.UUID
	documentIDs  []uuid.UUID
	ownerID      uuid.UUID
	processor    Processor
	logger       *slog.Logger
	status       TaskStatus
}

// NewDocumentProcessingTask creates a new document processing task.
func NewDocumentProcessingTask(
	collectionID uuid.UUID,
	documentIDs []uuid.UUID,
	ownerID uuid.UUID,
	processor Processor,
	logger *slog.Logger,
) (*DocumentProcessingTask, error) {
	if collectionID == uuid.Nil {
		return nil, ErrEmptyCollectionID
	}
	if len(documentIDs) == 0 {
		return nil, ErrNoDocuments
	}
	if ownerID == uuid.Nil {
		return nil, ErrEmptyOwnerID
	}
	if processor == nil {
		return nil, ErrNilProcessor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	return &DocumentProcessingTask{
		id:           uuid.New(),
		collectionID: collectionID,
		documentIDs:  documentIDs,
		ownerID:      ownerID,
		processor:    processor,
		logger:       logger,
		status:       TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *DocumentProcessingTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DocumentProcessingTask) Type() string {
	return TaskTypeDocumentProcessing
}

// Payload returns the serialized task data
func (t *DocumentProcessingTask) Payload() []byte {
	payload := documentProcessingPayload{
		CollectionID: t.collectionID,
		DocumentIDs:  t.documentIDs,
		OwnerID:      t.ownerID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshalling a struct of UUIDs cannot fail in practice.
		t.logger.Error("failed to marshal task payload",
			slog.String("task_id", t.id.String()),
			slog.String("error", err.Error()))
		return []byte("{}")
	}

	return data
}

// Status returns the current task status
func (t *DocumentProcessingTask) Status() TaskStatus {
	return t.status
}

// Execute runs the document processing pipeline. Per-document failures are
// recorded on the documents themselves and do not fail the task; only a
// batch-level error (such as the context expiring) is returned so the
// runner can retry.
func (t *DocumentProcessingTask) Execute(ctx context.Context) error {
	log := t.logger.With(
		slog.String("task_id", t.id.String()),
		slog.String("collection_id", t.collectionID.String()),
	)

	log.InfoContext(ctx, "starting document processing",
		slog.Int("document_count", len(t.documentIDs)))

	result, err := t.processor.ProcessDocuments(ctx, t.collectionID, t.documentIDs, t.ownerID)
	if err != nil {
		return fmt.Errorf("document processing failed: %w", err)
	}

	if result.FailedDocuments > 0 {
		log.WarnContext(ctx, "document processing finished with failures",
			slog.Int("successful_documents", result.SuccessfulDocuments),
			slog.Int("failed_documents", result.FailedDocuments),
			slog.Int("total_cards", result.TotalCards))
	} else {
		log.InfoContext(ctx, "document processing finished",
			slog.Int("successful_documents", result.SuccessfulDocuments),
			slog.Int("total_cards", result.TotalCards))
	}

	return nil
}

var _ Task = (*DocumentProcessingTask)(nil)
