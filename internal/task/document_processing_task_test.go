package task

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opendeck/opendeck-api/internal/domain"
)

func TestNewDocumentProcessingTaskValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	processor := &mockProcessor{}
	collectionID := uuid.New()
	ownerID := uuid.New()
	docIDs := []uuid.UUID{uuid.New()}

	tests := []struct {
		name         string
		collectionID uuid.UUID
		documentIDs  []uuid.UUID
		ownerID      uuid.UUID
		processor    Processor
		logger       *slog.Logger
		wantErr      error
	}{
		{
			name:         "valid",
			collectionID: collectionID,
			documentIDs:  docIDs,
			ownerID:      ownerID,
			processor:    processor,
			logger:       logger,
		},
		{
			name:        "missing collection",
			documentIDs: docIDs,
			ownerID:     ownerID,
			processor:   processor,
			logger:      logger,
			wantErr:     ErrEmptyCollectionID,
		},
		{
			name:         "no documents",
			collectionID: collectionID,
			ownerID:      ownerID,
			processor:    processor,
			logger:       logger,
			wantErr:      ErrNoDocuments,
		},
		{
			name:         "missing owner",
			collectionID: collectionID,
			documentIDs:  docIDs,
			processor:    processor,
			logger:       logger,
			wantErr:      ErrEmptyOwnerID,
		},
		{
			name:         "nil processor",
			collectionID: collectionID,
			documentIDs:  docIDs,
			ownerID:      ownerID,
			logger:       logger,
			wantErr:      ErrNilProcessor,
		},
		{
			name:         "nil logger",
			collectionID: collectionID,
			documentIDs:  docIDs,
			ownerID:      ownerID,
			processor:    processor,
			wantErr:      ErrNilLogger,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task, err := NewDocumentProcessingTask(
				tc.collectionID, tc.documentIDs, tc.ownerID, tc.processor, tc.logger)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, task)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TaskTypeDocumentProcessing, task.Type())
			assert.Equal(t, TaskStatusPending, task.Status())
		})
	}
}

func TestDocumentProcessingTaskPayload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collectionID := uuid.New()
	ownerID := uuid.New()
	docIDs := []uuid.UUID{uuid.New(), uuid.New()}

	task, err := NewDocumentProcessingTask(collectionID, docIDs, ownerID, &mockProcessor{}, logger)
	require.NoError(t, err)

	var payload documentProcessingPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, collectionID, payload.CollectionID)
	assert.Equal(t, docIDs, payload.DocumentIDs)
	assert.Equal(t, ownerID, payload.OwnerID)
}

func TestDocumentProcessingTaskExecute(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	collectionID := uuid.New()
	ownerID := uuid.New()
	docIDs := []uuid.UUID{uuid.New(), uuid.New()}

	t.Run("passes batch through to the processor", func(t *testing.T) {
		var gotCollection, gotOwner uuid.UUID
		var gotDocs []uuid.UUID
		processor := &mockProcessor{
			ProcessFn: func(_ context.Context, c uuid.UUID, d []uuid.UUID, o uuid.UUID) (*domain.ProcessingResult, error) {
				gotCollection, gotDocs, gotOwner = c, d, o
				return &domain.ProcessingResult{
					TotalCards:          5,
					SuccessfulDocuments: 2,
					CollectionID:        c,
				}, nil
			},
		}

		task, err := NewDocumentProcessingTask(collectionID, docIDs, ownerID, processor, logger)
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, collectionID, gotCollection)
		assert.Equal(t, docIDs, gotDocs)
		assert.Equal(t, ownerID, gotOwner)
	})

	t.Run("per-document failures do not fail the task", func(t *testing.T) {
		processor := &mockProcessor{
			ProcessFn: func(ctx context.Context, c uuid.UUID, _ []uuid.UUID, _ uuid.UUID) (*domain.ProcessingResult, error) {
				return &domain.ProcessingResult{
					SuccessfulDocuments: 1,
					FailedDocuments:     1,
					TotalCards:          3,
					CollectionID:        c,
				}, nil
			},
		}

		task, err := NewDocumentProcessingTask(collectionID, docIDs, ownerID, processor, logger)
		require.NoError(t, err)

		assert.NoError(t, task.Execute(context.Background()))
	})

	t.Run("batch error is propagated", func(t *testing.T) {
		batchErr := errors.New("batch aborted")
		processor := &mockProcessor{
			ProcessFn: func(context.Context, uuid.UUID, []uuid.UUID, uuid.UUID) (*domain.ProcessingResult, error) {
				return nil, batchErr
			},
		}

		task, err := NewDocumentProcessingTask(collectionID, docIDs, ownerID, processor, logger)
		require.NoError(t, err)

		assert.ErrorIs(t, task.Execute(context.Background()), batchErr)
	})
}

func TestDocumentProcessingTaskFactoryRehydrate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	executed := false
	processor := &mockProcessor{
		ProcessFn: func(ctx context.Context, c uuid.UUID, _ []uuid.UUID, _ uuid.UUID) (*domain.ProcessingResult, error) {
			executed = true
			return &domain.ProcessingResult{CollectionID: c}, nil
		},
	}
	factory := NewDocumentProcessingTaskFactory(processor, logger)

	original, err := factory.CreateTask(uuid.New(), []uuid.UUID{uuid.New()}, uuid.New())
	require.NoError(t, err)

	// Simulate a task loaded from the database: same ID, type, and
	// payload, but no execution logic.
	stored := newMockTask(original.Type(), original.Payload())
	stored.TaskID = original.ID()

	rehydrated, err := factory.Rehydrate(stored)
	require.NoError(t, err)
	assert.Equal(t, original.ID(), rehydrated.ID())
	assert.Equal(t, TaskTypeDocumentProcessing, rehydrated.Type())

	require.NoError(t, rehydrated.Execute(context.Background()))
	assert.True(t, executed)

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := factory.Rehydrate(newMockTask("something_else", []byte("{}")))
		assert.Error(t, err)
	})

	t.Run("malformed payload is rejected", func(t *testing.T) {
		_, err := factory.Rehydrate(newMockTask(TaskTypeDocumentProcessing, []byte("not json")))
		assert.Error(t, err)
	})
}
