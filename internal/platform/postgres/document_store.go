package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/platform/logger"
	"github.com/opendeck/opendeck-api/internal/store"
)

// PostgresDocumentStore implements the store.DocumentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDocumentStore struct {
	db store.DBTX
}

// NewPostgresDocumentStore creates a new PostgreSQL implementation of the
// DocumentStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresDocumentStore(db store.DBTX) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

// Ensure PostgresDocumentStore implements store.DocumentStore interface
var _ store.DocumentStore = (*PostgresDocumentStore)(nil)

// Create implements store.DocumentStore.Create
func (s *PostgresDocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	log := logger.FromContext(ctx)

	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO documents (id, owner_id, filename, storage_path, status,
			collection_id, processed_at, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Filename,
		doc.StoragePath,
		doc.Status,
		doc.CollectionID,
		doc.ProcessedAt,
		doc.ErrorMessage,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create document",
			slog.String("document_id", doc.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.DocumentStore.GetByID
func (s *PostgresDocumentStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Document, error) {
	query := `
		SELECT id, owner_id, filename, storage_path, status,
			collection_id, processed_at, error_message, created_at, updated_at
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`

	var doc domain.Document
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Filename,
		&doc.StoragePath,
		&doc.Status,
		&doc.CollectionID,
		&doc.ProcessedAt,
		&doc.ErrorMessage,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, fmt.Errorf("%w: %v", store.ErrDocumentNotFound, err)
		}
		return nil, MapError(err)
	}

	return &doc, nil
}

// MarkProcessing implements store.DocumentStore.MarkProcessing.
//
// The transition is a single conditional UPDATE so two concurrent tasks
// racing for the same document cannot both win: the WHERE clause only
// matches while the document is still uploaded, and the row count tells
// the caller whether its write applied.
func (s *PostgresDocumentStore) MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	log := logger.FromContext(ctx)

	query := `
		UPDATE documents
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.DocumentStatusProcessing,
		time.Now().UTC(),
		id,
		domain.DocumentStatusUploaded,
	)
	if err != nil {
		log.Error("failed to mark document processing",
			slog.String("document_id", id.String()),
			slog.String("error", err.Error()))
		return false, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		log.Info("document already claimed or not found",
			slog.String("document_id", id.String()))
		return false, nil
	}

	return true, nil
}

// MarkCompleted implements store.DocumentStore.MarkCompleted
func (s *PostgresDocumentStore) MarkCompleted(ctx context.Context, id, collectionID uuid.UUID) error {
	return s.markTerminal(ctx, id, domain.DocumentStatusCompleted, &collectionID, "")
}

// MarkFailed implements store.DocumentStore.MarkFailed
func (s *PostgresDocumentStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return s.markTerminal(ctx, id, domain.DocumentStatusFailed, nil, errorMessage)
}

func (s *PostgresDocumentStore) markTerminal(
	ctx context.Context,
	id uuid.UUID,
	status domain.DocumentStatus,
	collectionID *uuid.UUID,
	errorMessage string,
) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()

	// processed_at marks successful processing only; a failed document
	// keeps it NULL.
	var processedAt *time.Time
	if status == domain.DocumentStatusCompleted {
		processedAt = &now
	}

	query := `
		UPDATE documents
		SET status = $1, collection_id = COALESCE($2, collection_id),
			processed_at = COALESCE($3, processed_at), error_message = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		collectionID,
		processedAt,
		errorMessage,
		now,
		id,
	)
	if err != nil {
		log.Error("failed to update document status",
			slog.String("document_id", id.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrDocumentNotFound
	}

	return nil
}

// ListByStatus implements store.DocumentStore.ListByStatus
func (s *PostgresDocumentStore) ListByStatus(
	ctx context.Context,
	ownerID uuid.UUID,
	status domain.DocumentStatus,
) ([]*domain.Document, error) {
	query := `
		SELECT id, owner_id, filename, storage_path, status,
			collection_id, processed_at, error_message, created_at, updated_at
		FROM documents
		WHERE owner_id = $1 AND status = $2
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, status)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.OwnerID,
			&doc.Filename,
			&doc.StoragePath,
			&doc.Status,
			&doc.CollectionID,
			&doc.ProcessedAt,
			&doc.ErrorMessage,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return docs, nil
}

// WithTx implements store.DocumentStore.WithTx
func (s *PostgresDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore {
	return NewPostgresDocumentStore(tx)
}
