package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/opendeck/opendeck-api/internal/domain"
)

// DocumentStore defines the interface for document persistence.
//
// The document processor is the only mutator of document status; the
// interface therefore exposes status transitions rather than a generic
// update, so implementations can enforce the uploaded → processing →
// {completed | failed} state machine at the storage boundary.
type DocumentStore interface {
	// Create saves a new document in the uploaded state.
	Create(ctx context.Context, doc *domain.Document) error

	// GetByID retrieves a document by its unique ID, scoped to the owner.
	// Returns ErrDocumentNotFound if the document does not exist or belongs
	// to a different owner.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Document, error)

	// MarkProcessing attempts the uploaded → processing transition as a
	// single conditional write: the update only applies while the document
	// is still in the uploaded state. It returns true when this caller won
	// the transition and false when another invocation already moved the
	// document past uploaded. This closes the check-then-act race between
	// near-simultaneous task dispatches for the same document.
	MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkCompleted records the terminal completed state along with the
	// target collection and processing timestamp.
	MarkCompleted(ctx context.Context, id, collectionID uuid.UUID) error

	// MarkFailed records the terminal failed state with a human-readable
	// error message retrievable via status polling.
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error

	// ListByStatus returns the documents with the given status, scoped to
	// the owner. Used by status polling and cleanup.
	ListByStatus(ctx context.Context, ownerID uuid.UUID, status domain.DocumentStatus) ([]*domain.Document, error)

	// WithTx returns a new DocumentStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) DocumentStore
}
