package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/opendeck/opendeck-api/internal/domain"
)

// CollectionStore defines the interface for collection persistence.
type CollectionStore interface {
	// Create saves a new collection.
	Create(ctx context.Context, collection *domain.Collection) error

	// GetByID retrieves a collection by its unique ID, scoped to the owner.
	// Returns ErrCollectionNotFound if the collection does not exist or
	// belongs to a different owner.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Collection, error)

	// IncrementCardCount adjusts the collection's denormalized card count
	// by delta. Returns ErrCollectionNotFound if the collection does not
	// exist.
	IncrementCardCount(ctx context.Context, id uuid.UUID, delta int) error

	// WithTx returns a new CollectionStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CollectionStore
}
