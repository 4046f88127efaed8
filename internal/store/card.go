package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/opendeck/opendeck-api/internal/domain"
)

// CardStore defines the interface for flashcard persistence.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store and returns the
	// number actually created. All cards must be valid according to domain
	// validation rules.
	//
	// This method MUST be run within a transaction for atomicity: use
	// WithTx together with store.RunInTransaction. Calling it outside a
	// transaction may result in partial insertion on failure.
	CreateMultiple(ctx context.Context, cards []*domain.Card) (int, error)

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByCollection returns all cards persisted in the given collection.
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CardStore
}
