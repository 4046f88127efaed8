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

// PostgresCollectionStore implements the store.CollectionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCollectionStore struct {
	db store.DBTX
}

// NewPostgresCollectionStore creates a new PostgreSQL implementation of
// the CollectionStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
func NewPostgresCollectionStore(db store.DBTX) *PostgresCollectionStore {
	return &PostgresCollectionStore{db: db}
}

// Ensure PostgresCollectionStore implements store.CollectionStore interface
var _ store.CollectionStore = (*PostgresCollectionStore)(nil)

// Create implements store.CollectionStore.Create
func (s *PostgresCollectionStore) Create(ctx context.Context, collection *domain.Collection) error {
	log := logger.FromContext(ctx)

	if err := collection.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO collections (id, owner_id, title, description, card_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		collection.ID,
		collection.OwnerID,
		collection.Title,
		collection.Description,
		collection.CardCount,
		collection.CreatedAt,
		collection.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create collection",
			slog.String("collection_id", collection.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByID implements store.CollectionStore.GetByID
func (s *PostgresCollectionStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Collection, error) {
	query := `
		SELECT id, owner_id, title, description, card_count, created_at, updated_at
		FROM collections
		WHERE id = $1 AND owner_id = $2
	`

	var collection domain.Collection
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&collection.ID,
		&collection.OwnerID,
		&collection.Title,
		&collection.Description,
		&collection.CardCount,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, fmt.Errorf("%w: %v", store.ErrCollectionNotFound, err)
		}
		return nil, MapError(err)
	}

	return &collection, nil
}

// IncrementCardCount implements store.CollectionStore.IncrementCardCount
func (s *PostgresCollectionStore) IncrementCardCount(ctx context.Context, id uuid.UUID, delta int) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE collections
		SET card_count = card_count + $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, delta, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to increment card count",
			slog.String("collection_id", id.String()),
			slog.Int("delta", delta),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrCollectionNotFound
	}

	return nil
}

// WithTx implements store.CollectionStore.WithTx
func (s *PostgresCollectionStore) WithTx(tx *sql.Tx) store.CollectionStore {
	return NewPostgresCollectionStore(tx)
}
