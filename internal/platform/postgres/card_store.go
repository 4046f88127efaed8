package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/platform/logger"
	"github.com/opendeck/opendeck-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db store.DBTX
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresCardStore(db store.DBTX) *PostgresCardStore {
	return &PostgresCardStore{db: db}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// CreateMultiple implements store.CardStore.CreateMultiple.
// Each card is validated before any row is written. Atomicity comes from
// the caller's transaction; see the interface contract.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) (int, error) {
	log := logger.FromContext(ctx)

	if len(cards) == 0 {
		return 0, nil
	}

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO cards (id, collection_id, question, answer, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, MapError(err)
	}
	defer stmt.Close()

	created := 0
	for _, card := range cards {
		if _, err := stmt.ExecContext(ctx,
			card.ID,
			card.CollectionID,
			card.Question,
			card.Answer,
			card.Source,
			card.CreatedAt,
			card.UpdatedAt,
		); err != nil {
			log.Error("failed to insert card",
				slog.String("card_id", card.ID.String()),
				slog.String("error", err.Error()))
			return created, MapError(err)
		}
		created++
	}

	log.Debug("cards created", slog.Int("count", created))
	return created, nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `
		SELECT id, collection_id, question, answer, source, created_at, updated_at
		FROM cards
		WHERE id = $1
	`

	var card domain.Card
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.CollectionID,
		&card.Question,
		&card.Answer,
		&card.Source,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		if mapped := MapError(err); store.IsNotFoundError(mapped) {
			return nil, fmt.Errorf("%w: %v", store.ErrCardNotFound, err)
		}
		return nil, MapError(err)
	}

	return &card, nil
}

// ListByCollection implements store.CardStore.ListByCollection
func (s *PostgresCardStore) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error) {
	query := `
		SELECT id, collection_id, question, answer, source, created_at, updated_at
		FROM cards
		WHERE collection_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		var card domain.Card
		if err := rows.Scan(
			&card.ID,
			&card.CollectionID,
			&card.Question,
			&card.Answer,
			&card.Source,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, &card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return cards, nil
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return NewPostgresCardStore(tx)
}
