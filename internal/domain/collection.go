package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Collection
var (
	ErrEmptyCollectionID      = errors.New("collection ID cannot be empty")
	ErrEmptyCollectionOwnerID = errors.New("collection owner ID cannot be empty")
	ErrEmptyCollectionTitle   = errors.New("collection title cannot be empty")
	ErrNegativeCardCount      = errors.New("collection card count cannot be negative")
)

// Collection is the destination grouping that generated flashcards are
// persisted into. CardCount is a denormalized aggregate maintained by the
// document processor after each batch.
type Collection struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCollection creates a new empty Collection owned by the given user.
// Returns an error if validation fails.
func NewCollection(ownerID uuid.UUID, title, description string) (*Collection, error) {
	collection := &Collection{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CardCount:   0,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := collection.Validate(); err != nil {
		return nil, err
	}

	return collection, nil
}

// Validate checks if the Collection has valid data.
// Returns an error if any field fails validation.
func (c *Collection) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCollectionID
	}

	if c.OwnerID == uuid.Nil {
		return ErrEmptyCollectionOwnerID
	}

	if c.Title == "" {
		return ErrEmptyCollectionTitle
	}

	if c.CardCount < 0 {
		return ErrNegativeCardCount
	}

	return nil
}
