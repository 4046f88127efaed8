package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	ErrCardIDEmpty           = errors.New("card ID cannot be empty")
	ErrCardCollectionIDEmpty = errors.New("card collection ID cannot be empty")
	ErrEmptyQuestion         = errors.New("question cannot be empty")
	ErrEmptyAnswer           = errors.New("answer cannot be empty")
)

// FlashcardData is the validated output of a generation run: one
// question/answer pair with mandatory source attribution. It is immutable
// once produced by the response validator and carries no persistence
// identity of its own.
type FlashcardData struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"`
}

// Validate checks the generated card content. The source must name the
// originating document; a bare page number is not enough.
func (f FlashcardData) Validate() error {
	if strings.TrimSpace(f.Question) == "" {
		return ErrEmptyQuestion
	}

	if strings.TrimSpace(f.Answer) == "" {
		return ErrEmptyAnswer
	}

	if strings.TrimSpace(f.Source) == "" {
		return ErrMissingSource
	}

	// A meaningful attribution includes at least a short document name.
	if len(strings.TrimSpace(f.Source)) < 5 {
		return ErrMissingSource
	}

	return nil
}

// Card represents a persisted flashcard belonging to a collection.
type Card struct {
	ID           uuid.UUID `json:"id"`
	CollectionID uuid.UUID `json:"collection_id"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCard creates a new Card from validated flashcard data.
// It generates a new UUID for the card ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewCard(collectionID uuid.UUID, data FlashcardData) (*Card, error) {
	card := &Card{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Question:     strings.TrimSpace(data.Question),
		Answer:       strings.TrimSpace(data.Answer),
		Source:       strings.TrimSpace(data.Source),
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.CollectionID == uuid.Nil {
		return ErrCardCollectionIDEmpty
	}

	return FlashcardData{
		Question: c.Question,
		Answer:   c.Answer,
		Source:   c.Source,
	}.Validate()
}

// ProcessingResult summarizes one document-processing batch.
type ProcessingResult struct {
	TotalCards          int       `json:"total_cards"`
	SuccessfulDocuments int       `json:"successful_documents"`
	FailedDocuments     int       `json:"failed_documents"`
	CollectionID        uuid.UUID `json:"collection_id"`
}
