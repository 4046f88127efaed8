package generation

import (
	"context"

	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/extraction"
)

// Provider generates flashcards from extracted document text. All
// backends share the same prompt construction and response validation,
// so cards are interchangeable regardless of which provider produced
// them.
type Provider interface {
	// GenerateFlashcards produces up to maxCards flashcards from the
	// document text. The units carry page or slide attribution that the
	// provider passes through to card sources. Implementations retry
	// transient failures internally; a returned error is final.
	GenerateFlashcards(
		ctx context.Context,
		documentText string,
		documentName string,
		units []extraction.Unit,
		maxCards int,
	) ([]domain.FlashcardData, error)

	// HealthCheck verifies that the provider is reachable and its
	// credentials are accepted.
	HealthCheck(ctx context.Context) error

	// Name returns the provider identifier, e.g. "gemini" or "ollama".
	Name() string
}
