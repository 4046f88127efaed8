package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/platform/logger"
)

// flashcardResponse mirrors the JSON object every provider is instructed
// to return.
type flashcardResponse struct {
	Flashcards []rawFlashcard `json:"flashcards"`
}

type rawFlashcard struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
	Source   *string `json:"source"`
}

// ParseFlashcardResponse parses a provider's JSON response into validated
// flashcard data. All providers share this function so malformed cards
// are handled identically regardless of backend.
//
// Cards missing a question or answer are skipped with a warning. A card
// missing a source gets "<documentName> - Page Unknown"; a source that
// does not mention the document gets the document name prefixed. The
// function fails with ErrInvalidResponse if the JSON cannot be parsed or
// lacks the flashcards field, and with ErrNoValidCards if nothing
// usable survives validation.
func ParseFlashcardResponse(ctx context.Context, responseText, documentName string) ([]domain.FlashcardData, error) {
	log := logger.FromContextOrDefault(ctx, slog.Default())

	var parsed flashcardResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		preview := responseText
		if len(preview) > 500 {
			preview = preview[:500]
		}
		log.Error("failed to parse provider response",
			slog.String("error", err.Error()),
			slog.String("response", preview))
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if parsed.Flashcards == nil {
		return nil, fmt.Errorf("%w: response missing 'flashcards' field", ErrInvalidResponse)
	}

	cards := make([]domain.FlashcardData, 0, len(parsed.Flashcards))
	for i, raw := range parsed.Flashcards {
		if raw.Question == nil || strings.TrimSpace(*raw.Question) == "" {
			log.Warn("flashcard missing question", slog.Int("index", i))
			continue
		}
		if raw.Answer == nil || strings.TrimSpace(*raw.Answer) == "" {
			log.Warn("flashcard missing answer", slog.Int("index", i))
			continue
		}

		var source string
		if raw.Source == nil || strings.TrimSpace(*raw.Source) == "" {
			log.Warn("flashcard missing source", slog.Int("index", i))
			source = fmt.Sprintf("%s - Page Unknown", documentName)
		} else {
			source = strings.TrimSpace(*raw.Source)
			if !strings.Contains(strings.ToLower(source), strings.ToLower(documentName)) {
				source = fmt.Sprintf("%s - %s", documentName, source)
			}
		}

		card := domain.FlashcardData{
			Question: strings.TrimSpace(*raw.Question),
			Answer:   strings.TrimSpace(*raw.Answer),
			Source:   source,
		}
		if err := card.Validate(); err != nil {
			log.Warn("flashcard failed validation",
				slog.Int("index", i),
				slog.String("error", err.Error()))
			continue
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return nil, ErrNoValidCards
	}

	log.Info("flashcards parsed",
		slog.Int("total", len(parsed.Flashcards)),
		slog.Int("valid", len(cards)))

	return cards, nil
}
