package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/opendeck/opendeck-api/internal/generation"
	"github.com/opendeck/opendeck-api/internal/storage"
	"github.com/opendeck/opendeck-api/internal/store"
)

// Extractor abstracts the extraction engine for testing.
type Extractor interface {
	Extract(ctx context.Context, path string) (*extraction.Result, error)
}

// DocumentProcessor runs the pipeline that turns uploaded documents into
// flashcards: extract text, generate cards, persist them, and track each
// document's status through the uploaded → processing → completed/failed
// state machine.
type DocumentProcessor struct {
	tx          store.TxRunner
	documents   store.DocumentStore
	cards       store.CardStore
	collections store.CollectionStore
	files       storage.FileStore
	extractor   Extractor
	provider    generation.Provider
	maxCards    int
	logger      *slog.Logger
}

// NewDocumentProcessor creates a DocumentProcessor with its dependencies.
func NewDocumentProcessor(
	tx store.TxRunner,
	documents store.DocumentStore,
	cards store.CardStore,
	collections store.CollectionStore,
	files storage.FileStore,
	extractor Extractor,
	provider generation.Provider,
	maxCards int,
	logger *slog.Logger,
) *DocumentProcessor {
	return &DocumentProcessor{
		tx:          tx,
		documents:   documents,
		cards:       cards,
		collections: collections,
		files:       files,
		extractor:   extractor,
		provider:    provider,
		maxCards:    maxCards,
		logger:      logger,
	}
}

// ProcessDocuments processes each document in turn and returns aggregate
// statistics. A failure on one document marks that document failed and
// moves on; it never aborts the batch. The returned error is non-nil only
// for batch-level problems such as context cancellation.
func (p *DocumentProcessor) ProcessDocuments(
	ctx context.Context,
	collectionID uuid.UUID,
	documentIDs []uuid.UUID,
	ownerID uuid.UUID,
) (*domain.ProcessingResult, error) {
	log := p.logger.With(
		slog.String("collection_id", collectionID.String()),
		slog.String("owner_id", ownerID.String()))

	log.InfoContext(ctx, "processing documents started",
		slog.Int("document_count", len(documentIDs)))

	result := &domain.ProcessingResult{CollectionID: collectionID}

	for _, docID := range documentIDs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("processing interrupted: %w", err)
		}

		created, outcome := p.processOne(ctx, docID, ownerID, collectionID)
		switch outcome {
		case outcomeSucceeded:
			result.SuccessfulDocuments++
			result.TotalCards += created
		case outcomeFailed:
			result.FailedDocuments++
			// Cards persisted before a late failure, such as a completion
			// update that did not apply, exist in the database and count
			// toward the collection total.
			result.TotalCards += created
		case outcomeSkipped:
			// Already claimed by a concurrent run; neither counter moves.
		}
	}

	if result.TotalCards > 0 {
		if err := p.collections.IncrementCardCount(ctx, collectionID, result.TotalCards); err != nil {
			// The cards are already persisted; a stale count is
			// preferable to failing the whole batch here.
			log.ErrorContext(ctx, "failed to update collection card count",
				slog.Int("delta", result.TotalCards),
				slog.String("error", err.Error()))
		}
	}

	log.InfoContext(ctx, "processing documents completed",
		slog.Int("total_cards", result.TotalCards),
		slog.Int("successful_documents", result.SuccessfulDocuments),
		slog.Int("failed_documents", result.FailedDocuments))

	return result, nil
}

type outcome int

const (
	outcomeSucceeded outcome = iota
	outcomeFailed
	outcomeSkipped
)

// processOne runs the pipeline for a single document and returns the
// number of cards created along with how the document should be counted.
func (p *DocumentProcessor) processOne(
	ctx context.Context,
	docID, ownerID, collectionID uuid.UUID,
) (int, outcome) {
	log := p.logger.With(slog.String("document_id", docID.String()))

	doc, err := p.documents.GetByID(ctx, docID, ownerID)
	if err != nil {
		log.ErrorContext(ctx, "document not found",
			slog.String("error", err.Error()))
		return 0, outcomeFailed
	}

	// A document that completed in an earlier run counts as successful
	// without redoing any work.
	if doc.Status == domain.DocumentStatusCompleted {
		log.WarnContext(ctx, "document already completed, skipping")
		return 0, outcomeSucceeded
	}

	// The conditional write claims the document; losing the race means
	// another invocation is (or was) handling it.
	claimed, err := p.documents.MarkProcessing(ctx, docID)
	if err != nil {
		log.ErrorContext(ctx, "failed to claim document",
			slog.String("error", err.Error()))
		return 0, outcomeFailed
	}
	if !claimed {
		log.WarnContext(ctx, "document already claimed by another run, skipping")
		return 0, outcomeSkipped
	}

	created, err := p.generateAndPersist(ctx, doc, collectionID)
	if err != nil {
		log.ErrorContext(ctx, "document processing failed",
			slog.String("filename", doc.Filename),
			slog.String("error", err.Error()))
		// The failure must be recorded even when the batch deadline
		// already fired, otherwise the document stays stuck in processing.
		if markErr := p.documents.MarkFailed(context.WithoutCancel(ctx), docID, err.Error()); markErr != nil {
			log.ErrorContext(ctx, "failed to mark document failed",
				slog.String("error", markErr.Error()))
		}
		return 0, outcomeFailed
	}

	if err := p.documents.MarkCompleted(ctx, docID, collectionID); err != nil {
		log.ErrorContext(ctx, "failed to mark document completed",
			slog.String("error", err.Error()))
		return created, outcomeFailed
	}

	log.InfoContext(ctx, "document processed",
		slog.String("filename", doc.Filename),
		slog.Int("cards_generated", created))

	return created, outcomeSucceeded
}

// generateAndPersist extracts the document's text, generates flashcards
// and persists them atomically.
func (p *DocumentProcessor) generateAndPersist(
	ctx context.Context,
	doc *domain.Document,
	collectionID uuid.UUID,
) (int, error) {
	extracted, err := p.extractText(ctx, doc)
	if err != nil {
		return 0, err
	}

	flashcards, err := p.provider.GenerateFlashcards(
		ctx, extracted.FullText, doc.Filename, extracted.Units, p.maxCards)
	if err != nil {
		return 0, fmt.Errorf("card generation: %w", err)
	}

	cards := make([]*domain.Card, 0, len(flashcards))
	for _, data := range flashcards {
		card, err := domain.NewCard(collectionID, data)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping invalid flashcard",
				slog.String("document_id", doc.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return 0, errors.New("no valid cards to persist")
	}

	var created int
	err = p.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		n, err := p.cards.WithTx(tx).CreateMultiple(ctx, cards)
		if err != nil {
			return fmt.Errorf("persist cards: %w", err)
		}
		created = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// extractText fetches the stored file and runs the extraction engine.
// Extraction libraries operate on file paths, so the contents go through
// a temp file that keeps the original extension.
func (p *DocumentProcessor) extractText(ctx context.Context, doc *domain.Document) (*extraction.Result, error) {
	data, err := p.files.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}

	tmp, err := os.CreateTemp("", "opendeck-*"+filepath.Ext(doc.Filename))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			p.logger.WarnContext(ctx, "failed to delete temp file",
				slog.String("path", tmpPath),
				slog.String("error", err.Error()))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	result, err := p.extractor.Extract(ctx, tmpPath)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	p.logger.InfoContext(ctx, "text extracted",
		slog.String("document_id", doc.ID.String()),
		slog.Int("units", len(result.Units)),
		slog.Int("chars", len(result.FullText)))

	return result, nil
}
