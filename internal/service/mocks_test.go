package service

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/opendeck/opendeck-api/internal/store"
)

// Hand-written mocks with function fields. Only the methods a test
// configures matter; unconfigured calls fail loudly.

type mockDocumentStore struct {
	GetByIDFn        func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Document, error)
	MarkProcessingFn func(ctx context.Context, id uuid.UUID) (bool, error)
	MarkCompletedFn  func(ctx context.Context, id, collectionID uuid.UUID) error
	MarkFailedFn     func(ctx context.Context, id uuid.UUID, errorMessage string) error
}

func (m *mockDocumentStore) Create(ctx context.Context, doc *domain.Document) error {
	return errors.New("not configured")
}

func (m *mockDocumentStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Document, error) {
	if m.GetByIDFn == nil {
		return nil, errors.New("GetByID not configured")
	}
	return m.GetByIDFn(ctx, id, ownerID)
}

func (m *mockDocumentStore) MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.MarkProcessingFn == nil {
		return false, errors.New("MarkProcessing not configured")
	}
	return m.MarkProcessingFn(ctx, id)
}

func (m *mockDocumentStore) MarkCompleted(ctx context.Context, id, collectionID uuid.UUID) error {
	if m.MarkCompletedFn == nil {
		return errors.New("MarkCompleted not configured")
	}
	return m.MarkCompletedFn(ctx, id, collectionID)
}

func (m *mockDocumentStore) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	if m.MarkFailedFn == nil {
		return errors.New("MarkFailed not configured")
	}
	return m.MarkFailedFn(ctx, id, errorMessage)
}

func (m *mockDocumentStore) ListByStatus(ctx context.Context, ownerID uuid.UUID, status domain.DocumentStatus) ([]*domain.Document, error) {
	return nil, errors.New("not configured")
}

func (m *mockDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore { return m }

type mockCardStore struct {
	CreateMultipleFn func(ctx context.Context, cards []*domain.Card) (int, error)
}

func (m *mockCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) (int, error) {
	if m.CreateMultipleFn == nil {
		return 0, errors.New("CreateMultiple not configured")
	}
	return m.CreateMultipleFn(ctx, cards)
}

func (m *mockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return nil, errors.New("not configured")
}

func (m *mockCardStore) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]*domain.Card, error) {
	return nil, errors.New("not configured")
}

func (m *mockCardStore) WithTx(tx *sql.Tx) store.CardStore { return m }

type mockCollectionStore struct {
	IncrementCardCountFn func(ctx context.Context, id uuid.UUID, delta int) error
}

func (m *mockCollectionStore) Create(ctx context.Context, collection *domain.Collection) error {
	return errors.New("not configured")
}

func (m *mockCollectionStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Collection, error) {
	return nil, errors.New("not configured")
}

func (m *mockCollectionStore) IncrementCardCount(ctx context.Context, id uuid.UUID, delta int) error {
	if m.IncrementCardCountFn == nil {
		return errors.New("IncrementCardCount not configured")
	}
	return m.IncrementCardCountFn(ctx, id, delta)
}

func (m *mockCollectionStore) WithTx(tx *sql.Tx) store.CollectionStore { return m }

type mockFileStore struct {
	GetFn func(ctx context.Context, path string) ([]byte, error)
}

func (m *mockFileStore) Save(ctx context.Context, ownerID uuid.UUID, filename string, r io.Reader) (string, error) {
	return "", errors.New("not configured")
}

func (m *mockFileStore) Get(ctx context.Context, path string) ([]byte, error) {
	if m.GetFn == nil {
		return nil, errors.New("Get not configured")
	}
	return m.GetFn(ctx, path)
}

func (m *mockFileStore) Delete(ctx context.Context, path string) error { return nil }

func (m *mockFileStore) Exists(ctx context.Context, path string) (bool, error) {
	return false, errors.New("not configured")
}

type mockExtractor struct {
	ExtractFn func(ctx context.Context, path string) (*extraction.Result, error)
}

func (m *mockExtractor) Extract(ctx context.Context, path string) (*extraction.Result, error) {
	if m.ExtractFn == nil {
		return nil, errors.New("Extract not configured")
	}
	return m.ExtractFn(ctx, path)
}

type mockProvider struct {
	GenerateFlashcardsFn func(ctx context.Context, documentText, documentName string, units []extraction.Unit, maxCards int) ([]domain.FlashcardData, error)
}

func (m *mockProvider) GenerateFlashcards(ctx context.Context, documentText, documentName string, units []extraction.Unit, maxCards int) ([]domain.FlashcardData, error) {
	if m.GenerateFlashcardsFn == nil {
		return nil, errors.New("GenerateFlashcards not configured")
	}
	return m.GenerateFlashcardsFn(ctx, documentText, documentName, units, maxCards)
}

func (m *mockProvider) HealthCheck(ctx context.Context) error { return nil }

func (m *mockProvider) Name() string { return "mock" }

// fakeTxRunner invokes the function directly with a nil transaction; the
// mocks' WithTx implementations ignore it.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}
