package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the processing state of an uploaded document.
type DocumentStatus string

// Possible document status values. Transitions are monotonic per processing
// attempt: uploaded → processing → {completed | failed}.
const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Common validation errors for Document
var (
	ErrEmptyDocumentID       = errors.New("document ID cannot be empty")
	ErrEmptyDocumentOwnerID  = errors.New("document owner ID cannot be empty")
	ErrEmptyDocumentFilename = errors.New("document filename cannot be empty")
	ErrEmptyStoragePath      = errors.New("document storage path cannot be empty")
)

// Document represents an uploaded file tracked through the flashcard
// generation pipeline. Status is mutated only by the document processor;
// completed and failed are terminal for a given attempt.
type Document struct {
	ID           uuid.UUID      `json:"id"`
	OwnerID      uuid.UUID      `json:"owner_id"`
	Filename     string         `json:"filename"`
	StoragePath  string         `json:"storage_path"`
	Status       DocumentStatus `json:"status"`
	CollectionID *uuid.UUID     `json:"collection_id,omitempty"`
	ProcessedAt  *time.Time     `json:"processed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewDocument creates a new Document in the uploaded state.
// It generates a new UUID for the document ID and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewDocument(ownerID uuid.UUID, filename, storagePath string) (*Document, error) {
	doc := &Document{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Filename:    filename,
		StoragePath: storagePath,
		Status:      DocumentStatusUploaded,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks if the Document has valid data.
// Returns an error if any field fails validation.
func (d *Document) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDocumentID
	}

	if d.OwnerID == uuid.Nil {
		return ErrEmptyDocumentOwnerID
	}

	if d.Filename == "" {
		return ErrEmptyDocumentFilename
	}

	if d.StoragePath == "" {
		return ErrEmptyStoragePath
	}

	if !isValidDocumentStatus(d.Status) {
		return ErrInvalidDocumentStatus
	}

	return nil
}

// MarkProcessing transitions the document into the processing state.
func (d *Document) MarkProcessing() {
	d.Status = DocumentStatusProcessing
	d.UpdatedAt = time.Now().UTC()
}

// MarkCompleted transitions the document into the completed state,
// recording the target collection and the processing timestamp.
func (d *Document) MarkCompleted(collectionID uuid.UUID) {
	now := time.Now().UTC()
	d.Status = DocumentStatusCompleted
	d.CollectionID = &collectionID
	d.ProcessedAt = &now
	d.ErrorMessage = ""
	d.UpdatedAt = now
}

// MarkFailed transitions the document into the failed state with a
// human-readable error message retrievable via status polling.
func (d *Document) MarkFailed(errorMessage string) {
	d.Status = DocumentStatusFailed
	d.ErrorMessage = errorMessage
	d.UpdatedAt = time.Now().UTC()
}

// IsTerminal reports whether the document finished a processing attempt.
func (d *Document) IsTerminal() bool {
	return d.Status == DocumentStatusCompleted || d.Status == DocumentStatusFailed
}

// isValidDocumentStatus checks if the given status is a valid DocumentStatus.
func isValidDocumentStatus(status DocumentStatus) bool {
	switch status {
	case DocumentStatusUploaded, DocumentStatusProcessing,
		DocumentStatusCompleted, DocumentStatusFailed:
		return true
	default:
		return false
	}
}
