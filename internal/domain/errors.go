package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidDocumentStatus is returned when a document status is not valid.
	ErrInvalidDocumentStatus = errors.New("invalid document status")

	// ErrMissingSource is returned when a flashcard has no source attribution.
	// Source attribution is mandatory: every card must name the document it
	// was generated from so users can verify the information.
	ErrMissingSource = errors.New("source attribution is required")
)
