package api

import (
	"errors"
	"net/http"

	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/opendeck/opendeck-api/internal/storage"
	"github.com/opendeck/opendeck-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrDocumentNotFound),
		errors.Is(err, store.ErrCollectionNotFound),
		errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, storage.ErrFileNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, storage.ErrInvalidPath):
		return http.StatusBadRequest

	case errors.Is(err, extraction.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, store.ErrDocumentNotFound):
		return "Document not found"

	case errors.Is(err, store.ErrCollectionNotFound):
		return "Collection not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, storage.ErrFileNotFound):
		return "File not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Entity already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, storage.ErrInvalidPath):
		return "Invalid file name"

	case errors.Is(err, extraction.ErrUnsupportedFormat):
		return "Unsupported document format"

	default:
		return "An unexpected error occurred"
	}
}
