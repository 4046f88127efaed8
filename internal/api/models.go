package api

import (
	"time"

	"github.com/opendeck/opendeck-api/internal/domain"
)

// DocumentResponse represents the response data for a document.
type DocumentResponse struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Filename     string     `json:"filename"`
	Status       string     `json:"status"`
	CollectionID string     `json:"collection_id,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// documentToResponse converts a domain.Document to a DocumentResponse.
func documentToResponse(doc *domain.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:           doc.ID.String(),
		OwnerID:      doc.OwnerID.String(),
		Filename:     doc.Filename,
		Status:       string(doc.Status),
		ProcessedAt:  doc.ProcessedAt,
		ErrorMessage: doc.ErrorMessage,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
	if doc.CollectionID != nil {
		resp.CollectionID = doc.CollectionID.String()
	}
	return resp
}

// ProcessRequest represents the request body for starting document
// processing.
type ProcessRequest struct {
	CollectionID string   `json:"collection_id" validate:"required,uuid"`
	DocumentIDs  []string `json:"document_ids"  validate:"required,min=1,dive,uuid"`
	OwnerID      string   `json:"owner_id"      validate:"required,uuid"`
}

// ProcessResponse represents the response for an accepted processing
// request. Processing happens asynchronously; the caller polls document
// status to observe progress.
type ProcessResponse struct {
	TaskID        string `json:"task_id"`
	DocumentCount int    `json:"document_count"`
	Status        string `json:"status"`
}

// HealthResponse represents the response for a health check.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Provider string `json:"provider"`
}
