package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/opendeck/opendeck-api/internal/api/shared"
	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/events"
	"github.com/opendeck/opendeck-api/internal/storage"
	"github.com/opendeck/opendeck-api/internal/store"
	"github.com/opendeck/opendeck-api/internal/task"
)

// maxUploadBytes bounds the accepted document size.
const maxUploadBytes = 50 << 20

// FormatChecker reports whether a document filename has a supported
// extraction format.
type FormatChecker interface {
	IsSupported(path string) bool
}

// DocumentHandler handles document-related HTTP requests: upload, status
// polling, and starting background processing.
type DocumentHandler struct {
	documents   store.DocumentStore
	collections store.CollectionStore
	files       storage.FileStore
	formats     FormatChecker
	emitter     events.EventEmitter
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(
	documents store.DocumentStore,
	collections store.CollectionStore,
	files storage.FileStore,
	formats FormatChecker,
	emitter events.EventEmitter,
) *DocumentHandler {
	return &DocumentHandler{
		documents:   documents,
		collections: collections,
		files:       files,
		formats:     formats,
		emitter:     emitter,
	}
}

// UploadDocument handles POST /api/documents requests. It accepts a
// multipart form with a "file" part and an "owner_id" field, stores the
// file bytes, and creates a document in the uploaded state.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	ownerID, err := uuid.Parse(r.FormValue("owner_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid owner_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A file part is required")
		return
	}
	defer func() { _ = file.Close() }()

	if !h.formats.IsSupported(header.Filename) {
		shared.RespondWithError(w, r, http.StatusUnsupportedMediaType,
			"Unsupported document format")
		return
	}

	path, err := h.files.Save(r.Context(), ownerID, header.Filename, file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	doc, err := domain.NewDocument(ownerID, header.Filename, path)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid document")
		return
	}

	if err := h.documents.Create(r.Context(), doc); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, documentToResponse(doc))
}

// GetDocument handles GET /api/documents/{id} requests. The caller polls
// this endpoint to observe the document's progress through the processing
// state machine, including the error message on failure.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid document ID")
		return
	}

	ownerID, err := uuid.Parse(r.URL.Query().Get("owner_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid owner_id")
		return
	}

	doc, err := h.documents.GetByID(r.Context(), docID, ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, documentToResponse(doc))
}

// ProcessDocuments handles POST /api/process requests. It verifies the
// target collection and emits a task request event; actual processing
// happens asynchronously in the task runner.
func (h *DocumentHandler) ProcessDocuments(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	collectionID := uuid.MustParse(req.CollectionID)
	ownerID := uuid.MustParse(req.OwnerID)
	documentIDs := make([]uuid.UUID, len(req.DocumentIDs))
	for i, raw := range req.DocumentIDs {
		documentIDs[i] = uuid.MustParse(raw)
	}

	// The collection must exist and belong to the caller before any work
	// is queued; a missing collection is a systemic error, not a
	// per-document one.
	if _, err := h.collections.GetByID(r.Context(), collectionID, ownerID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeDocumentProcessing, struct {
		CollectionID uuid.UUID   `json:"collection_id"`
		DocumentIDs  []uuid.UUID `json:"document_ids"`
		OwnerID      uuid.UUID   `json:"owner_id"`
	}{
		CollectionID: collectionID,
		DocumentIDs:  documentIDs,
		OwnerID:      ownerID,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to create processing request", err)
		return
	}

	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		if errors.Is(err, task.ErrQueueFull) {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
				"Processing queue is full, try again later", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to enqueue processing", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, ProcessResponse{
		TaskID:        event.ID.String(),
		DocumentCount: len(documentIDs),
		Status:        "accepted",
	})
}
