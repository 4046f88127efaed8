package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opendeck/opendeck-api/internal/api"
	apimiddleware "github.com/opendeck/opendeck-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	documentHandler := api.NewDocumentHandler(
		app.documentStore,
		app.collectionStore,
		app.fileStore,
		app.extractor,
		app.eventEmitter,
	)
	healthHandler := api.NewHealthHandler(app.db, app.provider)

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents", documentHandler.UploadDocument)
		r.Get("/documents/{id}", documentHandler.GetDocument)
		r.Post("/process", documentHandler.ProcessDocuments)
	})

	r.Get("/healthz", healthHandler.Health)

	return r
}
