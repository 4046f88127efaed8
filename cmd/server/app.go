package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/opendeck/opendeck-api/internal/config"
	"github.com/opendeck/opendeck-api/internal/events"
	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/opendeck/opendeck-api/internal/generation"
	"github.com/opendeck/opendeck-api/internal/platform/postgres"
	"github.com/opendeck/opendeck-api/internal/platform/provider"
	"github.com/opendeck/opendeck-api/internal/service"
	"github.com/opendeck/opendeck-api/internal/storage"
	"github.com/opendeck/opendeck-api/internal/store"
	"github.com/opendeck/opendeck-api/internal/task"
)

// application holds the wired dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	documentStore   store.DocumentStore
	cardStore       store.CardStore
	collectionStore store.CollectionStore
	taskStore       task.TaskStore

	fileStore storage.FileStore
	extractor *extraction.Extractor
	provider  generation.Provider
	processor *service.DocumentProcessor

	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates an application instance with all dependencies
// initialized. Configuration, logging, and the database connection must
// be established by the caller.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.documentStore = postgres.NewPostgresDocumentStore(db)
	app.cardStore = postgres.NewPostgresCardStore(db)
	app.collectionStore = postgres.NewPostgresCollectionStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	var err error
	app.fileStore, err = storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	logger.Info("file storage initialized", "backend", cfg.Storage.Backend)

	app.provider, err = provider.New(ctx, logger.With("component", "generation_provider"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation provider: %w", err)
	}
	logger.Info("generation provider initialized", "provider", app.provider.Name())

	app.extractor = extraction.NewExtractor()

	app.processor = service.NewDocumentProcessor(
		&store.DBTxRunner{DB: db},
		app.documentStore,
		app.cardStore,
		app.collectionStore,
		app.fileStore,
		app.extractor,
		app.provider,
		cfg.LLM.MaxCardsPerDocument,
		logger.With("component", "document_processor"),
	)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:   cfg.Task.WorkerCount,
		QueueSize:     cfg.Task.QueueSize,
		MaxRetries:    cfg.Task.MaxRetries,
		RetryBackoff:  cfg.Task.RetryBackoff,
		SoftTimeLimit: cfg.Task.SoftTimeLimit,
		HardTimeLimit: cfg.Task.HardTimeLimit,
		StuckTaskAge:  cfg.Task.StuckTaskAge,
	}, logger.With("component", "task_runner"))

	taskFactory := task.NewDocumentProcessingTaskFactory(app.processor, logger)
	app.taskRunner.SetRehydrator(taskFactory)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger))
	app.eventEmitter = emitter

	logger.Info("application initialized")
	return app, nil
}

// Run starts the task runner and the HTTP server, then blocks until the
// context is cancelled and shutdown completes.
func (app *application) Run(ctx context.Context) error {
	// Recovers persisted tasks from earlier runs before accepting traffic.
	if err := app.taskRunner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	defer app.taskRunner.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
