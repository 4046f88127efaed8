package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opendeck/opendeck-api/internal/config"
)

// New creates the file store named by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (FileStore, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(cfg.BasePath, logger)
	case "minio":
		return NewMinioStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
