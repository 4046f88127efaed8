// Package provider instantiates the configured card generation backend.
// It lives outside package generation so the backends can depend on the
// shared generation logic without an import cycle.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opendeck/opendeck-api/internal/config"
	"github.com/opendeck/opendeck-api/internal/generation"
	"github.com/opendeck/opendeck-api/internal/platform/gemini"
	"github.com/opendeck/opendeck-api/internal/platform/ollama"
	"github.com/opendeck/opendeck-api/internal/platform/openai"
)

// New creates the generation provider named by cfg.Provider. Switching
// backends is a configuration change only; no call site knows which
// backend it is talking to.
func New(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (generation.Provider, error) {
	logger.InfoContext(ctx, "initializing generation provider",
		slog.String("provider", cfg.Provider))

	switch cfg.Provider {
	case "gemini":
		return gemini.NewProvider(ctx, logger, cfg)
	case "openai":
		return openai.NewProvider(logger, cfg)
	case "ollama":
		return ollama.NewProvider(logger, cfg)
	default:
		return nil, fmt.Errorf("%w: %q (supported: gemini, openai, ollama)",
			generation.ErrUnknownProvider, cfg.Provider)
	}
}
