package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/opendeck/opendeck-api/internal/config"
	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/opendeck/opendeck-api/internal/generation"
)

// Provider implements generation.Provider against a local Ollama server.
type Provider struct {
	logger  *slog.Logger
	client  *api.Client
	model   string
	chunker generation.Chunker
	retry   generation.RetryPolicy

	// generate makes one generation request. It defaults to
	// generateSingle and is replaced in tests to drive the chunking
	// loop without a server.
	generate func(ctx context.Context, text, documentName string,
		units []extraction.Unit, maxCards int) ([]domain.FlashcardData, error)
}

// NewProvider creates an Ollama-backed provider talking to the server at
// cfg.OllamaHost.
func NewProvider(logger *slog.Logger, cfg config.LLMConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OllamaModel == "" {
		return nil, fmt.Errorf("%w: ollama model name cannot be empty", generation.ErrInvalidConfig)
	}
	host := cfg.OllamaHost
	if host == "" {
		host = "http://localhost:11434"
	}
	baseURL, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama host %q: %v",
			generation.ErrInvalidConfig, host, err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	p := &Provider{
		logger:  logger.With(slog.String("provider", "ollama")),
		client:  api.NewClient(baseURL, httpClient),
		model:   cfg.OllamaModel,
		chunker: generation.Chunker{ContextWindowTokens: cfg.ContextWindowTokens},
		retry:   generation.DefaultRetryPolicy(),
	}
	p.generate = p.generateSingle
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "ollama" }

// GenerateFlashcards generates cards from the document text. Documents
// that exceed the model's context window are split into unit-aligned
// chunks, each generating its share of the card budget. A failing chunk
// is skipped so the rest of the document still produces cards.
func (p *Provider) GenerateFlashcards(
	ctx context.Context,
	documentText string,
	documentName string,
	units []extraction.Unit,
	maxCards int,
) ([]domain.FlashcardData, error) {
	if !p.chunker.NeedsChunking(documentText) {
		return p.generate(ctx, documentText, documentName, units, maxCards)
	}

	chunks := p.chunker.Split(units)
	perChunk := generation.CardsPerChunk(maxCards, len(chunks))

	p.logger.InfoContext(ctx, "document exceeds context window, chunking",
		slog.String("document", documentName),
		slog.Int("chunks", len(chunks)),
		slog.Int("cards_per_chunk", perChunk))

	var all []domain.FlashcardData
	for i, chunk := range chunks {
		cards, err := p.generate(ctx, chunk.Text, documentName, chunk.Units, perChunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			p.logger.WarnContext(ctx, "chunk generation failed, continuing",
				slog.Int("chunk", i+1),
				slog.Int("total_chunks", len(chunks)),
				slog.String("error", err.Error()))
			continue
		}

		all = append(all, cards...)
		if len(all) >= maxCards {
			break
		}
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("%w: all %d chunks failed", generation.ErrGenerationFailed, len(chunks))
	}
	if len(all) > maxCards {
		all = all[:maxCards]
	}

	return all, nil
}

// generateSingle makes one generation request with retry and parses the
// response.
func (p *Provider) generateSingle(
	ctx context.Context,
	text string,
	documentName string,
	units []extraction.Unit,
	maxCards int,
) ([]domain.FlashcardData, error) {
	instructions := generation.BuildInstructions(documentName, maxCards)
	content := generation.BuildContent(text, units)

	stream := false
	req := &api.GenerateRequest{
		Model:  p.model,
		System: instructions,
		Prompt: content,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
		Options: map[string]any{
			"temperature": 0.7,
			"num_predict": 4000,
		},
	}

	var responseText string
	err := p.retry.Execute(ctx, p.logger, func(ctx context.Context) error {
		var sb strings.Builder
		err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
			sb.WriteString(resp.Response)
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		if sb.Len() == 0 {
			return fmt.Errorf("%w: empty response from ollama", generation.ErrInvalidResponse)
		}
		responseText = sb.String()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return generation.ParseFlashcardResponse(ctx, responseText, documentName)
}

// HealthCheck verifies the server is reachable and the configured model
// is available.
func (p *Provider) HealthCheck(ctx context.Context) error {
	resp, err := p.client.List(ctx)
	if err != nil {
		return fmt.Errorf("ollama server unreachable: %w", err)
	}

	for _, m := range resp.Models {
		if m.Name == p.model || strings.HasPrefix(m.Name, p.model+":") {
			return nil
		}
	}
	return fmt.Errorf("ollama model %q not available", p.model)
}

var _ generation.Provider = (*Provider)(nil)
