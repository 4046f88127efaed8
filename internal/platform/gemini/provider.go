package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/opendeck/opendeck-api/internal/config"
	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/opendeck/opendeck-api/internal/generation"
)

// Provider implements generation.Provider using Google's Gemini API.
type Provider struct {
	logger *slog.Logger
	client *genai.Client
	model  string
	retry  generation.RetryPolicy
}

// NewProvider creates a Gemini-backed provider. Configuration is
// validated up front so a missing API key fails at startup rather than
// on the first generation request.
func NewProvider(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.GeminiModel == "" {
		return nil, fmt.Errorf("%w: gemini model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Provider{
		logger: logger.With(slog.String("provider", "gemini")),
		client: client,
		model:  cfg.GeminiModel,
		retry:  generation.DefaultRetryPolicy(),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "gemini" }

// GenerateFlashcards generates cards from the document text in a single
// request. API failures are retried with backoff; safety blocks and
// malformed responses are not.
func (p *Provider) GenerateFlashcards(
	ctx context.Context,
	documentText string,
	documentName string,
	units []extraction.Unit,
	maxCards int,
) ([]domain.FlashcardData, error) {
	instructions := generation.BuildInstructions(documentName, maxCards)
	content := generation.BuildContent(documentText, units)

	var responseText string
	err := p.retry.Execute(ctx, p.logger, func(ctx context.Context) error {
		text, err := p.generateOnce(ctx, instructions, content)
		if err != nil {
			return err
		}
		responseText = text
		return nil
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "gemini generation failed",
			slog.String("document", documentName),
			slog.String("error", err.Error()))
		return nil, err
	}

	cards, err := generation.ParseFlashcardResponse(ctx, responseText, documentName)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "gemini generation succeeded",
		slog.String("document", documentName),
		slog.Int("cards", len(cards)))

	return cards, nil
}

// generateOnce makes a single Gemini API call and extracts the response
// text. API transport errors are classified transient; empty or
// safety-blocked responses are permanent.
func (p *Provider) generateOnce(ctx context.Context, instructions, content string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(content),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr[float32](0.7),
		})
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text parts in response", generation.ErrInvalidResponse)
	}

	return text, nil
}

// HealthCheck issues a minimal generation request to confirm the API key
// and model are usable.
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text("Reply with OK."), nil)
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

var _ generation.Provider = (*Provider)(nil)
