package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/opendeck/opendeck-api/internal/config"
	"github.com/opendeck/opendeck-api/internal/domain"
	"github.com/opendeck/opendeck-api/internal/extraction"
	"github.com/opendeck/opendeck-api/internal/generation"
)

// Provider implements generation.Provider using the OpenAI chat
// completion API.
type Provider struct {
	logger *slog.Logger
	client *openai.Client
	model  string
	retry  generation.RetryPolicy
}

// NewProvider creates an OpenAI-backed provider. The API key is required;
// a base URL override switches the client to a compatible endpoint.
func NewProvider(logger *slog.Logger, cfg config.LLMConfig) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.OpenAIModel == "" {
		return nil, fmt.Errorf("%w: openai model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}

	return &Provider{
		logger: logger.With(slog.String("provider", "openai")),
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.OpenAIModel,
		retry:  generation.DefaultRetryPolicy(),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "openai" }

// GenerateFlashcards generates cards from the document text in a single
// chat completion request with JSON response format enforced.
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
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: instructions},
				{Role: openai.ChatMessageRoleUser, Content: content},
			},
			Temperature: 0.7,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return fmt.Errorf("%w: empty completion", generation.ErrInvalidResponse)
		}
		responseText = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "openai generation failed",
			slog.String("document", documentName),
			slog.String("error", err.Error()))
		return nil, err
	}

	cards, err := generation.ParseFlashcardResponse(ctx, responseText, documentName)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "openai generation succeeded",
		slog.String("document", documentName),
		slog.Int("cards", len(cards)))

	return cards, nil
}

// HealthCheck lists models to verify the key and endpoint are usable.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}

var _ generation.Provider = (*Provider)(nil)
