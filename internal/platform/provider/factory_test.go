package provider

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/opendeck/opendeck-api/internal/config"
	"github.com/opendeck/opendeck-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := config.LLMConfig{Provider: "anthropic"}

	p, err := New(context.Background(), testLogger(), cfg)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, generation.ErrUnknownProvider)
}

func TestNewOpenAIMissingKey(t *testing.T) {
	cfg := config.LLMConfig{Provider: "openai", OpenAIModel: "gpt-4o-mini"}

	p, err := New(context.Background(), testLogger(), cfg)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestNewOllama(t *testing.T) {
	cfg := config.LLMConfig{
		Provider:            "ollama",
		OllamaHost:          "http://localhost:11434",
		OllamaModel:         "llama3.1",
		ContextWindowTokens: 8192,
		RequestTimeout:      time.Minute,
	}

	p, err := New(context.Background(), testLogger(), cfg)

	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
}

func TestNewOllamaMissingModel(t *testing.T) {
	cfg := config.LLMConfig{Provider: "ollama"}

	p, err := New(context.Background(), testLogger(), cfg)

	assert.Nil(t, p)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
