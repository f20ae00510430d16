// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/jkkn-ai/assist/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/jkkn-ai/assist/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/jkkn-ai/assist/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/jkkn-ai/assist/internal/adapters/driven/llm/ollama"
	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Prompts is the optional prompt store handed to composer adapters.
// Set it once during application wiring, before any composer is built.
var Prompts driven.PromptStore

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(*settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'assist settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'assist settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateComposer creates an answer composer and validates connectivity.
// Returns the composer if successful, or an error with guidance.
func CreateAndValidateComposer(settings *domain.ComposerSettings) (driven.AnswerComposer, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateComposer(*settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'assist settings wizard' to fix",
			domain.ErrComposerUnavailable, err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'assist settings wizard' to fix",
			domain.ErrComposerUnavailable, err)
	}

	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// It satisfies services.EmbedderFactory.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateComposer creates the appropriate answer composer based on settings.
// It satisfies services.ComposerFactory.
func CreateComposer(settings domain.ComposerSettings) (driven.AnswerComposer, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaComposer(settings), nil

	case domain.AIProviderAnthropic:
		return createAnthropicComposer(settings)

	case domain.AIProviderOpenAI:
		return nil, fmt.Errorf("openai answer composition is not supported, use ollama or anthropic")

	default:
		return nil, fmt.Errorf("unsupported composer provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOllamaComposer creates an Ollama answer composer.
func createOllamaComposer(settings domain.ComposerSettings) driven.AnswerComposer {
	return ollamallm.NewComposer(ollamallm.Config{
		BaseURL:   settings.BaseURL,
		Model:     settings.Model,
		MaxTokens: settings.MaxTokens,
		Timeout:   settings.Timeout,
		Prompts:   Prompts,
	})
}

// createAnthropicComposer creates an Anthropic answer composer.
func createAnthropicComposer(settings domain.ComposerSettings) (driven.AnswerComposer, error) {
	return anthropicllm.NewComposer(anthropicllm.Config{
		APIKey:    settings.APIKey,
		BaseURL:   settings.BaseURL,
		Model:     settings.Model,
		MaxTokens: settings.MaxTokens,
		Timeout:   settings.Timeout,
		Prompts:   Prompts,
	})
}
