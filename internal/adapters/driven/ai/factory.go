// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/cached"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/throttled"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and pings it.
// Failures carry a hint pointing at the settings command.
func CreateAndValidateEmbeddingService(
	ctx context.Context,
	settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'sercha-rag settings provider' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'sercha-rag settings provider' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the provider adapter for settings and wraps
// it with rate limiting and caching when those are configured. Cache hits
// are not rate limited.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrInvalidConfiguration)
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.EmbeddingProviderHashing:
		svc = hashing.NewEmbeddingService(settings.Dimensions)

	case domain.EmbeddingProviderOllama:
		svc = createOllamaEmbedding(settings)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s",
			domain.ErrInvalidConfiguration, settings.Provider)
	}

	if settings.RateLimit > 0 {
		svc = throttled.NewEmbeddingService(svc, settings.RateLimit)
	}

	if settings.CacheSize > 0 {
		c, err := cached.NewEmbeddingService(svc, settings.CacheSize)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		svc = c
	}

	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = ollamaembed.ModelDimensions(settings.Model)
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
