// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations include:
//   - Hashing: deterministic feature hashing, fully offline
//   - Ollama: nomic-embed-text, all-minilm and friends on localhost
//
// Decorators add caching and rate limiting without changing the contract.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// It must honour ctx cancellation and deadlines.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 256, 384, 768).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
