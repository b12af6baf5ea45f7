// Package ollama embeds text with a model served by a local Ollama instance.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 30 * time.Second
)

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 512

// Known model dimensions, keyed by model name without tag.
var modelDimensions = map[string]int{
	"nomic-embed-text":       768,
	"all-minilm":             384,
	"mxbai-embed-large":      1024,
	"snowflake-arctic-embed": 1024,
	"bge-m3":                 1024,
}

// Config holds configuration for the Ollama embedding service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions overrides the size looked up from the model name.
	Dimensions int
}

// EmbeddingService calls the Ollama /api/embed endpoint.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

type embedRequest struct {
	Model    string `json:"model"`
	Input    string `json:"input"`
	Truncate bool   `json:"truncate"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = ModelDimensions(cfg.Model)
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// ModelDimensions returns the known vector size for a model, or the
// nomic-embed-text size when the model is not recognised.
func ModelDimensions(model string) int {
	if d, ok := modelDimensions[baseName(model)]; ok {
		return d
	}
	return modelDimensions[DefaultModel]
}

// Embed returns the embedding of text. Inputs longer than the model context
// are truncated by the server.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	err := s.call(ctx, http.MethodPost, "/api/embed", embedRequest{
		Model:    s.model,
		Input:    text,
		Truncate: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: ollama returned no embedding for %s", domain.ErrEmbeddingUnavailable, s.model)
	}
	return resp.Embeddings[0], nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks that the server answers and that the model has been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	var tags tagsResponse
	if err := s.call(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return err
	}

	for _, m := range tags.Models {
		if m.Name == s.model || baseName(m.Name) == s.model {
			return nil
		}
	}
	return fmt.Errorf("%w: model %s is not installed (run 'ollama pull %s')",
		domain.ErrEmbeddingUnavailable, s.model, s.model)
}

// Close releases idle connections.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// call sends a JSON request and decodes the JSON response into out.
// Transport and server failures wrap domain.ErrEmbeddingUnavailable;
// context errors are returned unchanged.
func (s *EmbeddingService) call(ctx context.Context, method, path string, in, out any) error {
	body := io.Reader(http.NoBody)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: ollama %s: %w", domain.ErrEmbeddingUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: ollama %s returned status %d: %s",
			domain.ErrEmbeddingUnavailable, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding ollama %s response: %w", domain.ErrEmbeddingUnavailable, path, err)
	}
	return nil
}

// baseName strips the tag from a model name: "all-minilm:l6-v2" is "all-minilm".
func baseName(model string) string {
	name, _, _ := strings.Cut(model, ":")
	return name
}
