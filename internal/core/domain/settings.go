package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Config holds the chunking, ranking and recency parameters for a session.
// Treat it as an immutable value: services copy it at construction.
type Config struct {
	// MaxChunkSize is the maximum chunk length in characters.
	MaxChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks.
	ChunkOverlap int

	// MinSimilarity is the default search threshold in [0, 1].
	MinSimilarity float64

	// MaxResults caps every search regardless of the query limit.
	MaxResults int

	// EnabledSources restricts retrieval to these kinds. Nil means all.
	EnabledSources []SourceKind

	// RecencyBoost is the maximum score bonus for new documents. Zero disables it.
	RecencyBoost float64

	// RecencyWindow is the age at which the recency bonus reaches zero.
	RecencyWindow time.Duration

	// EmbeddingTimeout bounds each embedding call. Zero means no timeout.
	EmbeddingTimeout time.Duration

	// EmbedConcurrency bounds concurrent embedding calls during indexing.
	EmbedConcurrency int
}

// Default configuration values.
const (
	DefaultMaxChunkSize     = 512
	DefaultChunkOverlap     = 64
	DefaultMinSimilarity    = 0.3
	DefaultMaxResults       = 20
	DefaultRecencyBoost     = 0.1
	DefaultRecencyWindow    = 24 * time.Hour
	DefaultEmbeddingTimeout = 30 * time.Second
	DefaultEmbedConcurrency = 4
)

// DefaultConfig returns the balanced preset.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:     DefaultMaxChunkSize,
		ChunkOverlap:     DefaultChunkOverlap,
		MinSimilarity:    DefaultMinSimilarity,
		MaxResults:       DefaultMaxResults,
		RecencyBoost:     DefaultRecencyBoost,
		RecencyWindow:    DefaultRecencyWindow,
		EmbeddingTimeout: DefaultEmbeddingTimeout,
		EmbedConcurrency: DefaultEmbedConcurrency,
	}
}

// AggressiveConfig favours recall: lower threshold, more results, stronger recency.
func AggressiveConfig() Config {
	c := DefaultConfig()
	c.MinSimilarity = 0.2
	c.MaxResults = 30
	c.RecencyBoost = 0.2
	return c
}

// ConservativeConfig favours precision: higher threshold, fewer results, weaker recency.
func ConservativeConfig() Config {
	c := DefaultConfig()
	c.MinSimilarity = 0.5
	c.MaxResults = 10
	c.RecencyBoost = 0.05
	return c
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.MaxChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.MaxChunkSize {
		return fmt.Errorf("%w: need max chunk size > overlap >= 0, got %d and %d",
			ErrInvalidConfiguration, c.MaxChunkSize, c.ChunkOverlap)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("%w: min similarity %.2f outside [0,1]", ErrInvalidConfiguration, c.MinSimilarity)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("%w: max results %d is negative", ErrInvalidConfiguration, c.MaxResults)
	}
	if c.RecencyBoost < 0 || c.RecencyWindow < 0 {
		return fmt.Errorf("%w: recency boost and window must be non-negative", ErrInvalidConfiguration)
	}
	if c.EmbeddingTimeout < 0 || c.EmbedConcurrency < 0 {
		return fmt.Errorf("%w: embedding timeout and concurrency must be non-negative", ErrInvalidConfiguration)
	}
	for _, k := range c.EnabledSources {
		if !k.IsValid() {
			return fmt.Errorf("%w: unknown source kind %q", ErrInvalidConfiguration, k)
		}
	}
	return nil
}

// Preset names a built-in configuration.
type Preset string

// Available presets.
const (
	PresetDefault      Preset = "default"
	PresetAggressive   Preset = "aggressive"
	PresetConservative Preset = "conservative"
)

// IsValid returns true if the preset is recognised.
func (p Preset) IsValid() bool {
	switch p {
	case PresetDefault, PresetAggressive, PresetConservative:
		return true
	default:
		return false
	}
}

// Config returns the configuration for the preset. Unknown presets yield DefaultConfig.
func (p Preset) Config() Config {
	switch p {
	case PresetAggressive:
		return AggressiveConfig()
	case PresetConservative:
		return ConservativeConfig()
	default:
		return DefaultConfig()
	}
}

// String returns the string representation.
func (p Preset) String() string {
	return string(p)
}

// Description returns a human-readable description of the preset.
func (p Preset) Description() string {
	switch p {
	case PresetDefault:
		return "Default (balanced threshold and recency)"
	case PresetAggressive:
		return "Aggressive (more results, stronger recency)"
	case PresetConservative:
		return "Conservative (fewer, more similar results)"
	default:
		return unknownDescription
	}
}

// AllPresets returns all available presets.
func AllPresets() []Preset {
	return []Preset{PresetDefault, PresetAggressive, PresetConservative}
}

// EmbeddingProvider identifies the embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderHashing is the offline feature-hashing embedder.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	return p == EmbeddingProviderHashing || p == EmbeddingProviderOllama
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderHashing:
		return "Hashing (offline, no model)"
	case EmbeddingProviderOllama:
		return "Ollama (local model server)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider EmbeddingProvider

	// Model is the embedding model name (Ollama only).
	Model string

	// BaseURL is the API endpoint (Ollama only).
	BaseURL string

	// Dimensions is the vector size produced by the provider.
	Dimensions int

	// CacheSize is the number of query embeddings kept in memory. Zero disables caching.
	CacheSize int

	// RateLimit caps embedding calls per second. Zero disables limiting.
	RateLimit float64
}

// StorageBackend identifies the document store implementation.
type StorageBackend string

// Available storage backends.
const (
	StorageSQLite StorageBackend = "sqlite"
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// StorageSettings holds document store configuration.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StorageBackend

	// DataDir is where the SQLite database lives. Empty uses the default.
	DataDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Preset is the preset the RAG config was derived from.
	Preset Preset

	// RAG holds chunking and ranking parameters.
	RAG Config

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Storage holds document store settings.
	Storage StorageSettings
}

// Default embedding values.
const (
	DefaultHashingDimensions = 256
	DefaultEmbeddingCache    = 256
)

// DefaultAppSettings returns settings that work offline out of the box.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Preset: PresetDefault,
		RAG:    DefaultConfig(),
		Embedding: EmbeddingSettings{
			Provider:   EmbeddingProviderHashing,
			Dimensions: DefaultHashingDimensions,
			CacheSize:  DefaultEmbeddingCache,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}
