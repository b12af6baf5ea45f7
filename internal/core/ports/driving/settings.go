package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetPreset switches to a preset, discarding per-key RAG overrides.
	SetPreset(preset domain.Preset) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.EmbeddingProvider, model, baseURL string) error

	// SetValue parses and stores a single dotted key such as "rag.min_similarity".
	SetValue(key, raw string) error

	// Keys returns every key accepted by SetValue.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
