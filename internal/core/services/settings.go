package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyPreset           = "rag.preset"
	keyMaxChunkSize     = "rag.max_chunk_size"
	keyChunkOverlap     = "rag.chunk_overlap"
	keyMinSimilarity    = "rag.min_similarity"
	keyMaxResults       = "rag.max_results"
	keyEnabledSources   = "rag.enabled_sources"
	keyRecencyBoost     = "rag.recency_boost"
	keyRecencyWindow    = "rag.recency_window"
	keyEmbeddingTimeout = "rag.embedding_timeout"
	keyEmbedConcurrency = "rag.embed_concurrency"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedCacheSize   = "embedding.cache_size"
	keyEmbedRateLimit   = "embedding.rate_limit"
	keyStorageBackend   = "storage.backend"
	keyStorageDataDir   = "storage.data_dir"
)

// ragOverrideKeys are cleared when a preset is selected.
var ragOverrideKeys = []string{
	keyMaxChunkSize,
	keyChunkOverlap,
	keyMinSimilarity,
	keyMaxResults,
	keyRecencyBoost,
	keyRecencyWindow,
	keyEmbeddingTimeout,
	keyEmbedConcurrency,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// The RAG config starts from the stored preset; individual keys override it.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	preset := domain.Preset(s.getString(keyPreset, defaults.Preset.String()))
	if !preset.IsValid() {
		return nil, fmt.Errorf("%w: unknown preset %q", domain.ErrInvalidConfiguration, preset)
	}
	rag := preset.Config()

	rag.MaxChunkSize = s.getInt(keyMaxChunkSize, rag.MaxChunkSize)
	rag.ChunkOverlap = s.getInt(keyChunkOverlap, rag.ChunkOverlap)
	rag.MinSimilarity = s.getFloat(keyMinSimilarity, rag.MinSimilarity)
	rag.MaxResults = s.getInt(keyMaxResults, rag.MaxResults)
	rag.RecencyBoost = s.getFloat(keyRecencyBoost, rag.RecencyBoost)
	rag.EmbedConcurrency = s.getInt(keyEmbedConcurrency, rag.EmbedConcurrency)

	var err error
	if rag.RecencyWindow, err = s.getDuration(keyRecencyWindow, rag.RecencyWindow); err != nil {
		return nil, err
	}
	if rag.EmbeddingTimeout, err = s.getDuration(keyEmbeddingTimeout, rag.EmbeddingTimeout); err != nil {
		return nil, err
	}
	if names := s.configStore.GetStringSlice(keyEnabledSources); len(names) > 0 {
		if rag.EnabledSources, err = domain.ParseSourceKinds(names); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfiguration, keyEnabledSources, err)
		}
	}

	settings := &domain.AppSettings{
		Preset: preset,
		RAG:    rag,
		Embedding: domain.EmbeddingSettings{
			Provider:   domain.EmbeddingProvider(s.getString(keyEmbedProvider, defaults.Embedding.Provider.String())),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
			CacheSize:  s.getInt(keyEmbedCacheSize, defaults.Embedding.CacheSize),
			RateLimit:  s.configStore.GetFloat(keyEmbedRateLimit),
		},
		Storage: domain.StorageSettings{
			Backend: domain.StorageBackend(s.getString(keyStorageBackend, string(defaults.Storage.Backend))),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
	}
	if settings.Embedding.Provider == domain.EmbeddingProviderHashing && settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = domain.DefaultHashingDimensions
	}

	if err := s.validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.validate(settings); err != nil {
		return err
	}

	sources := make([]string, len(settings.RAG.EnabledSources))
	for i, k := range settings.RAG.EnabledSources {
		sources[i] = k.String()
	}

	values := []struct {
		key   string
		value any
	}{
		{keyPreset, settings.Preset.String()},
		{keyMaxChunkSize, settings.RAG.MaxChunkSize},
		{keyChunkOverlap, settings.RAG.ChunkOverlap},
		{keyMinSimilarity, settings.RAG.MinSimilarity},
		{keyMaxResults, settings.RAG.MaxResults},
		{keyEnabledSources, sources},
		{keyRecencyBoost, settings.RAG.RecencyBoost},
		{keyRecencyWindow, settings.RAG.RecencyWindow.String()},
		{keyEmbeddingTimeout, settings.RAG.EmbeddingTimeout.String()},
		{keyEmbedConcurrency, settings.RAG.EmbedConcurrency},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedCacheSize, settings.Embedding.CacheSize},
		{keyEmbedRateLimit, settings.Embedding.RateLimit},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetPreset switches the RAG config to a preset. Per-key overrides are
// removed so the preset values take effect; enabled sources are kept.
func (s *SettingsService) SetPreset(preset domain.Preset) error {
	if !preset.IsValid() {
		return fmt.Errorf("%w: invalid preset: %s", domain.ErrInvalidInput, preset)
	}

	if err := s.configStore.Set(keyPreset, preset.String()); err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	for _, key := range ragOverrideKeys {
		if err := s.configStore.Delete(key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Changing provider invalidates the stored dimensions, which are cleared
// so the provider default applies.
func (s *SettingsService) SetEmbeddingProvider(provider domain.EmbeddingProvider, model, baseURL string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider == domain.EmbeddingProviderHashing && (model != "" || baseURL != "") {
		return fmt.Errorf("%w: the hashing provider takes no model or base URL", domain.ErrInvalidInput)
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, baseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if err := s.configStore.Delete(keyEmbedDimensions); err != nil {
		return fmt.Errorf("clear embedding dimensions: %w", err)
	}
	return nil
}

// SetValue parses raw according to the type of key and stores it.
// The resulting settings must still validate.
func (s *SettingsService) SetValue(key, raw string) error {
	value, err := parseValue(key, raw)
	if err != nil {
		return err
	}

	previous, existed := s.configStore.Get(key)
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if _, err := s.Get(); err != nil {
		// Put the old value back so a bad write cannot wedge startup.
		if existed {
			_ = s.configStore.Set(key, previous)
		} else {
			_ = s.configStore.Delete(key)
		}
		return err
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	return []string{
		keyPreset,
		keyMaxChunkSize,
		keyChunkOverlap,
		keyMinSimilarity,
		keyMaxResults,
		keyEnabledSources,
		keyRecencyBoost,
		keyRecencyWindow,
		keyEmbeddingTimeout,
		keyEmbedConcurrency,
		keyEmbedProvider,
		keyEmbedModel,
		keyEmbedBaseURL,
		keyEmbedDimensions,
		keyEmbedCacheSize,
		keyEmbedRateLimit,
		keyStorageBackend,
		keyStorageDataDir,
	}
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// validate checks the parts of AppSettings the domain types do not.
func (s *SettingsService) validate(settings *domain.AppSettings) error {
	if !settings.Preset.IsValid() {
		return fmt.Errorf("%w: unknown preset %q", domain.ErrInvalidConfiguration, settings.Preset)
	}
	if err := settings.RAG.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrInvalidConfiguration, settings.Embedding.Provider)
	}
	if settings.Embedding.Dimensions < 0 || settings.Embedding.CacheSize < 0 || settings.Embedding.RateLimit < 0 {
		return fmt.Errorf("%w: embedding dimensions, cache size and rate limit must be non-negative",
			domain.ErrInvalidConfiguration)
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q",
			domain.ErrInvalidConfiguration, settings.Storage.Backend)
	}
	return nil
}

// parseValue converts a command-line string into the stored type for key.
func parseValue(key, raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	switch key {
	case keyPreset, keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyStorageBackend, keyStorageDataDir:
		return raw, nil

	case keyMaxChunkSize, keyChunkOverlap, keyMaxResults, keyEmbedConcurrency, keyEmbedDimensions, keyEmbedCacheSize:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects an integer, got %q", domain.ErrInvalidInput, key, raw)
		}
		return n, nil

	case keyMinSimilarity, keyRecencyBoost, keyEmbedRateLimit:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects a number, got %q", domain.ErrInvalidInput, key, raw)
		}
		return f, nil

	case keyRecencyWindow, keyEmbeddingTimeout:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("%w: %s expects a duration such as 24h, got %q", domain.ErrInvalidInput, key, raw)
		}
		return raw, nil

	case keyEnabledSources:
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if _, err := domain.ParseSourceKinds(parts); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return parts, nil

	default:
		return nil, fmt.Errorf("%w: unknown settings key %q", domain.ErrInvalidInput, key)
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfiguration, key, err)
	}
	return d, nil
}
