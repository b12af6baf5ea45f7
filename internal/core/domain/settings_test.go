package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, 512, c.MaxChunkSize)
	assert.Equal(t, 64, c.ChunkOverlap)
	assert.InDelta(t, 0.3, c.MinSimilarity, 1e-12)
	assert.Equal(t, 20, c.MaxResults)
	assert.Nil(t, c.EnabledSources)
	assert.InDelta(t, 0.1, c.RecencyBoost, 1e-12)
	assert.Equal(t, 24*time.Hour, c.RecencyWindow)
	require.NoError(t, c.Validate())
}

func TestPresets_Ordering(t *testing.T) {
	def := DefaultConfig()
	agg := AggressiveConfig()
	con := ConservativeConfig()

	assert.Less(t, agg.MinSimilarity, def.MinSimilarity)
	assert.Greater(t, agg.MaxResults, def.MaxResults)
	assert.Greater(t, agg.RecencyBoost, def.RecencyBoost)

	assert.Greater(t, con.MinSimilarity, def.MinSimilarity)
	assert.Less(t, con.MaxResults, def.MaxResults)
	assert.Less(t, con.RecencyBoost, def.RecencyBoost)

	for _, p := range AllPresets() {
		cfg := p.Config()
		assert.NoError(t, cfg.Validate(), p.String())
		assert.True(t, p.IsValid())
		assert.NotEqual(t, "Unknown", p.Description())
	}
}

func TestPreset_Unknown(t *testing.T) {
	p := Preset("turbo")

	assert.False(t, p.IsValid())
	assert.Equal(t, DefaultConfig(), p.Config())
	assert.Equal(t, "Unknown", p.Description())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"overlap equals size", func(c *Config) { c.ChunkOverlap = c.MaxChunkSize }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"zero size", func(c *Config) { c.MaxChunkSize = 0 }},
		{"similarity above one", func(c *Config) { c.MinSimilarity = 1.5 }},
		{"negative similarity", func(c *Config) { c.MinSimilarity = -0.1 }},
		{"negative results", func(c *Config) { c.MaxResults = -1 }},
		{"negative boost", func(c *Config) { c.RecencyBoost = -1 }},
		{"negative window", func(c *Config) { c.RecencyWindow = -time.Second }},
		{"negative concurrency", func(c *Config) { c.EmbedConcurrency = -2 }},
		{"unknown source", func(c *Config) { c.EnabledSources = []SourceKind{"x"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfiguration)
		})
	}
}

func TestEmbeddingProvider(t *testing.T) {
	assert.True(t, EmbeddingProviderHashing.IsValid())
	assert.True(t, EmbeddingProviderOllama.IsValid())
	assert.False(t, EmbeddingProvider("openai").IsValid())
	assert.Equal(t, "Unknown", EmbeddingProvider("x").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, PresetDefault, s.Preset)
	assert.Equal(t, DefaultConfig(), s.RAG)
	assert.Equal(t, EmbeddingProviderHashing, s.Embedding.Provider)
	assert.Equal(t, 256, s.Embedding.Dimensions)
	assert.Equal(t, StorageSQLite, s.Storage.Backend)
	assert.True(t, s.Storage.Backend.IsValid())
	assert.False(t, StorageBackend("redis").IsValid())
}
