package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/cached"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/embedding/throttled"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantErr  bool
		wantDims int
	}{
		{
			name:    "nil settings returns error",
			wantErr: true,
		},
		{
			name:     "hashing provider",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing, Dimensions: 64},
			wantDims: 64,
		},
		{
			name:     "hashing provider default dimensions",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing},
			wantDims: domain.DefaultHashingDimensions,
		},
		{
			name: "ollama provider known model",
			settings: &domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOllama,
				Model:    "mxbai-embed-large",
			},
			wantDims: 1024,
		},
		{
			name: "ollama provider explicit dimensions",
			settings: &domain.EmbeddingSettings{
				Provider:   domain.EmbeddingProviderOllama,
				Model:      "custom-model",
				Dimensions: 512,
			},
			wantDims: 512,
		},
		{
			name:     "unknown provider returns error",
			settings: &domain.EmbeddingSettings{Provider: "magic"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			defer svc.Close()
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateEmbeddingService_Wrapping(t *testing.T) {
	t.Run("bare provider", func(t *testing.T) {
		svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing})
		require.NoError(t, err)
		assert.IsType(t, &hashing.EmbeddingService{}, svc)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
			Provider:  domain.EmbeddingProviderHashing,
			RateLimit: 10,
		})
		require.NoError(t, err)
		assert.IsType(t, &throttled.EmbeddingService{}, svc)
	})

	t.Run("cache outermost", func(t *testing.T) {
		svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
			Provider:  domain.EmbeddingProviderHashing,
			RateLimit: 10,
			CacheSize: 8,
		})
		require.NoError(t, err)
		require.IsType(t, &cached.EmbeddingService{}, svc)

		_, err = svc.Embed(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, 1, svc.(*cached.EmbeddingService).Len())
	})
}

func TestCreateOllamaEmbedding_UnknownModel(t *testing.T) {
	svc := createOllamaEmbedding(&domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOllama,
		Model:    "unknown-model",
	})

	assert.Equal(t, ollamaembed.ModelDimensions(ollamaembed.DefaultModel), svc.Dimensions())
}

func TestValidateEmbeddingConfig(t *testing.T) {
	t.Run("hashing always validates", func(t *testing.T) {
		err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing})
		assert.NoError(t, err)
	})

	t.Run("reachable ollama", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"models":[{"name":"nomic-embed-text:latest"}]}`))
		}))
		defer server.Close()

		err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  server.URL,
		})
		assert.NoError(t, err)
	})

	t.Run("unreachable ollama", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		err := ValidateEmbeddingConfig(&domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  server.URL,
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{
			Provider:  domain.EmbeddingProviderHashing,
			CacheSize: 4,
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.NoError(t, svc.Close())
	})

	t.Run("unsupported provider", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{Provider: "magic"})
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
		assert.Contains(t, err.Error(), "sercha-rag settings provider")
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		svc, err := CreateAndValidateEmbeddingService(context.Background(), &domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  server.URL,
		})
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
