package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, DefaultTimeout, svc.client.Timeout)
}

func TestNewEmbeddingService_ExplicitDimensions(t *testing.T) {
	svc := NewEmbeddingService(Config{Model: "custom", Dimensions: 512})

	assert.Equal(t, 512, svc.Dimensions())
}

func TestModelDimensions(t *testing.T) {
	assert.Equal(t, 384, ModelDimensions("all-minilm"))
	assert.Equal(t, 384, ModelDimensions("all-minilm:l6-v2"))
	assert.Equal(t, 1024, ModelDimensions("mxbai-embed-large"))
	assert.Equal(t, 768, ModelDimensions("something-else"))
}

func TestEmbed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		assert.Equal(t, "hello", req.Input)
		assert.True(t, req.Truncate)

		_, _ = w.Write([]byte(`{"model":"all-minilm","embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL + "/", Model: "all-minilm"})

	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, vec, 1e-6)
}

func TestEmbed_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestEmbed_ErrorBodyIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 10*maxErrorBody)))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 2*maxErrorBody)
}

func TestEmbed_EmptyEmbeddingIsUnavailable(t *testing.T) {
	for _, body := range []string{`{"embeddings":[]}`, `{"embeddings":[[]]}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		svc := NewEmbeddingService(Config{BaseURL: server.URL})
		_, err := svc.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable, body)

		server.Close()
	}
}

func TestEmbed_MalformedResponseIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	svc := NewEmbeddingService(Config{BaseURL: url})

	_, err := svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Embed(ctx, "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func tagsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		tags    string
		wantErr bool
	}{
		{"tagged latest", "nomic-embed-text", `{"models":[{"name":"nomic-embed-text:latest"}]}`, false},
		{"exact tag", "all-minilm:l6-v2", `{"models":[{"name":"all-minilm:l6-v2"}]}`, false},
		{"not pulled", "all-minilm", `{"models":[{"name":"llama3.2:latest"}]}`, true},
		{"no models", "all-minilm", `{"models":[]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := tagsServer(t, tt.tags)
			svc := NewEmbeddingService(Config{BaseURL: server.URL, Model: tt.model})

			err := svc.Ping(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
				assert.Contains(t, err.Error(), "ollama pull "+tt.model)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, svc.Close())
		})
	}
}

func TestPing_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}
