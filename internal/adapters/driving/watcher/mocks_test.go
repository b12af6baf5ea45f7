package watcher

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// recordingIndex is a driving.IndexService that records calls.
type recordingIndex struct {
	mu        sync.Mutex
	requests  []domain.IndexRequest
	filters   []domain.Filter
	indexErr  error
	partial   bool // with indexErr, also report one stored chunk
	deleteErr error
	deleted   int
}

func (r *recordingIndex) Index(_ context.Context, req domain.IndexRequest) (*domain.IndexResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.indexErr != nil {
		if r.partial {
			return &domain.IndexResult{DocumentIDs: []string{"doc"}, ChunksCreated: 1}, r.indexErr
		}
		return nil, r.indexErr
	}
	return &domain.IndexResult{DocumentIDs: []string{"doc"}, ChunksCreated: 1}, nil
}

func (r *recordingIndex) Delete(_ context.Context, _ string) error {
	return nil
}

func (r *recordingIndex) DeleteWhere(_ context.Context, filter domain.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append(r.filters, filter)
	return r.deleted, r.deleteErr
}

func (r *recordingIndex) Stats() domain.IndexStats {
	return domain.IndexStats{}
}

func (r *recordingIndex) RefreshStats(_ context.Context) error {
	return nil
}

func (r *recordingIndex) indexRequests() []domain.IndexRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.IndexRequest(nil), r.requests...)
}

func (r *recordingIndex) deleteFilters() []domain.Filter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Filter(nil), r.filters...)
}

// downEmbedder is a driven.EmbeddingService whose server refuses connections.
type downEmbedder struct{}

func (downEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("connection refused")
}

func (downEmbedder) Dimensions() int { return 0 }

func (downEmbedder) ModelName() string { return "down" }

func (downEmbedder) Ping(_ context.Context) error { return errors.New("connection refused") }

func (downEmbedder) Close() error { return nil }
