package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery domain.SearchQuery
}

func (m *mockSearchService) Search(_ context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	m.lastQuery = query
	return m.results, m.err
}

// mockContextService is a mock implementation of driving.ContextService.
type mockContextService struct {
	block         domain.ContextBlock
	lastMaxTokens int
	lastResults   []domain.SearchResult
}

func (m *mockContextService) Assemble(results []domain.SearchResult, maxTokens int) domain.ContextBlock {
	m.lastResults = results
	m.lastMaxTokens = maxTokens
	return m.block
}

func (m *mockContextService) PrimarySource(_ []domain.SearchResult) (domain.SourceKind, bool) {
	return m.block.PrimarySource, m.block.PrimarySource != ""
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	result  *domain.IndexResult
	err     error
	stats   domain.IndexStats
	lastReq domain.IndexRequest
}

func (m *mockIndexService) Index(_ context.Context, req domain.IndexRequest) (*domain.IndexResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockIndexService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexService) DeleteWhere(_ context.Context, _ domain.Filter) (int, error) {
	return 0, m.err
}

func (m *mockIndexService) Stats() domain.IndexStats {
	return m.stats
}

func (m *mockIndexService) RefreshStats(_ context.Context) error {
	return m.err
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}
