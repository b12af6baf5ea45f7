package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
)

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	requests   []domain.IndexRequest
	deletedIDs []string
	filters    []domain.Filter
	result     *domain.IndexResult
	err        error
	deleteErrs map[string]error
	matched    int
	stats      domain.IndexStats
}

func (m *mockIndexService) Index(_ context.Context, req domain.IndexRequest) (*domain.IndexResult, error) {
	m.requests = append(m.requests, req)
	if m.result != nil || m.err != nil {
		return m.result, m.err
	}
	return &domain.IndexResult{
		DocumentIDs:   []string{"doc-1"},
		ChunksCreated: 1,
		TokensIndexed: domain.EstimateTokens(req.Content),
		Duration:      3 * time.Millisecond,
	}, nil
}

func (m *mockIndexService) Delete(_ context.Context, id string) error {
	if err := m.deleteErrs[id]; err != nil {
		return err
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockIndexService) DeleteWhere(_ context.Context, filter domain.Filter) (int, error) {
	m.filters = append(m.filters, filter)
	return m.matched, nil
}

func (m *mockIndexService) Stats() domain.IndexStats {
	return m.stats
}

func (m *mockIndexService) RefreshStats(_ context.Context) error {
	return nil
}

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

// testServices holds the services installed by setupTestServices.
type testServices struct {
	index    *mockIndexService
	search   *mockSearchService
	settings *services.SettingsService
}

func defaultSearchResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Document: domain.Document{
				ID:        "doc-1",
				Content:   "Standup moved to ten. Bring the roadmap.",
				Source:    domain.SourceChatMessage,
				Metadata:  domain.Metadata{Title: "Standup"},
				CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			},
			Similarity:   0.9,
			Score:        0.93,
			Rank:         1,
			MatchedTerms: []string{"standup"},
			Snippet:      "Standup moved to ten.",
		},
		{
			Document: domain.Document{
				ID:       "doc-2",
				Content:  "Roadmap draft for Q3.",
				Source:   domain.SourceFile,
				Metadata: domain.Metadata{Title: "roadmap.md"},
			},
			Similarity: 0.5,
			Score:      0.56,
			Rank:       2,
		},
	}
}

// setupTestServices installs mock services and returns a function that
// restores the previous ones.
func setupTestServices() func() {
	_, cleanup := installTestServices()
	return cleanup
}

func installTestServices() (*testServices, func()) {
	oldIndex, oldSearch, oldContext, oldSettings := indexService, searchService, contextService, settingsService

	ts := &testServices{
		index:    &mockIndexService{},
		search:   &mockSearchService{results: defaultSearchResults()},
		settings: services.NewSettingsService(memory.NewConfigStore()),
	}
	indexService = ts.index
	searchService = ts.search
	contextService = services.NewContextService()
	settingsService = ts.settings

	return ts, func() {
		indexService, searchService, contextService, settingsService = oldIndex, oldSearch, oldContext, oldSettings
	}
}

// executeCommand runs the root command with args and returns stdout and stderr.
// Flags are reset afterwards so tests do not leak state.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	outBuf, errBuf := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	}()

	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// resetFlags restores every flag of cmd and its subcommands to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			def := strings.Trim(f.DefValue, "[]")
			values := []string{}
			if def != "" {
				values = strings.Split(def, ",")
			}
			_ = sv.Replace(values)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
