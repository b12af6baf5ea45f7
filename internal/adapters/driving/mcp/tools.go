package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query            string   `json:"query" jsonschema:"the search query to find documents"`
	Limit            int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Sources          []string `json:"sources,omitempty" jsonschema:"restrict to these source kinds, e.g. chat_message or file"`
	ConversationID   string   `json:"conversation_id,omitempty" jsonschema:"restrict to one conversation"`
	TeamID           string   `json:"team_id,omitempty" jsonschema:"restrict to one team"`
	MinSimilarity    *float64 `json:"min_similarity,omitempty" jsonschema:"override the similarity threshold (0 to 1)"`
	ExcludeProtected bool     `json:"exclude_protected,omitempty" jsonschema:"skip content from protected stores"`
	ProtectedOnly    bool     `json:"protected_only,omitempty" jsonschema:"search only content from protected stores"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID   string   `json:"document_id"`
	Title        string   `json:"title"`
	Source       string   `json:"source"`
	Icon         string   `json:"icon"`
	Rank         int      `json:"rank"`
	Similarity   float64  `json:"similarity"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
	Snippet      string   `json:"snippet,omitempty"`
	Content      string   `json:"content,omitempty"`
}

// BuildContextInput is the input schema for the build_context tool.
type BuildContextInput struct {
	Query     string   `json:"query" jsonschema:"the question the context should answer"`
	MaxTokens int      `json:"max_tokens,omitempty" jsonschema:"token budget for the context block (default 2000)"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of results to consider (default 10)"`
	Sources   []string `json:"sources,omitempty" jsonschema:"restrict to these source kinds"`
}

// BuildContextOutput is the output schema for the build_context tool.
type BuildContextOutput struct {
	Context       string `json:"context"`
	TokensUsed    int    `json:"tokens_used"`
	Entries       int    `json:"entries"`
	Truncated     bool   `json:"truncated"`
	PrimarySource string `json:"primary_source,omitempty"`
	ResultCount   int    `json:"result_count"`
}

// IndexContentInput is the input schema for the index_content tool.
type IndexContentInput struct {
	Content        string   `json:"content" jsonschema:"the text to index"`
	Source         string   `json:"source" jsonschema:"source kind, e.g. document or chat_message"`
	Title          string   `json:"title,omitempty" jsonschema:"human-readable title"`
	ConversationID string   `json:"conversation_id,omitempty" jsonschema:"owning conversation"`
	TeamID         string   `json:"team_id,omitempty" jsonschema:"owning team"`
	Tags           []string `json:"tags,omitempty" jsonschema:"labels attached to every chunk"`
	NoChunk        bool     `json:"no_chunk,omitempty" jsonschema:"store long content as a single document"`
}

// IndexContentOutput is the output schema for the index_content tool.
type IndexContentOutput struct {
	DocumentIDs   []string `json:"document_ids"`
	ChunksCreated int      `json:"chunks_created"`
	TokensIndexed int      `json:"tokens_indexed"`
	Errors        []string `json:"errors,omitempty"`
}

// StatsInput is the (empty) input schema for the index_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the index_stats tool and stats resource.
type StatsOutput struct {
	TotalDocuments    int            `json:"total_documents"`
	BySource          map[string]int `json:"by_source"`
	AverageDimensions float64        `json:"average_dimensions"`
	ApproxSizeBytes   int64          `json:"approx_size_bytes"`
	LastUpdated       string         `json:"last_updated,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the local index by semantic similarity, weighted by source priority and recency",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "build_context",
		Description: "Search and format the best matches as a token-budgeted context block grouped by source",
	}, s.handleBuildContext)

	if s.ports.Index == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_content",
		Description: "Chunk, embed and store text so later searches can find it",
	}, s.handleIndexContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_stats",
		Description: "Report document counts per source and approximate index size",
	}, s.handleIndexStats)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	sources, err := domain.ParseSourceKinds(input.Sources)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	query := domain.SearchQuery{
		Text:           input.Query,
		Sources:        sources,
		ConversationID: input.ConversationID,
		TeamID:         input.TeamID,
		Limit:          input.Limit,
		MinSimilarity:  input.MinSimilarity,
	}
	switch {
	case input.ExcludeProtected && input.ProtectedOnly:
		return nil, SearchOutput{}, fmt.Errorf("%w: exclude_protected and protected_only are exclusive", domain.ErrInvalidInput)
	case input.ExcludeProtected:
		query.Protected = domain.ProtectedExclude
	case input.ProtectedOnly:
		query.Protected = domain.ProtectedOnly
	}

	results, err := s.ports.Search.Search(ctx, query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		doc := &results[i].Document
		output.Results[i] = SearchResultOutput{
			DocumentID:   doc.ID,
			Title:        doc.Title(),
			Source:       doc.Source.String(),
			Icon:         doc.Source.Icon(),
			Rank:         results[i].Rank,
			Similarity:   results[i].Similarity,
			Score:        results[i].Score,
			MatchedTerms: results[i].MatchedTerms,
			Snippet:      results[i].Snippet,
			Content:      doc.Content,
		}
	}

	return nil, output, nil
}

// handleBuildContext handles the build_context tool invocation.
func (s *Server) handleBuildContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildContextInput,
) (*mcp.CallToolResult, BuildContextOutput, error) {
	sources, err := domain.ParseSourceKinds(input.Sources)
	if err != nil {
		return nil, BuildContextOutput{}, err
	}

	results, err := s.ports.Search.Search(ctx, domain.SearchQuery{
		Text:    input.Query,
		Sources: sources,
		Limit:   input.Limit,
	})
	if err != nil {
		return nil, BuildContextOutput{}, err
	}

	block := s.ports.Context.Assemble(results, input.MaxTokens)

	return nil, BuildContextOutput{
		Context:       block.Text,
		TokensUsed:    block.TokensUsed,
		Entries:       block.Entries,
		Truncated:     block.Truncated,
		PrimarySource: block.PrimarySource.String(),
		ResultCount:   len(results),
	}, nil
}

// handleIndexContent handles the index_content tool invocation.
// Partial failures are reported in the output rather than as a tool error.
func (s *Server) handleIndexContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexContentInput,
) (*mcp.CallToolResult, IndexContentOutput, error) {
	source, err := domain.ParseSourceKind(input.Source)
	if err != nil {
		return nil, IndexContentOutput{}, err
	}

	result, err := s.ports.Index.Index(ctx, domain.IndexRequest{
		Content: input.Content,
		Source:  source,
		Metadata: domain.Metadata{
			ConversationID: input.ConversationID,
			TeamID:         input.TeamID,
			Title:          input.Title,
			Tags:           input.Tags,
		},
		ChunkIfNeeded: !input.NoChunk,
	})
	if result == nil {
		if err == nil {
			err = errors.New("index returned no result")
		}
		return nil, IndexContentOutput{}, err
	}

	output := IndexContentOutput{
		DocumentIDs:   result.DocumentIDs,
		ChunksCreated: result.ChunksCreated,
		TokensIndexed: result.TokensIndexed,
	}
	for _, chunkErr := range result.Errors {
		output.Errors = append(output.Errors, chunkErr.Error())
	}
	if err != nil && len(result.Errors) == 0 {
		output.Errors = append(output.Errors, err.Error())
	}

	return nil, output, nil
}

// handleIndexStats handles the index_stats tool invocation.
func (s *Server) handleIndexStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	return nil, toStatsOutput(s.ports.Index.Stats()), nil
}

// toStatsOutput converts domain statistics to the wire format.
func toStatsOutput(stats domain.IndexStats) StatsOutput {
	out := StatsOutput{
		TotalDocuments:    stats.TotalDocuments,
		BySource:          make(map[string]int, len(stats.BySource)),
		AverageDimensions: stats.AverageDimensions,
		ApproxSizeBytes:   stats.ApproxSizeBytes,
	}
	for kind, n := range stats.BySource {
		out.BySource[kind.String()] = n
	}
	if !stats.LastUpdated.IsZero() {
		out.LastUpdated = stats.LastUpdated.UTC().Format(time.RFC3339)
	}
	return out
}
