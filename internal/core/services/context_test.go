package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func rankedResult(id string, source domain.SourceKind, sim float64, rank int, snippet string) domain.SearchResult {
	return domain.SearchResult{
		Document: domain.Document{
			ID:       id,
			Content:  "content of " + id,
			Source:   source,
			Metadata: domain.Metadata{Title: id},
		},
		Similarity: sim,
		Rank:       rank,
		Snippet:    snippet,
	}
}

func TestContextService_Assemble_Format(t *testing.T) {
	service := NewContextService()
	results := []domain.SearchResult{
		rankedResult("notes.md", domain.SourceFile, 0.42, 1, "file text"),
		rankedResult("standup", domain.SourceChatMessage, 0.9, 2, "chat text"),
		rankedResult("retro", domain.SourceChatMessage, 0.81, 3, "more chat"),
	}

	block := service.Assemble(results, 0)

	want := "## Chat Messages\n\n" +
		"standup (relevance: 90%)\nchat text\n\n" +
		"retro (relevance: 81%)\nmore chat\n\n" +
		"## Files\n\n" +
		"notes.md (relevance: 42%)\nfile text"
	assert.Equal(t, want, block.Text)
	assert.Equal(t, 3, block.Entries)
	assert.Equal(t, 3+3+3, block.TokensUsed)
	assert.False(t, block.Truncated)
	assert.Equal(t, domain.SourceChatMessage, block.PrimarySource)
}

func TestContextService_Assemble_Empty(t *testing.T) {
	block := NewContextService().Assemble(nil, 100)

	assert.Empty(t, block.Text)
	assert.Zero(t, block.Entries)
	assert.Empty(t, block.PrimarySource)
}

func TestContextService_Assemble_UsesTitleFallback(t *testing.T) {
	r := rankedResult("x", domain.SourceTask, 0.5, 1, "do it")
	r.Document.Metadata.Title = ""

	block := NewContextService().Assemble([]domain.SearchResult{r}, 100)

	assert.True(t, strings.HasPrefix(block.Text, "## Tasks\n\nTasks (relevance: 50%)\n"))
}

func TestContextService_Assemble_StopsAtBudget(t *testing.T) {
	service := NewContextService()
	// Each snippet is 40 characters, so 10 tokens.
	snippet := strings.Repeat("a", 40)
	results := []domain.SearchResult{
		rankedResult("c1", domain.SourceChatMessage, 0.9, 1, snippet),
		rankedResult("c2", domain.SourceChatMessage, 0.8, 2, snippet),
		rankedResult("f1", domain.SourceFile, 0.7, 3, snippet),
	}

	block := service.Assemble(results, 25)

	assert.Equal(t, 2, block.Entries)
	assert.Equal(t, 20, block.TokensUsed)
	assert.True(t, block.Truncated)
	assert.NotContains(t, block.Text, "## Files")
	assert.Equal(t, domain.SourceChatMessage, block.PrimarySource)
}

func TestContextService_Assemble_StopsWholeAssemblyMidGroup(t *testing.T) {
	service := NewContextService()
	results := []domain.SearchResult{
		rankedResult("c1", domain.SourceChatMessage, 0.9, 1, strings.Repeat("a", 40)),
		rankedResult("c2", domain.SourceChatMessage, 0.8, 2, strings.Repeat("b", 400)),
		rankedResult("f1", domain.SourceFile, 0.7, 3, "tiny"),
	}

	block := service.Assemble(results, 50)

	assert.Equal(t, 1, block.Entries)
	assert.True(t, block.Truncated)
	assert.NotContains(t, block.Text, "tiny")
}

func TestContextService_Assemble_FirstEntryOverBudget(t *testing.T) {
	results := []domain.SearchResult{
		rankedResult("big", domain.SourceDocument, 0.9, 1, strings.Repeat("z", 100)),
	}

	block := NewContextService().Assemble(results, 10)

	assert.Empty(t, block.Text)
	assert.Zero(t, block.Entries)
	assert.True(t, block.Truncated)
	assert.Equal(t, domain.SourceDocument, block.PrimarySource)
}

func TestContextService_Assemble_CapsEntriesPerSource(t *testing.T) {
	var results []domain.SearchResult
	for i := range 8 {
		results = append(results, rankedResult(fmt.Sprintf("m%d", i), domain.SourceTeamMessage, 0.9, i+1, "x"))
	}

	block := NewContextService().Assemble(results, 0)

	assert.Equal(t, domain.MaxEntriesPerSource, block.Entries)
	assert.Contains(t, block.Text, "m4 (relevance")
	assert.NotContains(t, block.Text, "m5 (relevance")
	assert.False(t, block.Truncated)
}

func TestContextService_Assemble_GroupFollowsRank(t *testing.T) {
	results := []domain.SearchResult{
		rankedResult("second", domain.SourceFile, 0.5, 2, "b"),
		rankedResult("first", domain.SourceFile, 0.6, 1, "a"),
	}

	block := NewContextService().Assemble(results, 0)

	assert.Less(t, strings.Index(block.Text, "first"), strings.Index(block.Text, "second"))
}

func TestContextService_Assemble_SectionOrderIsSourceOrder(t *testing.T) {
	results := []domain.SearchResult{
		rankedResult("team", domain.SourceTeamMessage, 0.9, 1, "t"),
		rankedResult("code", domain.SourceCodeFile, 0.9, 2, "c"),
		rankedResult("theme", domain.SourceTheme, 0.9, 3, "h"),
	}

	block := NewContextService().Assemble(results, 0)

	themes := strings.Index(block.Text, "## Themes")
	code := strings.Index(block.Text, "## Code")
	team := strings.Index(block.Text, "## Team Messages")
	require.NotEqual(t, -1, themes)
	assert.Less(t, themes, code)
	assert.Less(t, code, team)
}

func TestContextService_Assemble_ContentFallback(t *testing.T) {
	r := rankedResult("long", domain.SourceDocument, 0.9, 1, "")
	r.Document.Content = strings.Repeat("é", 500)

	block := NewContextService().Assemble([]domain.SearchResult{r}, 0)

	assert.Contains(t, block.Text, strings.Repeat("é", domain.SnippetFallbackChars))
	assert.NotContains(t, block.Text, strings.Repeat("é", domain.SnippetFallbackChars+1))
	assert.Equal(t, domain.SnippetFallbackChars/4, block.TokensUsed)
}

func TestContextService_Assemble_DefaultBudget(t *testing.T) {
	var results []domain.SearchResult
	for i, kind := range domain.AllSourceKinds() {
		for j := range 5 {
			// 400 characters, 100 tokens each.
			results = append(results, rankedResult(fmt.Sprintf("%s-%d", kind, j), kind, 0.9, i*5+j+1, strings.Repeat("w", 400)))
		}
	}

	block := NewContextService().Assemble(results, -1)

	assert.Equal(t, 20, block.Entries)
	assert.Equal(t, domain.DefaultContextTokens, block.TokensUsed)
	assert.True(t, block.Truncated)
}

func TestContextService_PrimarySource(t *testing.T) {
	service := NewContextService()

	tests := []struct {
		name    string
		results []domain.SearchResult
		want    domain.SourceKind
		ok      bool
	}{
		{"empty", nil, "", false},
		{
			"majority wins",
			[]domain.SearchResult{
				rankedResult("a", domain.SourceChatMessage, 0.9, 1, ""),
				rankedResult("b", domain.SourceFile, 0.9, 2, ""),
				rankedResult("c", domain.SourceFile, 0.9, 3, ""),
			},
			domain.SourceFile, true,
		},
		{
			"tie goes to earlier kind",
			[]domain.SearchResult{
				rankedResult("a", domain.SourceTask, 0.9, 1, ""),
				rankedResult("b", domain.SourceTheme, 0.9, 2, ""),
			},
			domain.SourceTheme, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := service.PrimarySource(tt.results)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestContextService_PrimarySource_CountsAllResults(t *testing.T) {
	var results []domain.SearchResult
	results = append(results, rankedResult("chat", domain.SourceChatMessage, 0.9, 1, strings.Repeat("x", 9000)))
	for i := range 3 {
		results = append(results, rankedResult(fmt.Sprintf("f%d", i), domain.SourceFile, 0.5, i+2, strings.Repeat("y", 9000)))
	}

	block := NewContextService().Assemble(results, 0)

	assert.Zero(t, block.Entries)
	assert.Equal(t, domain.SourceFile, block.PrimarySource)
}
