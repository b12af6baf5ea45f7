package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestIndexCmd_Use(t *testing.T) {
	assert.Equal(t, "index [file...]", indexCmd.Use)
}

func TestIndexCmd_Text(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	stdout, _, err := executeCommand(t, "index",
		"--text", "Standup moved to ten",
		"--source", "chat-message",
		"--title", "Standup",
		"--conversation", "conv-1",
		"--team", "eng",
		"--tag", "meeting", "--tag", "schedule",
		"--protected",
	)

	require.NoError(t, err)
	require.Len(t, ts.index.requests, 1)
	req := ts.index.requests[0]
	assert.Equal(t, "Standup moved to ten", req.Content)
	assert.Equal(t, domain.SourceChatMessage, req.Source)
	assert.True(t, req.ChunkIfNeeded)
	assert.Equal(t, "Standup", req.Metadata.Title)
	assert.Equal(t, "conv-1", req.Metadata.ConversationID)
	assert.Equal(t, "eng", req.Metadata.TeamID)
	assert.Equal(t, []string{"meeting", "schedule"}, req.Metadata.Tags)
	assert.True(t, req.Metadata.Protected)
	assert.Contains(t, stdout, "Indexed text: 1 chunks")
}

func TestIndexCmd_TextDefaultsToDocument(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	_, _, err := executeCommand(t, "index", "--text", "plain", "--no-chunk")

	require.NoError(t, err)
	require.Len(t, ts.index.requests, 1)
	assert.Equal(t, domain.SourceDocument, ts.index.requests[0].Source)
	assert.False(t, ts.index.requests[0].ChunkIfNeeded)
}

func TestIndexCmd_Files(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(first, []byte("alpha"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("beta"), 0o600))

	stdout, _, err := executeCommand(t, "index", first, second)

	require.NoError(t, err)
	require.Len(t, ts.index.requests, 2)
	assert.Equal(t, domain.SourceFile, ts.index.requests[0].Source)
	assert.Equal(t, first, ts.index.requests[0].Metadata.FileID)
	assert.Equal(t, "a.md", ts.index.requests[0].Metadata.Title)
	assert.Equal(t, "beta", ts.index.requests[1].Content)

	require.Len(t, ts.index.filters, 2)
	assert.Equal(t, second, ts.index.filters[1].FileID)
	assert.Contains(t, stdout, "Indexed "+first)
}

func TestIndexCmd_MissingFileReportsAll(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	require.NoError(t, os.WriteFile(good, []byte("ok"), 0o600))
	missing := filepath.Join(dir, "missing.md")

	stdout, _, err := executeCommand(t, "index", missing, good)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexing failed")
	assert.Contains(t, err.Error(), "missing.md")
	assert.Len(t, ts.index.requests, 1)
	assert.Contains(t, stdout, "Failed "+missing)
	assert.Contains(t, stdout, "Indexed "+good)
}

func TestIndexCmd_FilesAndTextConflict(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand(t, "index", "--text", "x", "file.md")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestIndexCmd_Stdin(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("piped transcript"))
	stdout, _, err := executeCommand(t, "index", "--source", "team_message")

	require.NoError(t, err)
	require.Len(t, ts.index.requests, 1)
	assert.Equal(t, "piped transcript", ts.index.requests[0].Content)
	assert.Equal(t, domain.SourceTeamMessage, ts.index.requests[0].Source)
	assert.Contains(t, stdout, "Indexed stdin")
}

func TestIndexCmd_EmptyStdin(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("  \n"))
	_, _, err := executeCommand(t, "index")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin was empty")
	assert.Empty(t, ts.index.requests)
}

func TestIndexCmd_InvalidSource(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand(t, "index", "--text", "x", "--source", "email")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndexCmd_PartialFailure(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	chunkErr := &domain.ChunkError{Index: 1, DocumentID: "doc-2", Err: domain.ErrDimensionMismatch}
	ts.index.result = &domain.IndexResult{
		DocumentIDs:   []string{"doc-1", "doc-2"},
		ChunksCreated: 1,
		Errors:        []*domain.ChunkError{chunkErr},
	}
	ts.index.err = chunkErr

	stdout, _, err := executeCommand(t, "index", "--text", "long text")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Contains(t, stdout, "Partially indexed text: 1 chunks")
	assert.Contains(t, stdout, "chunk 1 (document doc-2)")
}

func TestIndexCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := executeCommand(t, "index", "--text", "hello world", "--json")

	require.NoError(t, err)
	var outcomes []indexOutcome
	require.NoError(t, json.Unmarshal([]byte(stdout), &outcomes))
	require.Len(t, outcomes, 1)
	assert.Equal(t, "text", outcomes[0].Target)
	assert.Equal(t, []string{"doc-1"}, outcomes[0].DocumentIDs)
	assert.Equal(t, 1, outcomes[0].ChunksCreated)
	assert.Equal(t, int64(3), outcomes[0].DurationMS)
}

func TestIndexCmd_ServiceNotConfigured(t *testing.T) {
	oldService := indexService
	indexService = nil
	defer func() {
		indexService = oldService
	}()

	_, _, err := executeCommand(t, "index", "--text", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index service not configured")
}

func TestNewIndexOutcome_ErrorWithoutResult(t *testing.T) {
	out := newIndexOutcome("x", nil, domain.ErrEmbeddingUnavailable)

	assert.Equal(t, []string{}, out.DocumentIDs)
	assert.Equal(t, []string{domain.ErrEmbeddingUnavailable.Error()}, out.Errors)
}
