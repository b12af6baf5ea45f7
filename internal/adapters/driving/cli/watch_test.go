package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestWatchCmd_RequiresDirectory(t *testing.T) {
	_, _, err := executeCommand(t, "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestWatchCmd_Flags(t *testing.T) {
	ext := watchCmd.Flags().Lookup("ext")
	require.NotNil(t, ext)
	assert.Equal(t, "[.md,.markdown,.txt,.html,.htm]", ext.DefValue)

	source := watchCmd.Flags().Lookup("source")
	require.NotNil(t, source)
	assert.Equal(t, "file", source.DefValue)
}

func TestWatchCmd_InvalidSource(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := executeCommand(t, "watch", "--source", "email", t.TempDir())

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatchCmd_ServiceNotConfigured(t *testing.T) {
	oldService := indexService
	indexService = nil
	defer func() {
		indexService = oldService
	}()

	_, _, err := executeCommand(t, "watch", t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index service not configured")
}

func TestRunWatch_InitialScanThenStops(t *testing.T) {
	ts, cleanup := installTestServices()
	defer cleanup()

	dir := t.TempDir()
	path := filepath.Join(dir, "existing.md")
	require.NoError(t, os.WriteFile(path, []byte("already here"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	watchCmd.SetContext(ctx)
	defer func() {
		watchCmd.SetContext(context.Background())
		resetFlags(rootCmd)
	}()

	err := runWatch(watchCmd, []string{dir})

	require.NoError(t, err)
	require.Len(t, ts.index.requests, 1)
	assert.Equal(t, path, ts.index.requests[0].Metadata.FileID)
	assert.Equal(t, domain.SourceFile, ts.index.requests[0].Source)
	assert.Contains(t, buf.String(), "index "+path+" (1 chunks)")
}
