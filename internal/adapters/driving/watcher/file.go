package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
)

// IndexFile replaces the indexed chunks of a file with its normalised content.
// A nil normaliser selects one by extension from normalisers.Default.
// The title falls back from meta to the normalised title to the file name.
//
// The new content is indexed before the previous chunks are removed. If
// indexing fails, any chunks it stored are discarded and the previous
// chunks stay, so a file is never left half replaced.
func IndexFile(
	ctx context.Context,
	index driving.IndexService,
	norm driven.Normaliser,
	path string,
	source domain.SourceKind,
	meta domain.Metadata,
) (*domain.IndexResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if norm == nil {
		norm = normalisers.Default()
	}
	normalised, err := norm.Normalise(abs, content)
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", path, err)
	}

	meta.FileID = abs
	if meta.Title == "" {
		meta.Title = normalised.Title
	}
	if meta.Title == "" {
		meta.Title = filepath.Base(abs)
	}
	if meta.ContentType == "" {
		meta.ContentType = normalised.ContentType
	}

	result, err := index.Index(ctx, domain.IndexRequest{
		Content:       normalised.Content,
		Source:        source,
		Metadata:      meta,
		ChunkIfNeeded: true,
	})
	if err != nil {
		if result != nil && len(result.DocumentIDs) > 0 {
			discardPartial(ctx, index, abs, result)
		}
		return result, err
	}

	removed, err := index.DeleteWhere(ctx, domain.Filter{FileID: abs, ExcludeIDs: result.DocumentIDs})
	if err != nil {
		return result, fmt.Errorf("removing previous chunks of %s: %w", path, err)
	}
	if removed > 0 {
		logger.Debug("Replaced %d previous chunks of %s", removed, abs)
	}
	return result, nil
}

// discardPartial removes the chunks a failed Index call stored and clears
// them from the result.
func discardPartial(ctx context.Context, index driving.IndexService, abs string, result *domain.IndexResult) {
	n, err := index.DeleteWhere(context.WithoutCancel(ctx), domain.Filter{FileID: abs, IDs: result.DocumentIDs})
	if err != nil {
		logger.Warn("Failed to discard partial chunks of %s: %v", abs, err)
		return
	}
	logger.Debug("Discarded %d partial chunks of %s", n, abs)

	result.DocumentIDs = nil
	result.ChunksCreated = 0
	result.TokensIndexed = 0
}

// RemoveFile deletes every indexed chunk of a file.
func RemoveFile(ctx context.Context, index driving.IndexService, path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", path, err)
	}

	n, err := index.DeleteWhere(ctx, domain.Filter{FileID: abs})
	if err != nil {
		return 0, fmt.Errorf("removing chunks of %s: %w", path, err)
	}
	return n, nil
}
