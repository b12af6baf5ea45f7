package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// docOverheadBytes approximates per-document bookkeeping beyond content and vector.
const docOverheadBytes = 128

// statsTracker holds the most recently computed index statistics.
type statsTracker struct {
	// refreshMu serializes scan-and-apply so an older scan never
	// overwrites a newer one.
	refreshMu sync.Mutex

	mu    sync.RWMutex
	stats domain.IndexStats
	dims  int64 // total embedding length, for the average
}

func newStatsTracker() *statsTracker {
	return &statsTracker{
		stats: domain.IndexStats{BySource: make(map[domain.SourceKind]int)},
	}
}

// get returns a copy of the current statistics.
func (t *statsTracker) get() domain.IndexStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats.Clone()
}

// recompute rebuilds the statistics from a full scan of the store.
func (t *statsTracker) recompute(ctx context.Context, store driven.DocumentStore, at time.Time) error {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	docs, err := store.Scan(ctx, domain.Filter{})
	if err != nil {
		return fmt.Errorf("scan for stats: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats = domain.IndexStats{BySource: make(map[domain.SourceKind]int)}
	t.dims = 0
	for i := range docs {
		t.include(&docs[i])
	}
	t.finish(at)
	return nil
}

// include counts one document. Callers must hold mu.
func (t *statsTracker) include(doc *domain.Document) {
	t.stats.TotalDocuments++
	t.stats.BySource[doc.Source]++
	t.dims += int64(len(doc.Embedding))
	t.stats.ApproxSizeBytes += int64(len(doc.Content)) + 4*int64(len(doc.Embedding)) + docOverheadBytes
}

// finish derives averages and stamps the update time. Callers must hold mu.
func (t *statsTracker) finish(at time.Time) {
	if t.stats.TotalDocuments > 0 {
		t.stats.AverageDimensions = float64(t.dims) / float64(t.stats.TotalDocuments)
	} else {
		t.stats.AverageDimensions = 0
	}
	t.stats.LastUpdated = at
}
