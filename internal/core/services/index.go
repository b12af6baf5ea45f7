package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService chunks, embeds and stores content.
type IndexService struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
	chunker  driven.Chunker
	cfg      domain.Config
	stats    *statsTracker

	newID func() string
	now   func() time.Time
}

// NewIndexService creates a new index service. The chunker should be
// configured with cfg.MaxChunkSize and cfg.ChunkOverlap.
func NewIndexService(
	store driven.DocumentStore,
	embedder driven.EmbeddingService,
	chunker driven.Chunker,
	cfg domain.Config,
) *IndexService {
	return &IndexService{
		store:    store,
		embedder: embedder,
		chunker:  chunker,
		cfg:      cfg,
		stats:    newStatsTracker(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// embedOutcome is the result of embedding a single chunk.
type embedOutcome struct {
	vec  []float32
	err  error
	done chan struct{}
}

// Index chunks, embeds and stores the request content.
//
// Embeddings are computed concurrently, bounded by cfg.EmbedConcurrency, and
// documents are inserted in chunk order. A failed chunk is recorded in
// IndexResult.Errors and does not undo the chunks stored before it; the
// returned error is the first chunk failure. When ctx is cancelled, chunks
// already stored are kept and the result reports them. Statistics are
// recomputed from the store after every batch that stored a chunk.
func (s *IndexService) Index(ctx context.Context, req domain.IndexRequest) (*domain.IndexResult, error) {
	logger.Section("Indexing")
	defer logger.Timed("index")()

	if !req.Source.IsValid() {
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, req.Source)
	}

	start := s.now()

	chunks, err := s.split(req)
	if err != nil {
		return nil, err
	}
	logger.Debug("Source: %s, chunks: %d", req.Source, len(chunks))

	outcomes := s.embedAll(ctx, chunks)

	result := &domain.IndexResult{
		DocumentIDs: make([]string, 0, len(chunks)),
	}
	var cancelErr error

	for i, chunk := range chunks {
		out := outcomes[i]
		<-out.done

		id := s.newID()
		if out.err != nil {
			if isCancellation(ctx, out.err) {
				cancelErr = out.err
				break
			}
			logger.Warn("Chunk %d embedding failed: %v", i, out.err)
			result.Errors = append(result.Errors, &domain.ChunkError{Index: i, DocumentID: id, Err: out.err})
			continue
		}

		now := s.now()
		doc := domain.Document{
			ID:             id,
			Content:        chunk,
			Embedding:      out.vec,
			Source:         req.Source,
			Metadata:       req.Metadata.Clone(),
			CreatedAt:      now,
			LastAccessedAt: now,
		}
		if len(chunks) > 1 {
			doc.Metadata.Chunk = &domain.ChunkPosition{Index: i, Total: len(chunks)}
		}

		if err := s.store.Insert(ctx, doc); err != nil {
			if isCancellation(ctx, err) {
				cancelErr = err
				break
			}
			if !errors.Is(err, domain.ErrDimensionMismatch) {
				err = fmt.Errorf("%w: %w", domain.ErrInsertFailed, err)
			}
			logger.Warn("Chunk %d insert failed: %v", i, err)
			result.Errors = append(result.Errors, &domain.ChunkError{Index: i, DocumentID: id, Err: err})
			continue
		}

		result.DocumentIDs = append(result.DocumentIDs, id)
		result.ChunksCreated++
		result.TokensIndexed += domain.EstimateTokens(chunk)
	}

	if result.ChunksCreated > 0 {
		// Stats must reflect the batch even when ctx was cancelled mid-way.
		s.refreshStats(context.WithoutCancel(ctx))
	}
	result.Duration = s.now().Sub(start)

	logger.Info("Indexed %d/%d chunks (%d tokens) in %s",
		result.ChunksCreated, len(chunks), result.TokensIndexed, result.Duration)

	if cancelErr != nil {
		return result, fmt.Errorf("index cancelled after %d chunks: %w", result.ChunksCreated, cancelErr)
	}
	if len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	return result, nil
}

// split returns the chunks for a request.
func (s *IndexService) split(req domain.IndexRequest) ([]string, error) {
	if !req.ChunkIfNeeded || utf8.RuneCountInString(req.Content) <= s.cfg.MaxChunkSize {
		return []string{req.Content}, nil
	}

	chunks, err := s.chunker.Split(req.Content)
	if err != nil {
		return nil, fmt.Errorf("chunk content: %w", err)
	}
	return chunks, nil
}

// embedAll starts embedding every chunk and returns one outcome per chunk.
// Each outcome's done channel closes when its embedding finishes.
func (s *IndexService) embedAll(ctx context.Context, chunks []string) []*embedOutcome {
	outcomes := make([]*embedOutcome, len(chunks))
	for i := range outcomes {
		outcomes[i] = &embedOutcome{done: make(chan struct{})}
	}

	limit := s.cfg.EmbedConcurrency
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	// Go blocks once the limit is reached, so launch from a separate
	// goroutine and let the caller insert as results arrive.
	go func() {
		for i, chunk := range chunks {
			out := outcomes[i]
			if err := ctx.Err(); err != nil {
				out.err = err
				close(out.done)
				continue
			}
			g.Go(func() error {
				defer close(out.done)
				out.vec, out.err = s.embed(ctx, chunk)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return outcomes
}

// embed embeds one chunk under the configured timeout and maps failures to
// domain errors. Cancellation of ctx itself is returned unchanged.
func (s *IndexService) embed(ctx context.Context, text string) ([]float32, error) {
	return embedText(ctx, s.embedder, text, s.cfg.EmbeddingTimeout)
}

// embedText is shared by indexing and query embedding.
func embedText(
	ctx context.Context, embedder driven.EmbeddingService, text string, timeout time.Duration,
) ([]float32, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}

	embedCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	vec, err := embedder.Embed(embedCtx, text)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded) || embedCtx.Err() != nil:
			return nil, fmt.Errorf("%w after %s", domain.ErrEmbeddingTimeout, timeout)
		case errors.Is(err, domain.ErrEmbeddingUnavailable):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", domain.ErrEmbeddingUnavailable)
	}
	return vec, nil
}

// isCancellation reports whether err stems from ctx being done.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// Delete removes a single document by ID.
func (s *IndexService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	s.refreshStats(ctx)
	return nil
}

// DeleteWhere removes all documents matching the filter.
// An empty filter is rejected; name every source to clear the index.
func (s *IndexService) DeleteWhere(ctx context.Context, filter domain.Filter) (int, error) {
	if filter.IsZero() {
		return 0, fmt.Errorf("%w: refusing to delete with an empty filter", domain.ErrInvalidInput)
	}

	n, err := s.store.DeleteByFilter(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	logger.Info("Deleted %d documents", n)

	if n > 0 {
		s.refreshStats(ctx)
	}
	return n, nil
}

// Stats returns the most recently computed index statistics.
func (s *IndexService) Stats() domain.IndexStats {
	return s.stats.get()
}

// RefreshStats recomputes statistics from the store.
func (s *IndexService) RefreshStats(ctx context.Context) error {
	return s.stats.recompute(ctx, s.store, s.now())
}

// refreshStats recomputes statistics, logging rather than returning failures.
func (s *IndexService) refreshStats(ctx context.Context) {
	if err := s.RefreshStats(ctx); err != nil {
		logger.Warn("Stats refresh failed: %v", err)
	}
}
