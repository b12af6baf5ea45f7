// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultMaxChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits content into fixed-size, overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Invalid sizes are reported by Split, not silently corrected.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// FromConfig creates a processor using the config's chunk size and overlap.
func FromConfig(cfg domain.Config) *Processor {
	return New(WithChunkSize(cfg.MaxChunkSize), WithOverlap(cfg.ChunkOverlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Split splits content using the processor's size and overlap.
func (p *Processor) Split(content string) ([]string, error) {
	return Split(content, p.chunkSize, p.overlap)
}

// Split cuts content into windows of at most maxSize characters, each
// starting maxSize-overlap characters after the previous one. The last
// chunk always ends at the end of content. Content no longer than maxSize
// is returned as a single chunk, even when empty.
func Split(content string, maxSize, overlap int) ([]string, error) {
	if maxSize <= 0 || overlap < 0 || overlap >= maxSize {
		return nil, fmt.Errorf("%w: chunk size %d must exceed overlap %d >= 0",
			domain.ErrInvalidConfiguration, maxSize, overlap)
	}

	runes := []rune(content)
	contentLen := len(runes)
	if contentLen <= maxSize {
		return []string{content}, nil
	}

	step := maxSize - overlap
	chunks := make([]string, 0, (contentLen-overlap+step-1)/step)

	for start := 0; ; start += step {
		end := start + maxSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, string(runes[start:end]))

		if end == contentLen {
			break
		}
	}

	return chunks, nil
}
