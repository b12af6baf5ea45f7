package normalisers

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/html"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.Normaliser = (*Registry)(nil)

// Registry dispatches to the normaliser registered for a file extension.
// Unregistered extensions go to the fallback.
type Registry struct {
	byExt    map[string]driven.Normaliser
	fallback driven.Normaliser
}

// NewRegistry creates a registry with the given fallback.
// A nil fallback means plain text.
func NewRegistry(fallback driven.Normaliser) *Registry {
	if fallback == nil {
		fallback = plaintext.New()
	}
	return &Registry{
		byExt:    make(map[string]driven.Normaliser),
		fallback: fallback,
	}
}

// Default returns a registry for markdown, HTML and plain text files.
func Default() *Registry {
	r := NewRegistry(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(plaintext.New())
	return r
}

// Register maps every extension of n to n. Later registrations win.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.Extensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// For returns the normaliser for name.
func (r *Registry) For(name string) driven.Normaliser {
	if n, ok := r.byExt[strings.ToLower(filepath.Ext(name))]; ok {
		return n
	}
	return r.fallback
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// Normalise normalises content with the normaliser registered for name.
func (r *Registry) Normalise(name string, content []byte) (*driven.NormaliseResult, error) {
	return r.For(name).Normalise(name, content)
}
