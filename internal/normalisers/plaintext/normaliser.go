package plaintext

import (
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ContentType is reported for every file this normaliser handles.
const ContentType = "text/plain"

// Normaliser passes text through unchanged.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{
		".txt", ".text", ".log", ".csv",
		".go", ".py", ".rs", ".java", ".c", ".h", ".cpp", ".rb", ".sh", ".sql",
		".js", ".jsx", ".ts", ".tsx", ".css",
		".json", ".yaml", ".yml", ".toml", ".xml",
	}
}

// Normalise returns content as text. Binary content is rejected.
func (n *Normaliser) Normalise(name string, content []byte) (*driven.NormaliseResult, error) {
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrInvalidInput, name)
	}
	return &driven.NormaliseResult{
		Content:     string(content),
		ContentType: ContentType,
	}, nil
}
