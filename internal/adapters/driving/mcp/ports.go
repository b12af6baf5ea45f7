package mcp

import (
	"errors"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports holds the services the server drives.
type Ports struct {
	Search  driving.SearchService
	Context driving.ContextService

	// Index is optional; without it the server is read-only.
	Index driving.IndexService
}

// Validate reports every missing required port.
func (p *Ports) Validate() error {
	var errs []error
	if p.Search == nil {
		errs = append(errs, ErrMissingSearchService)
	}
	if p.Context == nil {
		errs = append(errs, ErrMissingContextService)
	}
	return errors.Join(errs...)
}
