// Package mcp serves the local index over the Model Context Protocol.
// Assistants can search, build prompt context, and optionally index content.
package mcp

import "errors"

// Port validation errors.
var (
	ErrMissingSearchService  = errors.New("mcp: search service is required")
	ErrMissingContextService = errors.New("mcp: context service is required")
)
