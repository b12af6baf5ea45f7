// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An indexed chunk of content with its embedding
//   - SourceKind: The closed set of content origins and their ranking priority
//   - SearchQuery / SearchResult: Retrieval input and ranked output
//   - IndexRequest / IndexResult / IndexStats: Indexing input, output and counters
//   - Config: Chunking, ranking and recency parameters for a session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
