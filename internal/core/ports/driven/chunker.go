package driven

// Chunker splits content into ordered, overlapping windows.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Split returns the chunks for content. Content that fits in a single
	// window is returned unchanged as the only chunk.
	Split(content string) ([]string, error)
}
