package driven

// Normaliser turns the bytes of a file into indexable text.
// Each normaliser handles a fixed set of file extensions.
type Normaliser interface {
	// Extensions returns the lower-case extensions handled, including the dot.
	Extensions() []string

	// Normalise extracts the title and searchable text of the named file.
	// Title is empty when the content does not carry one.
	Normalise(name string, content []byte) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	Title       string
	Content     string
	ContentType string
}
