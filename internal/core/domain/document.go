package domain

import "time"

// Document is a single indexed unit: one chunk of content plus its embedding.
// Identity, content, embedding and CreatedAt never change after creation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Content is the text that was embedded.
	Content string

	// Embedding is the vector representation of Content.
	// Its length is fixed per store (see DocumentStore.Dimensions).
	Embedding []float32

	// Source identifies where the content came from.
	Source SourceKind

	// Metadata holds foreign keys and descriptive attributes.
	Metadata Metadata

	// CreatedAt is when the document was indexed.
	CreatedAt time.Time

	// LastAccessedAt is updated whenever the document is returned by a search.
	LastAccessedAt time.Time
}

// Title returns the metadata title, falling back to the source label.
func (d *Document) Title() string {
	if d.Metadata.Title != "" {
		return d.Metadata.Title
	}
	return d.Source.Label()
}

// Metadata describes a document's origin. Empty strings mean "not set".
type Metadata struct {
	ConversationID string `json:"conversation_id,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	FileID         string `json:"file_id,omitempty"`
	WorkflowID     string `json:"workflow_id,omitempty"`
	TaskID         string `json:"task_id,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
	TeamID         string `json:"team_id,omitempty"`

	// Title is the human-readable title shown in results and context blocks.
	Title string `json:"title,omitempty"`

	// ContentType is a free-form type hint such as "text/markdown".
	ContentType string `json:"content_type,omitempty"`

	// Chunk is set only when the original content was split.
	Chunk *ChunkPosition `json:"chunk,omitempty"`

	// Tags are user or system assigned labels.
	Tags []string `json:"tags,omitempty"`

	// Protected marks content that came from an access-controlled store.
	Protected bool `json:"protected,omitempty"`
}

// ChunkPosition records where a chunk sits within its original content.
type ChunkPosition struct {
	// Index is the zero-based ordinal of the chunk.
	Index int `json:"index"`

	// Total is the number of chunks the content was split into.
	Total int `json:"total"`
}

// Clone returns a deep copy so callers can mutate the result safely.
func (m Metadata) Clone() Metadata {
	out := m
	if m.Chunk != nil {
		pos := *m.Chunk
		out.Chunk = &pos
	}
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	return out
}
