package domain

import "slices"

// Filter selects documents by source and metadata.
// Zero-valued fields do not constrain the match.
type Filter struct {
	// Sources restricts to these kinds. Nil means all.
	Sources []SourceKind

	ConversationID string
	SessionID      string
	MessageID      string
	FileID         string
	WorkflowID     string
	TaskID         string
	DocumentID     string
	TeamID         string

	// Protected controls protected-content handling.
	Protected ProtectedFilter

	// IDs restricts to these document ids. Nil means all.
	IDs []string

	// ExcludeIDs never match. They do not make a filter non-zero.
	ExcludeIDs []string
}

// IsZero reports whether the filter matches every document.
func (f *Filter) IsZero() bool {
	return len(f.Sources) == 0 &&
		f.ConversationID == "" && f.SessionID == "" && f.MessageID == "" &&
		f.FileID == "" && f.WorkflowID == "" && f.TaskID == "" &&
		f.DocumentID == "" && f.TeamID == "" &&
		f.Protected == ProtectedInclude && len(f.IDs) == 0
}

// Matches reports whether the document satisfies every set constraint.
func (f *Filter) Matches(doc *Document) bool {
	if len(f.Sources) > 0 && !slices.Contains(f.Sources, doc.Source) {
		return false
	}
	if !f.Protected.Allows(doc.Metadata.Protected) {
		return false
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, doc.ID) {
		return false
	}
	if slices.Contains(f.ExcludeIDs, doc.ID) {
		return false
	}

	m := &doc.Metadata
	return matchKey(f.ConversationID, m.ConversationID) &&
		matchKey(f.SessionID, m.SessionID) &&
		matchKey(f.MessageID, m.MessageID) &&
		matchKey(f.FileID, m.FileID) &&
		matchKey(f.WorkflowID, m.WorkflowID) &&
		matchKey(f.TaskID, m.TaskID) &&
		matchKey(f.DocumentID, m.DocumentID) &&
		matchKey(f.TeamID, m.TeamID)
}

func matchKey(want, got string) bool {
	return want == "" || want == got
}
