package domain

import (
	"fmt"
	"strings"
)

// SourceKind identifies where indexed content originated.
// The set is closed; every kind has a fixed label, icon and priority.
type SourceKind string

// Available source kinds, in their canonical order.
const (
	SourceChatMessage   SourceKind = "chat_message"
	SourceTheme         SourceKind = "theme"
	SourceContextNode   SourceKind = "context_node"
	SourceFile          SourceKind = "file"
	SourceVaultFile     SourceKind = "vault_file"
	SourceWorkflow      SourceKind = "workflow"
	SourceTask          SourceKind = "task"
	SourceDocument      SourceKind = "document"
	SourceSpreadsheet   SourceKind = "spreadsheet"
	SourceCodeFile      SourceKind = "code_file"
	SourceDatasetColumn SourceKind = "dataset_column"
	SourceTeamMessage   SourceKind = "team_message"
)

// MaxSourcePriority is the upper bound of SourceKind.Priority.
const MaxSourcePriority = 10

type sourceKindInfo struct {
	kind     SourceKind
	label    string
	icon     string
	priority int
}

// sourceKinds is ordered; the order drives context section ordering and
// primary-source tie-breaking.
var sourceKinds = [...]sourceKindInfo{
	{SourceChatMessage, "Chat Messages", "bubble.left.and.bubble.right", 10},
	{SourceTheme, "Themes", "tag", 5},
	{SourceContextNode, "Context", "point.3.connected.trianglepath.dotted", 8},
	{SourceFile, "Files", "doc", 7},
	{SourceVaultFile, "Vault Files", "lock.doc", 7},
	{SourceWorkflow, "Workflows", "flowchart", 6},
	{SourceTask, "Tasks", "checklist", 6},
	{SourceDocument, "Documents", "doc.richtext", 7},
	{SourceSpreadsheet, "Spreadsheets", "tablecells", 5},
	{SourceCodeFile, "Code", "chevron.left.forwardslash.chevron.right", 6},
	{SourceDatasetColumn, "Dataset Columns", "chart.bar.doc.horizontal", 4},
	{SourceTeamMessage, "Team Messages", "person.3", 9},
}

func (k SourceKind) info() (sourceKindInfo, bool) {
	for _, info := range sourceKinds {
		if info.kind == k {
			return info, true
		}
	}
	return sourceKindInfo{}, false
}

// AllSourceKinds returns every source kind in canonical order.
func AllSourceKinds() []SourceKind {
	kinds := make([]SourceKind, len(sourceKinds))
	for i, info := range sourceKinds {
		kinds[i] = info.kind
	}
	return kinds
}

// IsValid returns true if the kind is part of the enumeration.
func (k SourceKind) IsValid() bool {
	_, ok := k.info()
	return ok
}

// Label returns the display label, or "Unknown" for invalid kinds.
func (k SourceKind) Label() string {
	if info, ok := k.info(); ok {
		return info.label
	}
	return unknownDescription
}

// Icon returns an opaque icon reference for UI layers.
func (k SourceKind) Icon() string {
	info, _ := k.info()
	return info.icon
}

// Priority returns the ranking priority in [0, MaxSourcePriority].
// Invalid kinds have priority 0.
func (k SourceKind) Priority() int {
	info, _ := k.info()
	return info.priority
}

// Ordinal returns the kind's position in the canonical order, or -1.
func (k SourceKind) Ordinal() int {
	for i, info := range sourceKinds {
		if info.kind == k {
			return i
		}
	}
	return -1
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// ParseSourceKind converts user input (case-insensitive, "-" or "_") to a kind.
func ParseSourceKind(s string) (SourceKind, error) {
	k := SourceKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, s)
	}
	return k, nil
}

// ParseSourceKinds parses a list of kinds, failing on the first unknown one.
func ParseSourceKinds(values []string) ([]SourceKind, error) {
	if len(values) == 0 {
		return nil, nil
	}
	kinds := make([]SourceKind, 0, len(values))
	for _, v := range values {
		k, err := ParseSourceKind(v)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
