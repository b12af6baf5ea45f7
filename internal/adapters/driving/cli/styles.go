package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Colour palette shared by command output.
var (
	colourPrimary   = lipgloss.Color("#7C3AED") // Purple
	colourSecondary = lipgloss.Color("#06B6D4") // Cyan
	colourMuted     = lipgloss.Color("#6C7086") // Medium gray
	colourSuccess   = lipgloss.Color("#A6E3A1") // Green
	colourWarning   = lipgloss.Color("#F9E2AF") // Yellow
	colourError     = lipgloss.Color("#F38BA8") // Red
)

// styles renders command output, with colour only on a terminal.
type styles struct {
	enabled bool

	title    lipgloss.Style
	subtitle lipgloss.Style
	muted    lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	failure  lipgloss.Style
}

// newStyles returns styles for w. Colour is disabled unless w is a terminal.
func newStyles(w io.Writer) *styles {
	return &styles{
		enabled:  isTerminal(w),
		title:    lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		subtitle: lipgloss.NewStyle().Bold(true).Foreground(colourSecondary),
		muted:    lipgloss.NewStyle().Foreground(colourMuted),
		success:  lipgloss.NewStyle().Foreground(colourSuccess),
		warning:  lipgloss.NewStyle().Foreground(colourWarning),
		failure:  lipgloss.NewStyle().Bold(true).Foreground(colourError),
	}
}

func (s *styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// Title styles a heading.
func (s *styles) Title(text string) string {
	return s.render(s.title, text)
}

// Subtitle styles a secondary heading.
func (s *styles) Subtitle(text string) string {
	return s.render(s.subtitle, text)
}

// Muted styles less important text.
func (s *styles) Muted(text string) string {
	return s.render(s.muted, text)
}

// Success styles a positive outcome.
func (s *styles) Success(text string) string {
	return s.render(s.success, text)
}

// Warning styles a caution.
func (s *styles) Warning(text string) string {
	return s.render(s.warning, text)
}

// Failure styles an error.
func (s *styles) Failure(text string) string {
	return s.render(s.failure, text)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
