// Package output provides styling and table rendering for terminal output.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Styles provides styled output helpers for the CLI. Styling is disabled
// when the writer is not a terminal.
type Styles struct {
	enabled bool

	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
	path    lipgloss.Style
	account lipgloss.Style
	amount  lipgloss.Style
	keyword lipgloss.Style
	dim     lipgloss.Style
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		enabled: isTerminal(w),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		path:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		account: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		amount:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		keyword: lipgloss.NewStyle().Bold(true),
		dim:     lipgloss.NewStyle().Faint(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (s *Styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.render(s.success, text)
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.render(s.failure, text)
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.render(s.warning, text)
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.render(s.path, text)
}

// Account returns a styled account name (yellow).
func (s *Styles) Account(text string) string {
	return s.render(s.account, text)
}

// Amount returns a styled amount (magenta).
func (s *Styles) Amount(text string) string {
	return s.render(s.amount, text)
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.render(s.keyword, text)
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.render(s.dim, text)
}
