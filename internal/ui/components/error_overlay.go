package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// ErrorOverlay shows a blocking error until dismissed
type ErrorOverlay struct {
	Title   string
	Message string
	Width   int
	Theme   theme.Theme
}

// NewErrorOverlay creates an error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Width: 60, Theme: th}
}

// SetError replaces the displayed error
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
}

// View renders the overlay
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Error).
		Bold(true)

	helpStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Muted).
		Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("✗ " + e.Title))
	b.WriteString("\n\n")
	b.WriteString(e.Message)
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Esc/Enter: dismiss"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(b.String())
}
