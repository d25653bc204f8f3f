package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc/Enter", "Dismiss error"},
		{"Tab, Shift+Tab", "Next / previous view"},
		{"r, F5", "Reload rows"},
	}
}

// GetNavigationKeys returns navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"Ctrl+U, Ctrl+D", "Page up / down"},
		{"g, G", "First / last row"},
		{"Enter", "Open row"},
	}
}

// GetFilterKeys returns search and filter key bindings
func GetFilterKeys() []KeyBinding {
	return []KeyBinding{
		{"/", "Search all fields"},
		{"f", "Open filter panel"},
		{"o", "Toggle AND / OR"},
		{"1-9", "Apply quick filter"},
		{"x", "Clear filters"},
		{"w", "Save current filters"},
		{"F", "Saved filters"},
	}
}

// GetListKeys returns column, selection and export key bindings
func GetListKeys() []KeyBinding {
	return []KeyBinding{
		{"c", "Column manager"},
		{"s", "Sort by column (asc, desc, off)"},
		{"<, >", "Choose sort column"},
		{"Space", "Toggle row selection"},
		{"a", "Select / clear all filtered rows"},
		{"y", "Copy selected rows"},
		{"e", "Export filtered rows"},
	}
}

// Sections returns every help section in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Search & Filters", GetFilterKeys()},
		{"Columns, Selection & Export", GetListKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazylist - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(width - 4).
		Height(height - 4)

	return boxStyle.Render(b.String())
}
