package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// SearchChangedMsg is sent whenever the search text changes
type SearchChangedMsg struct {
	Query string
}

// CloseSearchMsg is sent when the search box should close
type CloseSearchMsg struct{}

// SearchInput is the free-text search box. Rows are filtered as you type.
type SearchInput struct {
	Input textinput.Model
	Theme theme.Theme
	Width int
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Search all fields..."
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input: ti,
		Theme: th,
	}
}

// Open focuses the input with the current search text
func (s *SearchInput) Open(current string) tea.Cmd {
	s.Input.SetValue(current)
	s.Input.CursorEnd()
	return s.Input.Focus()
}

// Value returns the typed text
func (s *SearchInput) Value() string {
	return s.Input.Value()
}

// Reset clears the search input
func (s *SearchInput) Reset() {
	s.Input.SetValue("")
	s.Input.Blur()
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			s.Input.Blur()
			return s, func() tea.Msg { return CloseSearchMsg{} }
		case "esc":
			s.Reset()
			return s, tea.Batch(
				func() tea.Msg { return SearchChangedMsg{Query: ""} },
				func() tea.Msg { return CloseSearchMsg{} },
			)
		}
	}

	before := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)

	if after := s.Input.Value(); after != before {
		changed := func() tea.Msg { return SearchChangedMsg{Query: after} }
		return s, tea.Batch(cmd, changed)
	}
	return s, cmd
}

// View renders the search input
func (s *SearchInput) View() string {
	inputWidth := s.Width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.Input.Width = inputWidth

	labelStyle := lipgloss.NewStyle().
		Foreground(s.Theme.Info).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Theme.BorderFocused).
		Padding(0, 1).
		Width(s.Width)

	helpStyle := lipgloss.NewStyle().
		Foreground(s.Theme.Muted).
		Italic(true)

	content := labelStyle.Render("Search") + " " + s.Input.View()
	helpText := helpStyle.Render("Enter: keep │ Esc: clear")

	return boxStyle.Render(content + "\n" + helpText)
}
