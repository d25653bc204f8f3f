package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// SaveFilterMsg is sent with the name the current filters should be saved under
type SaveFilterMsg struct {
	Name string
}

// CloseSaveFilterPromptMsg is sent when the prompt is cancelled
type CloseSaveFilterPromptMsg struct{}

// SaveFilterPrompt asks for a saved filter name
type SaveFilterPrompt struct {
	Input   textinput.Model
	Theme   theme.Theme
	Width   int
	Summary string
	Error   string
}

// NewSaveFilterPrompt creates the prompt
func NewSaveFilterPrompt(th theme.Theme) *SaveFilterPrompt {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "Filter name"
	ti.CharLimit = 80
	ti.Width = 40

	return &SaveFilterPrompt{Input: ti, Theme: th, Width: 60}
}

// Open resets the prompt and focuses it
func (p *SaveFilterPrompt) Open(summary string) tea.Cmd {
	p.Input.SetValue("")
	p.Summary = summary
	p.Error = ""
	return p.Input.Focus()
}

// Update handles messages
func (p *SaveFilterPrompt) Update(msg tea.Msg) (*SaveFilterPrompt, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.Input.Blur()
			return p, func() tea.Msg { return CloseSaveFilterPromptMsg{} }
		case "enter":
			name := strings.TrimSpace(p.Input.Value())
			if name == "" {
				p.Error = "Name cannot be empty"
				return p, nil
			}
			p.Input.Blur()
			return p, func() tea.Msg { return SaveFilterMsg{Name: name} }
		}
	}

	var cmd tea.Cmd
	p.Input, cmd = p.Input.Update(msg)
	return p, cmd
}

// View renders the prompt
func (p *SaveFilterPrompt) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(p.Theme.Background).
		Background(p.Theme.Info).
		Padding(0, 1).
		Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(p.Theme.Muted).Italic(true)

	sections := []string{
		titleStyle.Render("Save Filter"),
		"",
		"Name: " + p.Input.View(),
	}
	if p.Summary != "" {
		sections = append(sections, mutedStyle.Render(p.Summary))
	}
	if p.Error != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(p.Theme.Error).Render(p.Error))
	}
	sections = append(sections, "", mutedStyle.Render("Enter: save  Esc: cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Theme.BorderFocused).
		Width(p.Width).
		Padding(1).
		Render(strings.Join(sections, "\n"))
}
