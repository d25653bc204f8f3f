package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// ApplySavedFilterMsg is sent when a saved filter should be restored
type ApplySavedFilterMsg struct {
	ID string
}

// DeleteSavedFilterMsg is sent when a saved filter should be deleted
type DeleteSavedFilterMsg struct {
	ID string
}

// CloseSavedFiltersDialogMsg is sent when the dialog should close
type CloseSavedFiltersDialogMsg struct{}

// SavedFiltersDialog lists the saved filters of the current view
type SavedFiltersDialog struct {
	Width  int
	Height int
	Theme  theme.Theme

	filters  []models.SavedFilter
	visible  []models.SavedFilter
	selected int
	offset   int

	searching   bool
	searchQuery string
	// confirmDelete is the id awaiting a second "d"
	confirmDelete string
}

// NewSavedFiltersDialog creates a new saved filters dialog
func NewSavedFiltersDialog(th theme.Theme) *SavedFiltersDialog {
	return &SavedFiltersDialog{
		Width:  70,
		Height: 24,
		Theme:  th,
	}
}

// SetFilters updates the listed filters
func (sd *SavedFiltersDialog) SetFilters(filters []models.SavedFilter) {
	sd.filters = filters
	sd.confirmDelete = ""
	sd.applySearch()
}

// Selected returns the filter under the cursor
func (sd *SavedFiltersDialog) Selected() (models.SavedFilter, bool) {
	if sd.selected < 0 || sd.selected >= len(sd.visible) {
		return models.SavedFilter{}, false
	}
	return sd.visible[sd.selected], true
}

func (sd *SavedFiltersDialog) applySearch() {
	query := strings.ToLower(sd.searchQuery)
	sd.visible = sd.visible[:0]
	for _, f := range sd.filters {
		if query == "" || strings.Contains(strings.ToLower(f.Name), query) {
			sd.visible = append(sd.visible, f)
		}
	}
	if sd.selected >= len(sd.visible) {
		sd.selected = len(sd.visible) - 1
	}
	if sd.selected < 0 {
		sd.selected = 0
	}
	if sd.offset > sd.selected {
		sd.offset = sd.selected
	}
}

func (sd *SavedFiltersDialog) listHeight() int {
	h := (sd.Height - 8) / 2
	if h < 1 {
		h = 1
	}
	return h
}

// Update handles keyboard input
func (sd *SavedFiltersDialog) Update(msg tea.KeyMsg) (*SavedFiltersDialog, tea.Cmd) {
	if sd.searching {
		return sd.handleSearchMode(msg)
	}

	key := msg.String()
	if key != "d" {
		sd.confirmDelete = ""
	}

	switch key {
	case "esc", "q", "F":
		return sd, func() tea.Msg { return CloseSavedFiltersDialogMsg{} }
	case "up", "k":
		if sd.selected > 0 {
			sd.selected--
			if sd.selected < sd.offset {
				sd.offset = sd.selected
			}
		}
	case "down", "j":
		if sd.selected < len(sd.visible)-1 {
			sd.selected++
			if sd.selected >= sd.offset+sd.listHeight() {
				sd.offset = sd.selected - sd.listHeight() + 1
			}
		}
	case "/":
		sd.searching = true
	case "enter":
		if f, ok := sd.Selected(); ok {
			id := f.ID
			return sd, func() tea.Msg { return ApplySavedFilterMsg{ID: id} }
		}
	case "d", "x":
		f, ok := sd.Selected()
		if !ok {
			return sd, nil
		}
		if sd.confirmDelete != f.ID {
			sd.confirmDelete = f.ID
			return sd, nil
		}
		sd.confirmDelete = ""
		id := f.ID
		return sd, func() tea.Msg { return DeleteSavedFilterMsg{ID: id} }
	}
	return sd, nil
}

func (sd *SavedFiltersDialog) handleSearchMode(msg tea.KeyMsg) (*SavedFiltersDialog, tea.Cmd) {
	switch msg.String() {
	case "esc":
		sd.searching = false
		sd.searchQuery = ""
	case "enter":
		sd.searching = false
	case "backspace":
		if len(sd.searchQuery) > 0 {
			runes := []rune(sd.searchQuery)
			sd.searchQuery = string(runes[:len(runes)-1])
		}
	default:
		if msg.Type == tea.KeyRunes {
			sd.searchQuery += string(msg.Runes)
		}
	}
	sd.applySearch()
	return sd, nil
}

// Summary renders a saved filter's criteria on one line
func Summary(f models.SavedFilter) string {
	keys := f.Filters.Active()
	if len(keys) == 0 {
		return "(no criteria)"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, f.Filters[k].String())
	}
	logic := f.Logic
	if logic == "" {
		logic = models.LogicAnd
	}
	return strings.Join(parts, " "+strings.ToLower(string(logic))+" ")
}

// View renders the dialog
func (sd *SavedFiltersDialog) View() string {
	var sections []string

	titleStyle := lipgloss.NewStyle().
		Foreground(sd.Theme.Background).
		Background(sd.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Saved Filters"))

	instrStyle := lipgloss.NewStyle().
		Foreground(sd.Theme.Muted).
		Padding(0, 1)
	sections = append(sections, instrStyle.Render("↑↓: Navigate  Enter: Apply  /: Search  d: Delete  Esc: Close"))

	if sd.searching || sd.searchQuery != "" {
		cursor := ""
		if sd.searching {
			cursor = "_"
		}
		sections = append(sections, instrStyle.Render("Search: "+sd.searchQuery+cursor))
	}

	if len(sd.visible) == 0 {
		if len(sd.filters) == 0 {
			sections = append(sections, "\nNo saved filters yet. Press 'w' in the list to save the current filters.")
		} else {
			sections = append(sections, "\nNo saved filters match.")
		}
	} else {
		sections = append(sections, "")
		end := sd.offset + sd.listHeight()
		if end > len(sd.visible) {
			end = len(sd.visible)
		}

		textWidth := sd.Width - 6
		if textWidth < 20 {
			textWidth = 20
		}

		for i := sd.offset; i < end; i++ {
			f := sd.visible[i]
			name := runewidth.Truncate(f.Name, textWidth, "…")
			summary := runewidth.Truncate(Summary(f), textWidth-2, "…")
			line := name + "\n  " + summary
			if sd.confirmDelete == f.ID {
				line += "\n  " + lipgloss.NewStyle().Foreground(sd.Theme.Error).Render("press d again to delete")
			}

			style := lipgloss.NewStyle().Padding(0, 1)
			if i == sd.selected {
				style = style.Background(sd.Theme.Selection).Foreground(sd.Theme.Foreground)
			}
			sections = append(sections, style.Render(line))
		}
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(sd.Theme.BorderFocused).
		Width(sd.Width).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
