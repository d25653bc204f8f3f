package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/ui/theme"
)

// FilterBar summarizes the search text, quick filters and active criteria
type FilterBar struct {
	Theme theme.Theme
	Width int

	Search       string
	QuickFilters []models.QuickFilter
	ActiveQuick  string
	Fields       []models.FilterField
	Filters      models.FilterSet
	Logic        models.FilterLogic
}

// View renders the bar; it is empty when there is nothing to show
func (fb FilterBar) View() string {
	var lines []string

	if len(fb.QuickFilters) > 0 {
		var chips []string
		for i, qf := range fb.QuickFilters {
			label := qf.Label
			if i < 9 {
				label = fmt.Sprintf("%d %s", i+1, qf.Label)
			}
			style := lipgloss.NewStyle().Padding(0, 1).Foreground(fb.Theme.QuickFilter)
			if qf.Label == fb.ActiveQuick {
				style = style.Foreground(fb.Theme.Background).Background(fb.Theme.QuickFilterOn).Bold(true)
			}
			chips = append(chips, style.Render(label))
		}
		lines = append(lines, strings.Join(chips, " "))
	}

	var parts []string
	if fb.Search != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(fb.Theme.Info).Render(fmt.Sprintf("search %q", fb.Search)))
	}

	keys := fb.Filters.Active()
	if len(keys) > 0 {
		chipStyle := lipgloss.NewStyle().Foreground(fb.Theme.FilterChip)
		var chips []string
		for _, k := range keys {
			chips = append(chips, chipStyle.Render(fb.label(k)+": "+fb.Filters[k].String()))
		}
		sep := lipgloss.NewStyle().Foreground(fb.Theme.LogicIndicator).Bold(true).
			Render(" " + string(fb.Logic) + " ")
		parts = append(parts, strings.Join(chips, sep))
	}

	if len(parts) > 0 {
		lines = append(lines, strings.Join(parts, "  │  "))
	}

	if len(lines) == 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(fb.Width).Render(strings.Join(lines, "\n"))
}

func (fb FilterBar) label(key string) string {
	for _, f := range fb.Fields {
		if f.Key == key && f.Label != "" {
			return f.Label
		}
	}
	return key
}
