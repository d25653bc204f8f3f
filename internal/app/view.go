package app

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/ui/components"
	"github.com/rebeliceyang/lazylist/internal/ui/help"
)

// View implements tea.Model
func (a *App) View() string {
	// If error overlay is showing, render it centered on top of everything
	if a.showError {
		return a.centered(a.errorOverlay.View())
	}

	switch a.state.ViewMode {
	case models.HelpMode:
		return help.Render(a.state.Width, a.state.Height, a.theme)
	case models.FilterMode:
		return a.centered(a.filterPanel.View())
	case models.ColumnsMode:
		return a.centered(a.columns.View())
	case models.SavedFiltersMode:
		return a.centered(a.savedDialog.View())
	case models.SaveFilterPromptMode:
		return a.centered(a.savePrompt.View())
	case models.RowDetailMode:
		return a.centered(a.rowDetail.View())
	}

	return a.renderNormalView()
}

func (a *App) centered(content string) string {
	return lipgloss.Place(
		a.state.Width, a.state.Height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}

// renderNormalView renders the list with its bars
func (a *App) renderNormalView() string {
	a.updateDimensions()

	title := a.state.Module
	if a.view != nil && a.view.Title != "" {
		title = a.view.Title
	}

	topBarRight := "? help"
	if a.loading {
		topBarRight = "loading…"
	}
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Background).
		Padding(0, 2).
		Render(a.formatStatusBar("lazylist · "+title, topBarRight))

	sections := []string{topBar}
	if tabs := a.tabs.RenderTabBar(a.state.Width); tabs != "" {
		sections = append(sections, tabs)
	}
	if bar := a.filterBar(); bar != "" {
		sections = append(sections, bar)
	}
	if a.state.ViewMode == models.SearchMode {
		sections = append(sections, a.search.View())
	}

	a.table.Width = a.panel.Width
	a.table.Height = a.panel.Height - 1
	a.panel.Title = title
	a.panel.Content = a.table.View()
	sections = append(sections, a.panel.View())

	sections = append(sections, a.bottomBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) filterBar() string {
	if a.view == nil {
		return ""
	}
	e := a.view.Engine
	return components.FilterBar{
		Theme:        a.theme,
		Width:        a.state.Width,
		Search:       e.Search(),
		QuickFilters: e.QuickFilters(),
		ActiveQuick:  e.ActiveQuickFilter(),
		Fields:       e.FilterFields(),
		Filters:      e.ActiveFilters(),
		Logic:        e.FilterLogic(),
	}.View()
}

func (a *App) bottomBar() string {
	style := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2)

	left := "[/] search  [f] filters  [c] columns  [e] export  [q] quit"
	right := ""
	if a.view != nil {
		e := a.view.Engine
		right = fmt.Sprintf("%d/%d rows", e.FilteredCount(), e.TotalCount())
		if n := e.ActiveFilterCount(); n > 0 {
			right = fmt.Sprintf("%d filters %s · %s", n, e.FilterLogic(), right)
		}
	}
	if a.state.Notice != "" {
		left = a.state.Notice
	}
	return style.Render(a.formatStatusBar(left, right))
}

// updateDimensions sizes the table panel from the window and the bars
// currently shown
func (a *App) updateDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// top bar and bottom bar
	reserved := 2
	if a.tabs.TabCount() > 1 {
		reserved++
	}
	if bar := a.filterBar(); bar != "" {
		reserved += lipgloss.Height(bar)
	}
	if a.state.ViewMode == models.SearchMode {
		a.search.Width = a.state.Width - 4
		reserved += lipgloss.Height(a.search.View())
	}

	// Each panel has a border: 2 lines and 2 columns
	height := a.state.Height - reserved - 2
	if height < 3 {
		height = 3
	}
	width := a.state.Width - 2
	if width < 20 {
		width = 20
	}

	a.panel.Width = width
	a.panel.Height = height

	dialogWidth := width - 10
	if dialogWidth > 90 {
		dialogWidth = 90
	}
	if dialogWidth < 40 {
		dialogWidth = 40
	}
	dialogHeight := a.state.Height - 4
	if dialogHeight < 10 {
		dialogHeight = 10
	}

	a.filterPanel.Width, a.filterPanel.Height = dialogWidth, dialogHeight
	a.columns.Width, a.columns.Height = dialogWidth, dialogHeight
	a.savedDialog.Width, a.savedDialog.Height = dialogWidth, dialogHeight
	a.savePrompt.Width = dialogWidth
	a.rowDetail.Width, a.rowDetail.MaxHeight = dialogWidth, dialogHeight
	a.errorOverlay.Width = dialogWidth
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	available := a.state.Width - 4
	if available < 0 {
		available = 0
	}

	leftWidth := runewidth.StringWidth(left)
	rightWidth := runewidth.StringWidth(right)

	if leftWidth+rightWidth+1 > available {
		room := available - rightWidth - 1
		if room <= 0 {
			return runewidth.Truncate(left, available, "…")
		}
		left = runewidth.Truncate(left, room, "…")
		leftWidth = runewidth.StringWidth(left)
	}

	spacing := available - leftWidth - rightWidth
	if spacing < 1 {
		spacing = 1
	}
	return left + runewidth.FillRight("", spacing) + right
}
