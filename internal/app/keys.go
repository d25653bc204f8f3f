package app

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/ui/components"
)

// handleKey routes a key to the error overlay, the open dialog or the list
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	a.state.Notice = ""

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.showError {
		switch key {
		case "esc", "enter":
			a.DismissError()
		case "q":
			return a, tea.Quit
		}
		// Consume all other keys when error is showing
		return a, nil
	}

	var cmd tea.Cmd
	switch a.state.ViewMode {
	case models.HelpMode:
		if key == "?" || key == "esc" || key == "q" {
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	case models.SearchMode:
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	case models.FilterMode:
		a.filterPanel, cmd = a.filterPanel.Update(msg)
		return a, cmd
	case models.ColumnsMode:
		a.columns, cmd = a.columns.Update(msg)
		return a, cmd
	case models.SavedFiltersMode:
		a.savedDialog, cmd = a.savedDialog.Update(msg)
		return a, cmd
	case models.SaveFilterPromptMode:
		a.savePrompt, cmd = a.savePrompt.Update(msg)
		return a, cmd
	case models.RowDetailMode:
		a.rowDetail, cmd = a.rowDetail.Update(msg)
		return a, cmd
	}

	return a.handleNormalKey(msg)
}

func (a *App) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.state.ViewMode = models.HelpMode
		return a, nil
	case "tab":
		if next := a.tabs.NextTab(); next != "" && next != a.state.Module {
			return a, a.openView(next)
		}
		return a, nil
	case "shift+tab":
		if prev := a.tabs.PrevTab(); prev != "" && prev != a.state.Module {
			return a, a.openView(prev)
		}
		return a, nil
	case "r", "f5":
		if a.view == nil {
			return a, a.openView(a.state.Module)
		}
		return a, a.reload()
	}

	if a.view == nil || a.loading && len(a.table.Rows) == 0 {
		return a, nil
	}
	e := a.view.Engine

	switch key {
	case "up", "k":
		a.table.MoveSelection(-1)
	case "down", "j":
		a.table.MoveSelection(1)
	case "ctrl+u", "pgup":
		a.table.PageUp()
	case "ctrl+d", "pgdown":
		a.table.PageDown()
	case "g", "home":
		a.table.GotoTop()
	case "G", "end":
		a.table.GotoBottom()

	case "enter":
		return a, a.openRowDetail()

	case "/":
		a.state.ViewMode = models.SearchMode
		return a, a.search.Open(e.Search())

	case "f":
		if !e.Features().Filters {
			a.state.Notice = "Filters are disabled for this view"
			return a, nil
		}
		if len(e.FilterFields()) == 0 {
			a.state.Notice = "No filters configured for this view"
			return a, nil
		}
		a.syncFilterPanel()
		a.state.ViewMode = models.FilterMode

	case "o":
		logic := e.ToggleFilterLogic()
		a.state.Notice = "Filters combine with " + string(logic)
		return a, a.afterFilterChange()

	case "x":
		if e.ActiveFilterCount() == 0 && e.Search() == "" {
			return a, nil
		}
		e.ClearFilters()
		e.SetSearch("")
		a.search.Reset()
		a.state.Notice = "Filters cleared"
		return a, a.afterFilterChange()

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return a, a.toggleQuickFilter(int(key[0] - '1'))

	case "c":
		a.columns.SetColumns(e.AllColumns())
		a.state.ViewMode = models.ColumnsMode

	case " ", "space":
		a.toggleSelection(e.ToggleRow(a.table.SelectedID()))
		if a.table.SelectedRow < len(a.table.Rows)-1 {
			a.table.MoveSelection(1)
		}

	case "a":
		a.toggleSelection(e.ToggleSelectAll())

	case "<", ">":
		cols := e.OrderedColumns()
		if len(cols) == 0 {
			return a, nil
		}
		if key == "<" && a.sortColumn > 0 {
			a.sortColumn--
		}
		if key == ">" && a.sortColumn < len(cols)-1 {
			a.sortColumn++
		}
		a.state.Notice = "Sort column: " + cols[a.sortColumn].Label

	case "s":
		cols := e.OrderedColumns()
		if len(cols) == 0 {
			return a, nil
		}
		e.CycleSort(cols[a.sortColumn].Key)
		return a, a.afterFilterChange()

	case "e":
		a.exportRows()

	case "y":
		return a, a.copySelection()

	case "w":
		if !e.CanSaveFilters() {
			a.state.Notice = "Saved filters are not available"
			return a, nil
		}
		if e.ActiveFilterCount() == 0 {
			a.state.Notice = "No active filters to save"
			return a, nil
		}
		a.state.ViewMode = models.SaveFilterPromptMode
		summary := components.Summary(models.SavedFilter{Filters: e.ActiveFilters(), Logic: e.FilterLogic()})
		return a, a.savePrompt.Open(summary)

	case "F":
		a.savedDialog.SetFilters(e.SavedFilters())
		a.state.ViewMode = models.SavedFiltersMode
	}

	return a, nil
}

// toggleQuickFilter applies the n-th quick filter, or clears it when it is
// already active
func (a *App) toggleQuickFilter(n int) tea.Cmd {
	e := a.view.Engine
	quick := e.QuickFilters()
	if n >= len(quick) {
		return nil
	}

	label := quick[n].Label
	if e.ActiveQuickFilter() == label {
		e.ClearFilters()
		a.state.Notice = label + " off"
		return a.afterFilterChange()
	}

	if err := e.ApplyQuickFilter(label); err != nil {
		a.ShowError("Quick Filter", err.Error())
		return nil
	}
	a.state.Notice = label
	return a.afterFilterChange()
}

func (a *App) toggleSelection(err error) {
	switch {
	case errors.Is(err, listview.ErrFeatureDisabled):
		a.state.Notice = "Selection is disabled for this view"
	case errors.Is(err, listview.ErrUnknownRow):
	case err != nil:
		a.state.Notice = err.Error()
	default:
		if n := len(a.view.Engine.SelectedIDs()); n > 0 {
			a.state.Notice = fmt.Sprintf("%d selected", n)
		}
	}
	a.refreshTable()
}

func (a *App) openRowDetail() tea.Cmd {
	e := a.view.Engine
	id := a.table.SelectedID()
	row, ok := e.Row(id)
	if !ok {
		return nil
	}
	if err := e.ActivateRow(id); err != nil {
		a.ShowError("Open Row", err.Error())
		return nil
	}

	var labels []string
	for _, action := range e.RowActions(id) {
		labels = append(labels, action.Label)
	}
	a.rowDetail.SetRow(row, e.OrderedColumns(), labels)
	a.state.ViewMode = models.RowDetailMode
	return nil
}
