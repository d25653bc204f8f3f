package listview

import "github.com/rebeliceyang/lazylist/internal/models"

func (e *Engine) configureSelection(sel Selection) {
	mode := sel.Mode
	if mode == SelectionAuto {
		mode = SelectionInternal
		if sel.Rows != nil {
			mode = SelectionExternal
		}
	}
	e.selectionMode = mode
	e.external = sel.Rows
}

// SelectionMode reports who owns the selection
func (e *Engine) SelectionMode() SelectionMode {
	return e.selectionMode
}

// SetExternalSelection updates the caller-owned selection
func (e *Engine) SetExternalSelection(ids []string) {
	e.external = ids
}

// SelectedIDs returns the current selection
func (e *Engine) SelectedIDs() []string {
	if e.selectionMode == SelectionExternal {
		return append([]string{}, e.external...)
	}
	return append([]string{}, e.selected...)
}

// SelectedRows returns the selected rows in data order
func (e *Engine) SelectedRows() []models.Row {
	ids := e.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var out []models.Row
	for _, row := range e.data {
		if set[row.ID()] {
			out = append(out, row)
		}
	}
	return out
}

// IsSelected reports whether id is selected
func (e *Engine) IsSelected(id string) bool {
	return indexOf(e.currentSelection(), id) >= 0
}

func (e *Engine) currentSelection() []string {
	if e.selectionMode == SelectionExternal {
		return e.external
	}
	return e.selected
}

// setSelection applies a new selection, routing it to the caller in external mode
func (e *Engine) setSelection(ids []string) {
	if e.selectionMode == SelectionExternal {
		if e.onSelectAll != nil {
			e.onSelectAll(ids)
		}
		return
	}
	e.selected = ids
}

// SelectAll selects the ids of every currently filtered row
func (e *Engine) SelectAll() error {
	if !e.features.BulkActions {
		return ErrFeatureDisabled
	}
	rows := e.Rows()
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID()
	}
	e.setSelection(ids)
	return nil
}

// ClearSelection empties the selection
func (e *Engine) ClearSelection() {
	e.setSelection([]string{})
}

// AllSelected reports whether every filtered row is selected
func (e *Engine) AllSelected() bool {
	rows := e.filtered()
	if len(rows) == 0 {
		return false
	}
	current := e.currentSelection()
	for _, row := range rows {
		if indexOf(current, row.ID()) < 0 {
			return false
		}
	}
	return true
}

// ToggleSelectAll clears the selection when every filtered row is selected,
// otherwise selects them all
func (e *Engine) ToggleSelectAll() error {
	if !e.features.BulkActions {
		return ErrFeatureDisabled
	}
	if e.AllSelected() {
		e.ClearSelection()
		return nil
	}
	return e.SelectAll()
}

// ToggleRow adds or removes a single row from the selection
func (e *Engine) ToggleRow(id string) error {
	if !e.features.BulkActions {
		return ErrFeatureDisabled
	}
	if _, ok := e.rowsByID[id]; !ok {
		return ErrUnknownRow
	}

	current := e.currentSelection()
	next := make([]string, 0, len(current)+1)
	found := false
	for _, existing := range current {
		if existing == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, id)
	}
	e.setSelection(next)
	return nil
}
