package listview

import (
	"fmt"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// ColumnState is a column with its current preferences
type ColumnState struct {
	models.Column
	Visible bool
	Width   string
}

func (e *Engine) loadColumnState() {
	state := e.store.Load(e.module)
	if state.Visibility == nil {
		state.Visibility = map[string]bool{}
	}
	if state.Widths == nil {
		state.Widths = map[string]string{}
	}
	e.view = state
}

// order is the persisted order restricted to known columns, followed by any
// columns the persisted order does not mention
func (e *Engine) order() []string {
	known := make(map[string]bool, len(e.columns))
	for _, c := range e.columns {
		known[c.Key] = true
	}

	out := make([]string, 0, len(e.columns))
	seen := make(map[string]bool, len(e.columns))
	for _, key := range e.view.Order {
		if known[key] && !seen[key] {
			out = append(out, key)
			seen[key] = true
		}
	}
	for _, c := range e.columns {
		if !seen[c.Key] {
			out = append(out, c.Key)
		}
	}
	return out
}

func (e *Engine) column(key string) (models.Column, bool) {
	for _, c := range e.columns {
		if c.Key == key {
			return c, true
		}
	}
	return models.Column{}, false
}

// AllColumns returns every column in display order, hidden ones included
func (e *Engine) AllColumns() []ColumnState {
	keys := e.order()
	out := make([]ColumnState, 0, len(keys))
	for _, key := range keys {
		col, _ := e.column(key)
		out = append(out, ColumnState{
			Column:  col,
			Visible: e.view.IsVisible(key),
			Width:   e.view.Widths[key],
		})
	}
	return out
}

// OrderedColumns returns the visible columns in display order
func (e *Engine) OrderedColumns() []models.Column {
	var out []models.Column
	for _, state := range e.AllColumns() {
		if state.Visible {
			out = append(out, state.Column)
		}
	}
	return out
}

// ColumnView returns a copy of the column preferences
func (e *Engine) ColumnView() models.ColumnViewState {
	return e.view.Clone()
}

// IsColumnVisible treats a column without a preference as visible
func (e *Engine) IsColumnVisible(key string) bool {
	return e.view.IsVisible(key)
}

// ColumnWidth returns the stored width hint for key, if any
func (e *Engine) ColumnWidth(key string) string {
	return e.view.Widths[key]
}

// ToggleColumn flips a column's visibility
func (e *Engine) ToggleColumn(key string) error {
	if _, ok := e.column(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	e.view.Visibility[key] = !e.view.IsVisible(key)
	return e.persist()
}

// SetColumnVisible sets a column's visibility explicitly
func (e *Engine) SetColumnVisible(key string, visible bool) error {
	if _, ok := e.column(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	e.view.Visibility[key] = visible
	return e.persist()
}

// ShowAllColumns makes every column visible
func (e *Engine) ShowAllColumns() error {
	for _, c := range e.columns {
		e.view.Visibility[c.Key] = true
	}
	return e.persist()
}

// SetColumnWidth stores a width hint such as "200px"; empty clears it
func (e *Engine) SetColumnWidth(key, width string) error {
	if _, ok := e.column(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if width == "" {
		delete(e.view.Widths, key)
	} else {
		e.view.Widths[key] = width
	}
	return e.persist()
}

// MoveColumnUp swaps key with its predecessor in the order
func (e *Engine) MoveColumnUp(key string) error {
	return e.moveColumn(key, -1)
}

// MoveColumnDown swaps key with its successor in the order
func (e *Engine) MoveColumnDown(key string) error {
	return e.moveColumn(key, 1)
}

func (e *Engine) moveColumn(key string, delta int) error {
	order := e.order()
	idx := indexOf(order, key)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	target := idx + delta
	if target < 0 || target >= len(order) {
		return nil
	}
	order[idx], order[target] = order[target], order[idx]
	e.view.Order = order
	return e.persist()
}

// BeginDrag records the column being dragged
func (e *Engine) BeginDrag(key string) error {
	if _, ok := e.column(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	e.dragging = key
	return nil
}

// Dragging returns the dragged column key, or ""
func (e *Engine) Dragging() string {
	return e.dragging
}

// CancelDrag abandons a drag without changing the order
func (e *Engine) CancelDrag() {
	e.dragging = ""
}

// DropOn moves the dragged column to the target's position.
// Without an active drag it does nothing.
func (e *Engine) DropOn(target string) error {
	if e.dragging == "" {
		return nil
	}
	dragged := e.dragging
	e.dragging = ""

	if _, ok := e.column(target); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, target)
	}
	if dragged == target {
		return nil
	}

	e.view.Order = Reorder(e.order(), dragged, target)
	return e.persist()
}

// ResetColumns restores the caller's order with every column visible
func (e *Engine) ResetColumns() error {
	e.view = models.ColumnViewState{
		Visibility: map[string]bool{},
		Order:      models.ColumnKeys(e.columns),
		Widths:     map[string]string{},
	}
	e.dragging = ""
	return e.persist()
}

// SetColumnView replaces the column preferences. Every key it names must be
// a known column; nothing changes otherwise.
func (e *Engine) SetColumnView(state models.ColumnViewState) error {
	for _, keys := range [][]string{state.Order, mapKeys(state.Visibility), mapKeys(state.Widths)} {
		for _, key := range keys {
			if _, ok := e.column(key); !ok {
				return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
			}
		}
	}

	e.view = state.Clone()
	e.dragging = ""
	return e.persist()
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// persist writes column preferences through to the store. A failed write
// is logged and returned; the in-memory state keeps the change.
func (e *Engine) persist() error {
	if err := e.store.Save(e.module, e.view.Clone()); err != nil {
		e.logger.Warn().Err(err).Msg("failed to persist column preferences")
		return err
	}
	return nil
}

// Reorder removes dragged from order and inserts it at target's original index.
// order is not modified. Unknown keys or dragged == target return a copy of order.
func Reorder(order []string, dragged, target string) []string {
	out := append([]string{}, order...)
	from := indexOf(order, dragged)
	to := indexOf(order, target)
	if from < 0 || to < 0 || from == to {
		return out
	}

	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{dragged}, out[to:]...)...)
	return out
}

func indexOf(list []string, s string) int {
	for i, item := range list {
		if item == s {
			return i
		}
	}
	return -1
}
