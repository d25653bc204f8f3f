package listview

import (
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// SetSearch sets the free-text search
func (e *Engine) SetSearch(text string) {
	e.search = text
}

// Search returns the current search text
func (e *Engine) Search() string {
	return e.search
}

// ActiveFilters returns a copy of the active filter set
func (e *Engine) ActiveFilters() models.FilterSet {
	return e.filters.Clone()
}

// ActiveFilterCount counts filter keys with a non-empty value
func (e *Engine) ActiveFilterCount() int {
	return len(e.filters.Active())
}

// FilterValue returns the value stored for key
func (e *Engine) FilterValue(key string) (models.FilterValue, bool) {
	v, ok := e.filters[key]
	return v, ok
}

// FilterLogic returns how active filters are combined
func (e *Engine) FilterLogic() models.FilterLogic {
	return e.logic
}

// SetFilterLogic sets how active filters are combined
func (e *Engine) SetFilterLogic(logic models.FilterLogic) {
	if logic != models.LogicOr {
		logic = models.LogicAnd
	}
	e.logic = logic
}

// ToggleFilterLogic flips between AND and OR
func (e *Engine) ToggleFilterLogic() models.FilterLogic {
	if e.logic == models.LogicOr {
		e.logic = models.LogicAnd
	} else {
		e.logic = models.LogicOr
	}
	return e.logic
}

// ActiveQuickFilter returns the label of the applied preset, or ""
func (e *Engine) ActiveQuickFilter() string {
	return e.quick
}

// SetFilter merges a value for key into the set; an empty value removes it.
// The active quick filter stays applied until another one replaces it.
func (e *Engine) SetFilter(key string, v models.FilterValue) {
	if v.IsEmpty() {
		delete(e.filters, key)
	} else {
		if v.Values != nil {
			v.Values = append([]string{}, v.Values...)
		}
		e.filters[key] = v
	}
}

// SetFilterString stores a literal for key shaped by the configured field
func (e *Engine) SetFilterString(key, literal string) {
	field, ok := e.fields[key]
	if !ok {
		field = models.FilterField{Key: key, Type: models.FilterSelect}
	}
	e.SetFilter(key, models.ValueForField(field, literal))
}

// AddFilterValue appends value to a multi-select filter
func (e *Engine) AddFilterValue(key, value string) {
	current := e.filters[key]
	if !current.IsList() {
		current = models.MultiSelectValue()
	}
	if current.Contains(value) {
		return
	}
	current.Values = append(current.Values, value)
	e.SetFilter(key, current)
}

// RemoveFilterValue drops value from a multi-select filter.
// The key is removed once its list is empty.
func (e *Engine) RemoveFilterValue(key, value string) {
	current, ok := e.filters[key]
	if !ok || !current.IsList() {
		return
	}
	values := make([]string, 0, len(current.Values))
	for _, existing := range current.Values {
		if existing != value {
			values = append(values, existing)
		}
	}
	current.Values = values
	e.SetFilter(key, current)
}

// RemoveFilter deletes a single filter key
func (e *Engine) RemoveFilter(key string) {
	delete(e.filters, key)
}

// ClearFilters empties the filter set and the active quick filter
func (e *Engine) ClearFilters() {
	e.filters = models.FilterSet{}
	e.quick = ""
}

// ApplyQuickFilter replaces the filter set with the preset's values
func (e *Engine) ApplyQuickFilter(label string) error {
	var preset *models.QuickFilter
	for i := range e.quickFilters {
		if e.quickFilters[i].Label == label {
			preset = &e.quickFilters[i]
			break
		}
	}
	if preset == nil {
		return fmt.Errorf("%w: %s", ErrUnknownQuickFilter, label)
	}

	next := models.FilterSet{}
	for key, literal := range preset.Filter {
		if literal == models.CurrentUserToken && e.currentUserID != "" {
			literal = e.currentUserID
		}
		field, ok := e.fields[key]
		if !ok {
			field = models.FilterField{Key: key, Type: models.FilterSelect}
		}
		if v := models.ValueForField(field, literal); !v.IsEmpty() {
			next[key] = v
		}
	}

	e.filters = next
	e.quick = preset.Label
	e.logger.Debug().Str("quick", label).Msg("quick filter applied")
	return nil
}

// SavedFilters returns the saved filters belonging to this module
func (e *Engine) SavedFilters() []models.SavedFilter {
	out := make([]models.SavedFilter, 0, len(e.savedFilters))
	for _, sf := range e.savedFilters {
		if sf.Module == "" || sf.Module == e.module {
			out = append(out, sf)
		}
	}
	return out
}

// SetSavedFilters replaces the list supplied by the caller
func (e *Engine) SetSavedFilters(filters []models.SavedFilter) {
	e.savedFilters = append([]models.SavedFilter{}, filters...)
}

// CanSaveFilters reports whether a save handler was supplied
func (e *Engine) CanSaveFilters() bool {
	return e.onSaveFilter != nil
}

// ApplySavedFilter restores a saved filter set and logic
func (e *Engine) ApplySavedFilter(id string) error {
	for _, sf := range e.SavedFilters() {
		if sf.ID != id {
			continue
		}
		e.filters = sf.Filters.Clone()
		e.SetFilterLogic(sf.Logic)
		e.quick = ""
		e.logger.Debug().Str("saved_filter", sf.Name).Msg("saved filter applied")
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownSavedFilter, id)
}

// SaveCurrentFilter hands the current filter set to the caller's save handler.
// The engine does not store filters itself; it only tracks what the handler returns.
func (e *Engine) SaveCurrentFilter(name string) (models.SavedFilter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.SavedFilter{}, ErrEmptyFilterName
	}
	if e.onSaveFilter == nil {
		return models.SavedFilter{}, ErrNoSaveHandler
	}

	saved, err := e.onSaveFilter(models.SavedFilter{
		Name:    name,
		Filters: e.filters.Clone(),
		Logic:   e.logic,
		Module:  e.module,
	})
	if err != nil {
		return models.SavedFilter{}, fmt.Errorf("failed to save filter: %w", err)
	}

	replaced := false
	for i := range e.savedFilters {
		if saved.ID != "" && e.savedFilters[i].ID == saved.ID {
			e.savedFilters[i] = saved
			replaced = true
		}
	}
	if !replaced {
		e.savedFilters = append(e.savedFilters, saved)
	}
	return saved, nil
}

// DeleteSavedFilter dispatches removal to the caller's delete handler
func (e *Engine) DeleteSavedFilter(id string) error {
	if e.onDeleteFilter == nil {
		return ErrNoSaveHandler
	}
	if err := e.onDeleteFilter(id); err != nil {
		return fmt.Errorf("failed to delete filter: %w", err)
	}

	kept := e.savedFilters[:0]
	for _, sf := range e.savedFilters {
		if sf.ID != id {
			kept = append(kept, sf)
		}
	}
	e.savedFilters = kept
	return nil
}
