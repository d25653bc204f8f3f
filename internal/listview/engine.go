// Package listview is the state engine behind a configurable list view.
//
// An Engine owns the search text, the active filter set and its AND/OR logic,
// the active quick filter, column visibility/order/width, row selection and
// sort order. It consumes caller-supplied rows and columns and produces the
// filtered, ordered projection that a table renders or exports. Column
// preferences are written through to a prefs.PreferenceStore on every change.
//
// An Engine is not safe for concurrent use.
package listview

import (
	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/prefs"
)

// Engine is the list view state store
type Engine struct {
	module        string
	columns       []models.Column
	data          []models.Row
	rowsByID      map[string]models.Row
	fields        map[string]models.FilterField
	fieldOrder    []models.FilterField
	quickFilters  []models.QuickFilter
	savedFilters  []models.SavedFilter
	currentUserID string
	features      Features
	logger        zerolog.Logger

	onSaveFilter   func(models.SavedFilter) (models.SavedFilter, error)
	onDeleteFilter func(string) error
	onRowClick     func(models.Row)
	actions        func(models.Row) []RowAction

	// Filter state
	search  string
	filters models.FilterSet
	logic   models.FilterLogic
	quick   string

	// Column state
	store    prefs.PreferenceStore
	view     models.ColumnViewState
	dragging string

	// Selection state
	selectionMode SelectionMode
	external      []string
	onSelectAll   func([]string)
	selected      []string

	sortKey string
	sortDir models.SortDirection
}

// New creates an engine and loads the module's column preferences
func New(opts Options) *Engine {
	module := opts.Module
	if module == "" {
		module = DefaultModule
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	features := DefaultFeatures()
	if opts.Features != nil {
		features = *opts.Features
	}

	store := opts.Store
	if store == nil {
		store = prefs.NewStore(prefs.NewMemoryKV(), logger)
	}

	e := &Engine{
		module:         module,
		columns:        opts.Columns,
		quickFilters:   opts.QuickFilters,
		savedFilters:   append([]models.SavedFilter{}, opts.SavedFilters...),
		currentUserID:  opts.CurrentUserID,
		features:       features,
		logger:         logger.With().Str("component", "listview").Str("module", module).Logger(),
		onSaveFilter:   opts.OnSaveFilter,
		onDeleteFilter: opts.OnDeleteFilter,
		onRowClick:     opts.OnRowClick,
		actions:        opts.Actions,
		filters:        models.FilterSet{},
		logic:          models.LogicAnd,
		store:          store,
		onSelectAll:    opts.Selection.OnSelectAll,
	}

	e.SetFilterFields(opts.FilterFields)
	e.SetData(opts.Data)
	e.configureSelection(opts.Selection)
	e.loadColumnState()

	return e
}

// Module returns the persistence namespace
func (e *Engine) Module() string {
	return e.module
}

// Features returns the enabled feature toggles
func (e *Engine) Features() Features {
	return e.features
}

// SetData replaces the caller's rows
func (e *Engine) SetData(rows []models.Row) {
	e.data = rows
	e.rowsByID = make(map[string]models.Row, len(rows))
	for _, row := range rows {
		e.rowsByID[row.ID()] = row
	}
}

// Data returns the unfiltered rows
func (e *Engine) Data() []models.Row {
	return e.data
}

// Row looks up a row by id
func (e *Engine) Row(id string) (models.Row, bool) {
	row, ok := e.rowsByID[id]
	return row, ok
}

// SetColumns replaces the column set; persisted order and visibility are kept
func (e *Engine) SetColumns(cols []models.Column) {
	e.columns = cols
}

// Columns returns the caller's columns in their original order
func (e *Engine) Columns() []models.Column {
	return e.columns
}

// SetFilterFields replaces the configured filter controls
func (e *Engine) SetFilterFields(fields []models.FilterField) {
	e.fieldOrder = fields
	e.fields = make(map[string]models.FilterField, len(fields))
	for _, f := range fields {
		e.fields[f.Key] = f
	}
}

// FilterFields returns the configured filter controls in order
func (e *Engine) FilterFields() []models.FilterField {
	return e.fieldOrder
}

// FilterField looks up a filter control by key
func (e *Engine) FilterField(key string) (models.FilterField, bool) {
	f, ok := e.fields[key]
	return f, ok
}

// QuickFilters returns the configured presets
func (e *Engine) QuickFilters() []models.QuickFilter {
	return e.quickFilters
}

// TotalCount is the number of unfiltered rows
func (e *Engine) TotalCount() int {
	return len(e.data)
}

// FilteredCount is the number of rows passing search and filters
func (e *Engine) FilteredCount() int {
	return len(e.filtered())
}

// Rows returns the filtered rows in sort order
func (e *Engine) Rows() []models.Row {
	return e.sortRows(e.filtered())
}

// ActivateRow dispatches the caller's row click handler
func (e *Engine) ActivateRow(id string) error {
	row, ok := e.rowsByID[id]
	if !ok {
		return ErrUnknownRow
	}
	if e.onRowClick != nil {
		e.onRowClick(row)
	}
	return nil
}

// RowActions returns the caller's actions for a row
func (e *Engine) RowActions(id string) []RowAction {
	row, ok := e.rowsByID[id]
	if !ok || e.actions == nil {
		return nil
	}
	return e.actions(row)
}

// RunAction runs the action with the given label on a row
func (e *Engine) RunAction(id, label string) error {
	row, ok := e.rowsByID[id]
	if !ok {
		return ErrUnknownRow
	}
	for _, action := range e.RowActions(id) {
		if action.Label == label {
			if action.Run == nil {
				return nil
			}
			return action.Run(row)
		}
	}
	return ErrUnknownAction
}
