package listview

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/prefs"
)

// DefaultModule namespaces preferences when the caller sets none
const DefaultModule = "default"

var (
	ErrUnknownQuickFilter = errors.New("unknown quick filter")
	ErrUnknownSavedFilter = errors.New("unknown saved filter")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrUnknownRow         = errors.New("unknown row")
	ErrUnknownAction      = errors.New("unknown row action")
	ErrEmptyFilterName    = errors.New("filter name cannot be empty")
	ErrNoSaveHandler      = errors.New("saved filters are not supported by this view")
	ErrFeatureDisabled    = errors.New("feature disabled")
)

// SelectionMode decides who owns the selected row ids
type SelectionMode int

const (
	// SelectionAuto picks SelectionExternal when Selection.Rows is non-nil
	SelectionAuto SelectionMode = iota
	SelectionInternal
	SelectionExternal
)

func (m SelectionMode) String() string {
	switch m {
	case SelectionInternal:
		return "internal"
	case SelectionExternal:
		return "external"
	default:
		return "auto"
	}
}

// Selection configures the selection manager.
// In external mode Rows is the caller's selection and OnSelectAll receives
// every requested change; the engine keeps no selection of its own.
type Selection struct {
	Mode        SelectionMode
	Rows        []string
	OnSelectAll func(ids []string)
}

// Features toggles optional behavior; all default to on
type Features struct {
	Filters     bool
	BulkActions bool
	Pagination  bool
	Export      bool
}

// DefaultFeatures enables everything
func DefaultFeatures() Features {
	return Features{Filters: true, BulkActions: true, Pagination: true, Export: true}
}

// RowAction is a per-row command offered by the caller
type RowAction struct {
	Label string
	Run   func(row models.Row) error
}

// Options is the construction contract of an Engine
type Options struct {
	Module       string
	Columns      []models.Column
	Data         []models.Row
	FilterFields []models.FilterField
	QuickFilters []models.QuickFilter
	SavedFilters []models.SavedFilter

	// CurrentUserID resolves the "current_user" token in quick filters.
	// When empty that token matches no row.
	CurrentUserID string

	// Store persists column preferences; nil keeps them in memory only
	Store prefs.PreferenceStore

	OnSaveFilter   func(filter models.SavedFilter) (models.SavedFilter, error)
	OnDeleteFilter func(id string) error
	OnRowClick     func(row models.Row)
	Actions        func(row models.Row) []RowAction

	Selection Selection
	// Features nil means DefaultFeatures
	Features *Features

	Logger *zerolog.Logger
}
