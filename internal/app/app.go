package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rebeliceyang/lazylist/internal/config"
	"github.com/rebeliceyang/lazylist/internal/export"
	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/source"
	"github.com/rebeliceyang/lazylist/internal/ui/components"
	"github.com/rebeliceyang/lazylist/internal/ui/theme"
	"github.com/rebeliceyang/lazylist/internal/views"
)

const loadTimeout = 30 * time.Second

// Options configures the application
type Options struct {
	Config *config.Config
	Views  *views.Manager
	// Module is opened first; empty uses the configured default
	Module string
	// Query is applied once, when Module is first loaded
	Query listview.Query
	// ExportFormat and ExportDir control the "e" key
	ExportFormat export.Format
	ExportDir    string
	Logger       zerolog.Logger
}

// App is the main application model
type App struct {
	state  models.AppState
	config *config.Config
	theme  theme.Theme
	views  *views.Manager
	logger zerolog.Logger

	// open views keep their state when switching tabs
	open    map[string]*views.View
	view    *views.View
	loading bool

	initialModule string
	initialQuery  listview.Query

	// sortColumn indexes the visible columns for "s"
	sortColumn   int
	exportFormat export.Format
	exportDir    string

	tabs        *components.ViewTabs
	table       *components.TableView
	search      *components.SearchInput
	filterPanel *components.FilterPanel
	columns     *components.ColumnManager
	savedDialog *components.SavedFiltersDialog
	savePrompt  *components.SaveFilterPrompt
	rowDetail   *components.RowDetail
	panel       components.Panel

	// Error overlay
	showError    bool
	errorOverlay *components.ErrorOverlay
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// ViewOpenedMsg is sent when a module's view has been opened and loaded.
// View is set even when applying the initial query failed.
type ViewOpenedMsg struct {
	Module string
	View   *views.View
	Err    error
}

// RowsLoadedMsg is sent when a reload finishes
type RowsLoadedMsg struct {
	Module string
	Result *source.Result
	Err    error
}

// New creates a new App instance
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = opts.Views.Config()
	}

	th := theme.GetTheme(cfg.UI.Theme)

	module := opts.Module
	if module == "" {
		module = opts.Views.DefaultModule()
	}

	format := opts.ExportFormat
	if format == "" {
		format = export.FormatCSV
	}

	state := models.NewAppState()
	state.Module = module

	a := &App{
		state:         state,
		config:        cfg,
		theme:         th,
		views:         opts.Views,
		logger:        opts.Logger.With().Str("component", "app").Logger(),
		open:          make(map[string]*views.View),
		initialModule: module,
		initialQuery:  opts.Query,
		exportFormat:  format,
		exportDir:     opts.ExportDir,
		tabs:          components.NewViewTabs(th),
		table:         components.NewTableView(th),
		search:        components.NewSearchInput(th),
		filterPanel:   components.NewFilterPanel(th),
		columns:       components.NewColumnManager(th),
		savedDialog:   components.NewSavedFiltersDialog(th),
		savePrompt:    components.NewSaveFilterPrompt(th),
		rowDetail:     components.NewRowDetail(th),
		errorOverlay:  components.NewErrorOverlay(th),
		panel:         components.Panel{Theme: th, Focused: true},
	}

	if cfg.UI.MaxCellWidth > 0 {
		a.table.MaxCellWidth = cfg.UI.MaxCellWidth
	}
	if cfg.UI.MinCellWidth > 0 {
		a.table.MinCellWidth = cfg.UI.MinCellWidth
	}

	modules := opts.Views.Modules()
	titles := make(map[string]string, len(modules))
	for _, m := range modules {
		titles[m] = opts.Views.Title(m)
	}
	a.tabs.SetViews(modules, titles)

	a.updateDimensions()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.openView(a.state.Module)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updateDimensions()
		return a, nil

	case ViewOpenedMsg:
		return a.handleViewOpened(msg)

	case RowsLoadedMsg:
		a.loading = false
		if msg.Err != nil {
			a.ShowError("Load Failed", fmt.Sprintf("Failed to load %s:\n\n%v", msg.Module, msg.Err))
			return a, nil
		}
		if v, ok := a.open[msg.Module]; ok {
			v.SetResult(msg.Result)
			if v == a.view {
				a.refreshTable()
			} else {
				a.tabs.SetCount(msg.Module, v.Engine.FilteredCount())
			}
		}
		return a, nil

	case components.SearchChangedMsg:
		if a.view == nil {
			return a, nil
		}
		a.view.Engine.SetSearch(msg.Query)
		return a, a.afterFilterChange()

	case components.CloseSearchMsg:
		a.search.Input.Blur()
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.SetFilterMsg:
		return a, a.handleSetFilter(msg)

	case components.ToggleLogicMsg:
		if a.view == nil {
			return a, nil
		}
		a.view.Engine.ToggleFilterLogic()
		a.syncFilterPanel()
		return a, a.afterFilterChange()

	case components.ClearFiltersMsg:
		if a.view == nil {
			return a, nil
		}
		a.view.Engine.ClearFilters()
		a.syncFilterPanel()
		return a, a.afterFilterChange()

	case components.CloseFilterPanelMsg:
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.ColumnActionMsg:
		a.handleColumnAction(msg)
		return a, nil

	case components.CloseColumnManagerMsg:
		if a.view != nil {
			a.view.Engine.CancelDrag()
		}
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.ApplySavedFilterMsg:
		return a, a.applySavedFilter(msg.ID)

	case components.DeleteSavedFilterMsg:
		a.deleteSavedFilter(msg.ID)
		return a, nil

	case components.CloseSavedFiltersDialogMsg:
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.SaveFilterMsg:
		a.saveFilter(msg.Name)
		return a, nil

	case components.CloseSaveFilterPromptMsg:
		a.savePrompt.Input.Blur()
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.RunRowActionMsg:
		if a.view != nil {
			if err := a.view.Engine.RunAction(msg.ID, msg.Label); err != nil {
				a.ShowError("Action Failed", fmt.Sprintf("%s:\n\n%v", msg.Label, err))
				return a, nil
			}
			a.state.Notice = msg.Label + " done"
		}
		return a, nil

	case components.CloseRowDetailMsg:
		a.state.ViewMode = models.NormalMode
		return a, nil

	case components.CopyResultMsg:
		if msg.Err != nil {
			a.state.Notice = "Copy failed: " + msg.Err.Error()
		} else {
			a.state.Notice = "Copied " + msg.What + " to clipboard"
		}
		return a, nil
	}

	// cursor blink and other input messages go to the focused text input
	var cmd tea.Cmd
	switch a.state.ViewMode {
	case models.SearchMode:
		a.search, cmd = a.search.Update(msg)
	case models.SaveFilterPromptMode:
		a.savePrompt, cmd = a.savePrompt.Update(msg)
	}
	return a, cmd
}

// openView activates a module, opening and loading it on first use
func (a *App) openView(module string) tea.Cmd {
	if v, ok := a.open[module]; ok {
		a.activate(v)
		return nil
	}

	var q listview.Query
	if module == a.initialModule {
		q = a.initialQuery
		a.initialQuery = listview.Query{}
	}

	a.loading = true
	a.state.Module = module
	a.tabs.Activate(module)
	manager := a.views

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		v, err := manager.Open(ctx, module)
		if err != nil {
			return ViewOpenedMsg{Module: module, Err: err}
		}
		return ViewOpenedMsg{Module: module, View: v, Err: v.Prepare(ctx, q)}
	}
}

func (a *App) handleViewOpened(msg ViewOpenedMsg) (tea.Model, tea.Cmd) {
	a.loading = false
	if msg.View != nil {
		a.open[msg.Module] = msg.View
		if msg.Module == a.state.Module {
			a.activate(msg.View)
		}
	}
	if msg.Err != nil {
		a.logger.Error().Err(msg.Err).Str("module", msg.Module).Msg("failed to open view")
		a.ShowError("Cannot Open View", fmt.Sprintf("%s:\n\n%v", msg.Module, msg.Err))
	}
	return a, nil
}

// activate shows v and rebuilds the table from its engine
func (a *App) activate(v *views.View) {
	a.view = v
	a.state.Module = v.Module
	a.tabs.Activate(v.Module)
	a.views.SetActive(v.Module)
	a.sortColumn = 0
	a.table.SelectedRow = 0
	a.table.TopRow = 0
	a.refreshTable()
}

// reload fetches rows for the active view off the UI loop
func (a *App) reload() tea.Cmd {
	if a.view == nil {
		return nil
	}
	v := a.view
	req := v.Request()
	a.loading = true

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		result, err := v.Fetch(ctx, req)
		return RowsLoadedMsg{Module: v.Module, Result: result, Err: err}
	}
}

// afterFilterChange redraws and, for pushdown views, asks the source again
func (a *App) afterFilterChange() tea.Cmd {
	a.refreshTable()
	if a.view != nil && a.view.Config.Pushdown {
		return a.reload()
	}
	return nil
}

// refreshTable projects the engine state into the table view
func (a *App) refreshTable() {
	if a.view == nil {
		a.table.SetData(nil, nil, nil, 0)
		return
	}
	e := a.view.Engine

	sortKey, sortDir := e.Sort()
	cols := e.OrderedColumns()
	tableCols := make([]components.TableColumn, len(cols))
	for i, col := range cols {
		width, _ := components.ParseWidth(e.ColumnWidth(col.Key))
		tableCols[i] = components.TableColumn{Key: col.Key, Label: col.Label, Width: width}
		if col.Key == sortKey {
			tableCols[i].Sort = sortDir
		}
	}

	rows := e.Rows()
	ids := make([]string, len(rows))
	cells := make([][]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID()
		line := make([]string, len(cols))
		for j, col := range cols {
			line[j] = col.Cell(row)
		}
		cells[i] = line
	}

	if e.Features().BulkActions {
		checked := make(map[string]bool)
		for _, id := range e.SelectedIDs() {
			checked[id] = true
		}
		a.table.Checked = checked
	} else {
		a.table.Checked = nil
	}

	a.table.SetData(tableCols, ids, cells, e.TotalCount())
	a.tabs.SetCount(a.view.Module, e.FilteredCount())

	if a.sortColumn >= len(cols) {
		a.sortColumn = len(cols) - 1
	}
	if a.sortColumn < 0 {
		a.sortColumn = 0
	}
	a.updateDimensions()
}

func (a *App) handleSetFilter(msg components.SetFilterMsg) tea.Cmd {
	if a.view == nil {
		return nil
	}
	if msg.Value.IsEmpty() {
		a.view.Engine.RemoveFilter(msg.Key)
	} else {
		a.view.Engine.SetFilter(msg.Key, msg.Value)
	}
	a.syncFilterPanel()
	return a.afterFilterChange()
}

func (a *App) syncFilterPanel() {
	if a.view == nil {
		return
	}
	e := a.view.Engine
	a.filterPanel.SetState(e.FilterFields(), e.ActiveFilters(), e.FilterLogic())
}

func (a *App) handleColumnAction(msg components.ColumnActionMsg) {
	if a.view == nil {
		return
	}
	e := a.view.Engine

	var err error
	switch msg.Action {
	case components.ColumnToggle:
		err = e.ToggleColumn(msg.Key)
	case components.ColumnMoveUp:
		err = e.MoveColumnUp(msg.Key)
	case components.ColumnMoveDown:
		err = e.MoveColumnDown(msg.Key)
	case components.ColumnDrop:
		if err = e.BeginDrag(msg.Key); err == nil {
			err = e.DropOn(msg.Target)
		}
	case components.ColumnSetWidth:
		err = e.SetColumnWidth(msg.Key, msg.Width)
	case components.ColumnShowAll:
		err = e.ShowAllColumns()
	case components.ColumnReset:
		err = e.ResetColumns()
	}

	// a failed preference write keeps the change on screen
	if err != nil {
		a.state.Notice = "Column preferences not saved: " + err.Error()
	}
	a.columns.SetColumns(e.AllColumns())
	a.refreshTable()
}

func (a *App) applySavedFilter(id string) tea.Cmd {
	a.state.ViewMode = models.NormalMode
	if a.view == nil {
		return nil
	}
	if err := a.view.Engine.ApplySavedFilter(id); err != nil {
		a.ShowError("Saved Filter", err.Error())
		return nil
	}
	if err := a.views.Saved().RecordUsage(id); err != nil {
		a.logger.Warn().Err(err).Str("id", id).Msg("failed to record saved filter usage")
	}
	if sf, err := a.views.Saved().Get(id); err == nil {
		a.state.Notice = "Applied " + sf.Name
	}
	return a.afterFilterChange()
}

func (a *App) deleteSavedFilter(id string) {
	if a.view == nil {
		return
	}
	if err := a.view.Engine.DeleteSavedFilter(id); err != nil {
		a.ShowError("Saved Filter", err.Error())
		return
	}
	a.savedDialog.SetFilters(a.view.Engine.SavedFilters())
	a.state.Notice = "Saved filter deleted"
}

func (a *App) saveFilter(name string) {
	if a.view == nil {
		return
	}
	sf, err := a.view.Engine.SaveCurrentFilter(name)
	if err != nil {
		// keep the prompt open so the name can be fixed
		a.savePrompt.Error = err.Error()
		return
	}
	a.savePrompt.Input.Blur()
	a.state.ViewMode = models.NormalMode
	a.state.Notice = "Saved filter " + sf.Name
}

// exportRows writes the filtered rows next to the working directory
func (a *App) exportRows() {
	if a.view == nil {
		return
	}
	result, path, err := a.view.ExportFile(a.exportDir, a.exportFormat)
	switch {
	case errors.Is(err, listview.ErrFeatureDisabled):
		a.state.Notice = "Export is disabled for this view"
	case errors.Is(err, export.ErrNotImplemented):
		a.state.Notice = result.Notice
	case err != nil:
		a.ShowError("Export Failed", err.Error())
	default:
		a.state.Notice = fmt.Sprintf("Exported %d rows to %s", result.Rows, path)
		if result.Notice != "" {
			a.state.Notice = result.Notice + ": " + path
		}
	}
}

// copySelection copies the selected rows, or the cursor row when nothing
// is selected
func (a *App) copySelection() tea.Cmd {
	if a.view == nil {
		return nil
	}
	e := a.view.Engine

	table := e.SelectionTable()
	what := fmt.Sprintf("%d rows", len(table.Rows))
	if len(table.Rows) == 0 {
		row, ok := e.Row(a.table.SelectedID())
		if !ok {
			a.state.Notice = "Nothing to copy"
			return nil
		}
		table = e.Project([]models.Row{row})
		what = "row"
	}

	module := a.view.Module
	return func() tea.Msg {
		err := export.CopyToClipboard(table)
		if errors.Is(err, export.ErrNotImplemented) {
			// no clipboard on this system; leave a file instead
			name := module + "_selection.csv"
			if ferr := export.ToFile(name, export.FormatCSV, table); ferr != nil {
				return components.CopyResultMsg{Err: ferr}
			}
			return components.CopyResultMsg{Err: fmt.Errorf("clipboard unavailable, wrote %s", name)}
		}
		return components.CopyResultMsg{What: what, Err: err}
	}
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}
