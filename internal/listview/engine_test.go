package listview

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazylist/internal/export"
	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/prefs"
)

func invoiceRows() []models.Row {
	return []models.Row{
		{"id": "A", "status": "Paid", "client": "3", "owner": "u1", "issued": "2024-03-01", "total": 120.0},
		{"id": "B", "status": "Paid", "client": "5", "owner": "u2", "issued": "2024-03-15T10:30:00Z", "total": 80.0},
		{"id": "C", "status": "Due", "client": "3", "owner": "u1", "issued": "2024-04-02", "total": 300.0},
	}
}

func invoiceColumns() []models.Column {
	return []models.Column{
		{Key: "id", Label: "ID"},
		{Key: "status", Label: "Status"},
		{Key: "client", Label: "Client"},
	}
}

func ids(rows []models.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID()
	}
	return out
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Columns == nil {
		opts.Columns = invoiceColumns()
	}
	if opts.Data == nil {
		opts.Data = invoiceRows()
	}
	return New(opts)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	e := New(Options{
		Columns: []models.Column{{Key: "name", Label: "Name"}},
		Data: []models.Row{
			{"id": 7, "name": "Acme Corp"},
			{"id": 8, "name": "Globex"},
		},
	})

	e.SetSearch("acme")
	assert.Equal(t, []string{"7"}, ids(e.Rows()))

	e.SetSearch("xyz")
	assert.Empty(t, e.Rows())

	// ids are field values too
	e.SetSearch("8")
	assert.Equal(t, []string{"8"}, ids(e.Rows()))

	e.SetSearch("")
	assert.Len(t, e.Rows(), 2)
}

func TestSearch_WhitespaceIsPartOfTerm(t *testing.T) {
	e := New(Options{
		Columns: []models.Column{{Key: "name", Label: "Name"}},
		Data: []models.Row{
			{"id": 1, "name": "Acme Corp"},
			{"id": 2, "name": "Globex"},
		},
	})

	e.SetSearch(" ")
	assert.Equal(t, []string{"1"}, ids(e.Rows()))

	e.SetSearch("acme ")
	assert.Equal(t, []string{"1"}, ids(e.Rows()))

	e.SetSearch(" globex")
	assert.Empty(t, e.Rows())
}

func TestRows_DoesNotExposeEngineData(t *testing.T) {
	data := []models.Row{
		{"id": 1, "name": "Acme"},
		{"id": 2, "name": "Globex"},
	}
	e := New(Options{Columns: []models.Column{{Key: "name", Label: "Name"}}, Data: data})

	rows := e.Rows()
	rows[0] = models.Row{"id": 9, "name": "Initech"}

	assert.Equal(t, []string{"1", "2"}, ids(e.Rows()))
	assert.Equal(t, 2, e.FilteredCount())
}

func TestFilterLogic_AndIsIntersectionOrIsUnion(t *testing.T) {
	e := newEngine(t, Options{})
	e.SetFilter("status", models.SelectValue("Paid"))
	e.SetFilter("client", models.SelectValue("3"))

	assert.Equal(t, []string{"A"}, ids(e.Rows()))

	e.SetFilterLogic(models.LogicOr)
	assert.Equal(t, []string{"A", "B", "C"}, ids(e.Rows()))

	assert.Equal(t, models.LogicAnd, e.ToggleFilterLogic())
	assert.Equal(t, []string{"A"}, ids(e.Rows()))
}

func TestSelectFilter_ListContainment(t *testing.T) {
	e := newEngine(t, Options{
		FilterFields: []models.FilterField{{Key: "client", Type: models.FilterMultiSelect}},
	})

	e.AddFilterValue("client", "5")
	e.AddFilterValue("client", "9")
	e.AddFilterValue("client", "5")
	v, _ := e.FilterValue("client")
	assert.Equal(t, []string{"5", "9"}, v.Values)
	assert.Equal(t, []string{"B"}, ids(e.Rows()))

	e.RemoveFilterValue("client", "5")
	assert.Empty(t, e.Rows())

	e.RemoveFilterValue("client", "9")
	_, ok := e.FilterValue("client")
	assert.False(t, ok)
	assert.Len(t, e.Rows(), 3)
}

func TestSelectFilter_ListField(t *testing.T) {
	e := New(Options{
		Columns: []models.Column{{Key: "tags", Label: "Tags"}},
		Data: []models.Row{
			{"id": 1, "tags": []interface{}{"vip", "eu"}},
			{"id": 2, "tags": []string{"us"}},
		},
	})
	e.SetFilter("tags", models.SelectValue("eu"))
	assert.Equal(t, []string{"1"}, ids(e.Rows()))
}

func TestTextFilter(t *testing.T) {
	e := newEngine(t, Options{
		FilterFields: []models.FilterField{{Key: "status", Type: models.FilterText}},
	})
	e.SetFilterString("status", "AI")
	assert.Equal(t, []string{"A", "B"}, ids(e.Rows()))
}

func TestDateFilter_SameCalendarDay(t *testing.T) {
	e := newEngine(t, Options{
		FilterFields: []models.FilterField{{Key: "issued", Type: models.FilterDate}},
	})
	e.SetFilter("issued", models.DateValue("2024-03-15"))
	assert.Equal(t, []string{"B"}, ids(e.Rows()))

	e.SetFilter("issued", models.DateValue("not a date"))
	assert.Len(t, e.Rows(), 3)
}

func TestDateRangeFilter(t *testing.T) {
	e := newEngine(t, Options{
		FilterFields: []models.FilterField{{Key: "issued", Type: models.FilterDateRange}},
	})

	e.SetFilter("issued", models.DateRangeValue("2024-03-01", "2024-03-15"))
	assert.Equal(t, []string{"A", "B"}, ids(e.Rows()), "end date covers the whole day")

	e.SetFilter("issued", models.DateRangeValue("2024-03-02", ""))
	assert.Equal(t, []string{"B", "C"}, ids(e.Rows()))

	e.SetFilter("issued", models.DateRangeValue("", "2024-03-01"))
	assert.Equal(t, []string{"A"}, ids(e.Rows()))
}

func TestDateRangeFilter_IllTypedValuePasses(t *testing.T) {
	e := newEngine(t, Options{
		FilterFields: []models.FilterField{{Key: "issued", Type: models.FilterDateRange}},
	})
	e.SetFilter("issued", models.SelectValue("2024-03-01"))

	assert.NotPanics(t, func() { e.Rows() })
	assert.Len(t, e.Rows(), 3)
}

func TestDateRangeFilter_TimeValues(t *testing.T) {
	e := New(Options{
		Columns: []models.Column{{Key: "at", Label: "At"}},
		Data: []models.Row{
			{"id": 1, "at": time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)},
			{"id": 2, "at": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			{"id": 3, "at": nil},
		},
	})
	e.SetFilter("at", models.DateRangeValue("2024-01-01", "2024-01-31"))
	assert.Equal(t, []string{"1"}, ids(e.Rows()))
}

func TestQuickFilter_ReplacesAdvancedFilters(t *testing.T) {
	e := newEngine(t, Options{
		QuickFilters: []models.QuickFilter{{Label: "Paid", Filter: map[string]string{"status": "Paid"}}},
	})

	e.SetFilter("client", models.SelectValue("9"))
	require.NoError(t, e.ApplyQuickFilter("Paid"))

	assert.Equal(t, models.FilterSet{"status": models.SelectValue("Paid")}, e.ActiveFilters())
	assert.Equal(t, "Paid", e.ActiveQuickFilter())
	assert.Equal(t, []string{"A", "B"}, ids(e.Rows()))

	// manual edits layer on top without clearing the preset
	e.SetFilter("client", models.SelectValue("5"))
	assert.Equal(t, "Paid", e.ActiveQuickFilter())
	assert.Equal(t, []string{"B"}, ids(e.Rows()))

	err := e.ApplyQuickFilter("missing")
	assert.True(t, errors.Is(err, ErrUnknownQuickFilter))
}

func TestQuickFilter_CurrentUser(t *testing.T) {
	quick := []models.QuickFilter{{Label: "Mine", Filter: map[string]string{"owner": models.CurrentUserToken}}}

	e := newEngine(t, Options{QuickFilters: quick, CurrentUserID: "u1"})
	require.NoError(t, e.ApplyQuickFilter("Mine"))
	assert.Equal(t, []string{"A", "C"}, ids(e.Rows()))
	assert.Equal(t, models.SelectValue("u1"), e.ActiveFilters()["owner"])

	anonymous := newEngine(t, Options{QuickFilters: quick})
	require.NoError(t, anonymous.ApplyQuickFilter("Mine"))
	assert.Empty(t, anonymous.Rows())
}

func TestClearFilters_Idempotent(t *testing.T) {
	e := newEngine(t, Options{
		QuickFilters: []models.QuickFilter{{Label: "Due", Filter: map[string]string{"status": "Due"}}},
	})
	require.NoError(t, e.ApplyQuickFilter("Due"))

	e.ClearFilters()
	once := e.ActiveFilters()
	e.ClearFilters()

	assert.Equal(t, once, e.ActiveFilters())
	assert.Empty(t, e.ActiveFilters())
	assert.Equal(t, "", e.ActiveQuickFilter())
	assert.Equal(t, 0, e.ActiveFilterCount())
}

func TestRemoveFilter(t *testing.T) {
	e := newEngine(t, Options{})
	e.SetFilter("status", models.SelectValue("Paid"))
	e.SetFilter("client", models.SelectValue("3"))
	e.RemoveFilter("client")

	assert.Equal(t, []string{"status"}, e.ActiveFilters().Active())
	assert.Equal(t, 1, e.ActiveFilterCount())
}

func TestEmptyValuesAreInactive(t *testing.T) {
	e := newEngine(t, Options{})
	e.SetFilter("status", models.SelectValue(""))
	e.SetFilter("client", models.MultiSelectValue())
	e.SetFilter("issued", models.DateRangeValue("", ""))

	assert.Equal(t, 0, e.ActiveFilterCount())
	assert.Len(t, e.Rows(), 3)
}

func TestColumns_PersistAcrossEngines(t *testing.T) {
	store := prefs.NewStore(prefs.NewMemoryKV(), zerolog.Nop())
	cols := []models.Column{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}, {Key: "c", Label: "C"}, {Key: "email", Label: "Email"}}

	first := New(Options{Module: "clients", Columns: cols, Store: store})
	require.NoError(t, first.ToggleColumn("email"))
	require.NoError(t, first.BeginDrag("c"))
	require.NoError(t, first.DropOn("a"))
	require.NoError(t, first.SetColumnWidth("a", "200px"))

	assert.Equal(t, []string{"c", "a", "b"}, models.ColumnKeys(first.OrderedColumns()))
	assert.Equal(t, []string{"c", "a", "b", "email"}, store.Load("clients").Order)

	second := New(Options{Module: "clients", Columns: cols, Store: store})
	assert.Equal(t, []string{"c", "a", "b"}, models.ColumnKeys(second.OrderedColumns()))
	assert.False(t, second.IsColumnVisible("email"))
	assert.Equal(t, "200px", second.ColumnWidth("a"))

	other := New(Options{Module: "invoices", Columns: cols, Store: store})
	assert.Equal(t, []string{"a", "b", "c", "email"}, models.ColumnKeys(other.OrderedColumns()))
}

func TestColumns_StaleAndNewKeys(t *testing.T) {
	store := prefs.NewStore(prefs.NewMemoryKV(), zerolog.Nop())
	require.NoError(t, store.Save("m", models.ColumnViewState{Order: []string{"gone", "b", "a"}}))

	e := New(Options{
		Module:  "m",
		Store:   store,
		Columns: []models.Column{{Key: "a"}, {Key: "b"}, {Key: "new"}},
	})
	assert.Equal(t, []string{"b", "a", "new"}, models.ColumnKeys(e.OrderedColumns()))
}

func TestColumns_MoveUpDown(t *testing.T) {
	e := New(Options{Columns: []models.Column{{Key: "a"}, {Key: "b"}, {Key: "c"}}})

	require.NoError(t, e.MoveColumnUp("a"))
	assert.Equal(t, []string{"a", "b", "c"}, models.ColumnKeys(e.OrderedColumns()))

	require.NoError(t, e.MoveColumnDown("a"))
	assert.Equal(t, []string{"b", "a", "c"}, models.ColumnKeys(e.OrderedColumns()))

	require.NoError(t, e.MoveColumnDown("c"))
	assert.Equal(t, []string{"b", "a", "c"}, models.ColumnKeys(e.OrderedColumns()))

	assert.True(t, errors.Is(e.MoveColumnUp("zzz"), ErrUnknownColumn))
}

func TestColumns_ShowAllAndReset(t *testing.T) {
	e := New(Options{Columns: []models.Column{{Key: "a"}, {Key: "b"}}})
	require.NoError(t, e.ToggleColumn("a"))
	require.NoError(t, e.ToggleColumn("b"))
	assert.Empty(t, e.OrderedColumns())

	require.NoError(t, e.ShowAllColumns())
	assert.Len(t, e.OrderedColumns(), 2)

	require.NoError(t, e.MoveColumnDown("a"))
	require.NoError(t, e.ResetColumns())
	assert.Equal(t, []string{"a", "b"}, models.ColumnKeys(e.OrderedColumns()))

	assert.True(t, errors.Is(e.ToggleColumn("x"), ErrUnknownColumn))
}

func TestColumns_SetColumnView(t *testing.T) {
	store := prefs.NewStore(prefs.NewMemoryKV(), zerolog.Nop())
	e := New(Options{Module: "m", Store: store, Columns: []models.Column{{Key: "a"}, {Key: "b"}, {Key: "c"}}})

	require.NoError(t, e.SetColumnView(models.ColumnViewState{
		Order:      []string{"c", "a"},
		Visibility: map[string]bool{"b": false},
		Widths:     map[string]string{"c": "120px"},
	}))
	assert.Equal(t, []string{"c", "a"}, models.ColumnKeys(e.OrderedColumns()))
	assert.Equal(t, "120px", store.Load("m").Widths["c"])

	err := e.SetColumnView(models.ColumnViewState{Order: []string{"zzz"}})
	assert.True(t, errors.Is(err, ErrUnknownColumn))
	assert.Equal(t, []string{"c", "a"}, models.ColumnKeys(e.OrderedColumns()))
}

func TestDrag_CancelAndNoop(t *testing.T) {
	e := New(Options{Columns: []models.Column{{Key: "a"}, {Key: "b"}, {Key: "c"}}})

	require.NoError(t, e.DropOn("a"))
	assert.Equal(t, []string{"a", "b", "c"}, models.ColumnKeys(e.OrderedColumns()))

	require.NoError(t, e.BeginDrag("b"))
	assert.Equal(t, "b", e.Dragging())
	e.CancelDrag()
	require.NoError(t, e.DropOn("a"))
	assert.Equal(t, []string{"a", "b", "c"}, models.ColumnKeys(e.OrderedColumns()))
}

type failingStore struct{}

func (failingStore) Load(string) models.ColumnViewState { return models.ColumnViewState{} }
func (failingStore) Save(string, models.ColumnViewState) error {
	return fmt.Errorf("disk full")
}

func TestColumns_PersistFailureKeepsState(t *testing.T) {
	e := New(Options{Columns: []models.Column{{Key: "a"}, {Key: "b"}}, Store: failingStore{}})

	assert.Error(t, e.ToggleColumn("a"))
	assert.Equal(t, []string{"b"}, models.ColumnKeys(e.OrderedColumns()))
}

func TestReorder(t *testing.T) {
	order := []string{"a", "b", "c"}

	assert.Equal(t, []string{"c", "a", "b"}, Reorder(order, "c", "a"))
	assert.Equal(t, []string{"b", "c", "a"}, Reorder(order, "a", "c"))
	assert.Equal(t, []string{"b", "a", "c"}, Reorder(order, "a", "b"))
	assert.Equal(t, order, Reorder(order, "a", "a"))
	assert.Equal(t, order, Reorder(order, "x", "a"))
	assert.Equal(t, []string{"a", "b", "c"}, order, "input must not change")
}

func TestSelection_UncontrolledWhenRowsNil(t *testing.T) {
	e := newEngine(t, Options{})
	assert.Equal(t, SelectionInternal, e.SelectionMode())

	require.NoError(t, e.ToggleRow("A"))
	require.NoError(t, e.ToggleRow("C"))
	assert.Equal(t, []string{"A", "C"}, e.SelectedIDs())

	require.NoError(t, e.ToggleRow("A"))
	assert.Equal(t, []string{"C"}, e.SelectedIDs())
	assert.True(t, e.IsSelected("C"))

	assert.True(t, errors.Is(e.ToggleRow("nope"), ErrUnknownRow))
}

func TestSelection_ControlledWithEmptySlice(t *testing.T) {
	var got [][]string
	e := newEngine(t, Options{Selection: Selection{
		Rows:        []string{},
		OnSelectAll: func(ids []string) { got = append(got, ids) },
	}})
	assert.Equal(t, SelectionExternal, e.SelectionMode())

	require.NoError(t, e.ToggleRow("B"))
	assert.Empty(t, e.SelectedIDs(), "engine keeps no selection of its own")
	require.Len(t, got, 1)
	assert.Equal(t, []string{"B"}, got[0])

	e.SetExternalSelection([]string{"B"})
	require.NoError(t, e.ToggleRow("B"))
	assert.Equal(t, []string{}, got[1])
}

func TestSelection_ExplicitMode(t *testing.T) {
	e := newEngine(t, Options{Selection: Selection{Mode: SelectionInternal, Rows: []string{"A"}}})
	assert.Equal(t, SelectionInternal, e.SelectionMode())
	assert.Empty(t, e.SelectedIDs())
}

func TestSelectAll_ScopedToFilteredRows(t *testing.T) {
	var data []models.Row
	for i := 1; i <= 10; i++ {
		name := "other"
		if i <= 3 {
			name = "match"
		}
		data = append(data, models.Row{"id": i, "name": name})
	}

	e := New(Options{Columns: []models.Column{{Key: "name"}}, Data: data})
	e.SetSearch("match")
	require.NoError(t, e.SelectAll())
	assert.Equal(t, []string{"1", "2", "3"}, e.SelectedIDs())
	assert.True(t, e.AllSelected())

	require.NoError(t, e.ToggleSelectAll())
	assert.Empty(t, e.SelectedIDs())
}

func TestSelection_BulkActionsDisabled(t *testing.T) {
	features := DefaultFeatures()
	features.BulkActions = false
	e := newEngine(t, Options{Features: &features})

	assert.True(t, errors.Is(e.SelectAll(), ErrFeatureDisabled))
	assert.True(t, errors.Is(e.ToggleRow("A"), ErrFeatureDisabled))
}

func TestExport_HeaderRowAlignment(t *testing.T) {
	e := New(Options{
		Module: "demo",
		Columns: []models.Column{
			{Key: "a", Label: "Alpha"},
			{Key: "b", Label: "Beta", Render: func(v interface{}, _ models.Row) interface{} {
				f, _ := models.ToFloat(v)
				return f * 2
			}},
		},
		Data: []models.Row{{"id": 1, "a": "x", "b": 5}},
	})

	var buf bytes.Buffer
	res, err := e.Export(&buf, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Alpha,Beta\nx,10\n", buf.String())
	assert.Equal(t, "demo_export.csv", res.FileName)
	assert.Equal(t, 1, res.Rows)
}

func TestExport_FollowsColumnStateAndQuotes(t *testing.T) {
	e := New(Options{
		Columns: []models.Column{{Key: "name", Label: "Name"}, {Key: "note", Label: "Note"}, {Key: "id", Label: "ID"}},
		Data: []models.Row{
			{"id": 1, "name": "Acme, Inc.", "note": nil},
			{"id": 2, "name": "Globex", "note": "skip"},
		},
	})
	require.NoError(t, e.ToggleColumn("id"))
	require.NoError(t, e.MoveColumnDown("name"))
	e.SetSearch("acme")

	var buf bytes.Buffer
	_, err := e.Export(&buf, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "Note,Name\n,\"Acme, Inc.\"\n", buf.String())
}

func TestExport_ExcelFallsBackToCSV(t *testing.T) {
	e := newEngine(t, Options{Module: "invoices"})

	var buf bytes.Buffer
	res, err := e.Export(&buf, export.FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, res.Format)
	assert.Equal(t, "invoices_export.csv", res.FileName)
	assert.NotEmpty(t, res.Notice)
	assert.Contains(t, buf.String(), "ID,Status,Client\n")
}

func TestExport_PDFNotImplemented(t *testing.T) {
	e := newEngine(t, Options{})

	var buf bytes.Buffer
	res, err := e.Export(&buf, export.FormatPDF)
	assert.True(t, errors.Is(err, export.ErrNotImplemented))
	assert.NotEmpty(t, res.Notice)
	assert.Zero(t, buf.Len())
}

func TestExport_Disabled(t *testing.T) {
	features := DefaultFeatures()
	features.Export = false
	e := newEngine(t, Options{Features: &features})

	_, err := e.Export(&bytes.Buffer{}, export.FormatCSV)
	assert.True(t, errors.Is(err, ErrFeatureDisabled))
}

func TestSavedFilters(t *testing.T) {
	var deleted []string
	e := newEngine(t, Options{
		Module: "invoices",
		SavedFilters: []models.SavedFilter{
			{ID: "s1", Name: "Due for 3", Filters: models.FilterSet{"status": models.SelectValue("Due")}, Logic: models.LogicAnd, Module: "invoices"},
			{ID: "s2", Name: "Elsewhere", Module: "expenses"},
		},
		OnSaveFilter: func(f models.SavedFilter) (models.SavedFilter, error) {
			f.ID = "new"
			return f, nil
		},
		OnDeleteFilter: func(id string) error {
			deleted = append(deleted, id)
			return nil
		},
	})

	assert.Len(t, e.SavedFilters(), 1)

	require.NoError(t, e.ApplySavedFilter("s1"))
	assert.Equal(t, []string{"C"}, ids(e.Rows()))
	assert.True(t, errors.Is(e.ApplySavedFilter("s2"), ErrUnknownSavedFilter))

	e.SetFilterLogic(models.LogicOr)
	_, err := e.SaveCurrentFilter("   ")
	assert.True(t, errors.Is(err, ErrEmptyFilterName))

	saved, err := e.SaveCurrentFilter("Due (any)")
	require.NoError(t, err)
	assert.Equal(t, "new", saved.ID)
	assert.Equal(t, "invoices", saved.Module)
	assert.Equal(t, models.LogicOr, saved.Logic)
	assert.Len(t, e.SavedFilters(), 2)

	require.NoError(t, e.DeleteSavedFilter("s1"))
	assert.Equal(t, []string{"s1"}, deleted)
	assert.Len(t, e.SavedFilters(), 1)
}

func TestSavedFilters_NoHandler(t *testing.T) {
	e := newEngine(t, Options{})
	assert.False(t, e.CanSaveFilters())

	_, err := e.SaveCurrentFilter("x")
	assert.True(t, errors.Is(err, ErrNoSaveHandler))
	assert.True(t, errors.Is(e.DeleteSavedFilter("x"), ErrNoSaveHandler))
}

func TestSortAndPage(t *testing.T) {
	e := newEngine(t, Options{})

	e.SortBy("total", models.SortDesc)
	assert.Equal(t, []string{"C", "A", "B"}, ids(e.Rows()))

	e.CycleSort("total")
	assert.Equal(t, []string{"A", "B", "C"}, ids(e.Rows()), "third step clears the sort")

	e.CycleSort("issued")
	assert.Equal(t, []string{"A", "B", "C"}, ids(e.Rows()))

	rows, page := e.Page(2, 2)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 3, page.TotalRows)
	assert.Equal(t, []string{"C"}, ids(rows))

	_, page = e.Page(99, 2)
	assert.Equal(t, 2, page.Number)

	rows, _ = e.Page(1, 0)
	assert.Len(t, rows, 3)

	e.ClearSort()
	key, _ := e.Sort()
	assert.Empty(t, key)
}

func TestRowActions(t *testing.T) {
	var clicked, archived string
	e := newEngine(t, Options{
		OnRowClick: func(r models.Row) { clicked = r.ID() },
		Actions: func(r models.Row) []RowAction {
			return []RowAction{{Label: "Archive", Run: func(r models.Row) error {
				archived = r.ID()
				return nil
			}}}
		},
	})

	require.NoError(t, e.ActivateRow("B"))
	assert.Equal(t, "B", clicked)

	require.NoError(t, e.RunAction("C", "Archive"))
	assert.Equal(t, "C", archived)

	assert.True(t, errors.Is(e.RunAction("C", "Delete"), ErrUnknownAction))
	assert.True(t, errors.Is(e.ActivateRow("Z"), ErrUnknownRow))
}
