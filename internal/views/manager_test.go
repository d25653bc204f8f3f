package views

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazylist/internal/config"
	"github.com/rebeliceyang/lazylist/internal/export"
	"github.com/rebeliceyang/lazylist/internal/listview"
	"github.com/rebeliceyang/lazylist/internal/models"
	"github.com/rebeliceyang/lazylist/internal/prefs"
)

const invoicesCSV = "number,client,status,owner\nINV-1,Acme,Paid,u1\nINV-2,Globex,Due,u2\nINV-3,Acme,Due,u1\n"

func newTestManager(t *testing.T, override string) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "invoices.csv")
	require.NoError(t, os.WriteFile(data, []byte(invoicesCSV), 0644))

	cfg := config.GetDefaults()
	cfg.General.DefaultModule = "invoices"
	cfg.General.CurrentUser = "u1"
	cfg.Storage.PreferencesPath = filepath.Join(dir, "prefs.db")
	cfg.Storage.SavedFiltersDir = dir
	cfg.Views["invoices"] = config.ViewConfig{
		Title:  "Invoices",
		Source: models.SourceConfig{Path: data},
		Filters: []models.FilterField{
			{Key: "status", Label: "Status", Type: models.FilterSelect},
		},
		QuickFilters: []models.QuickFilter{
			{Label: "Mine", Filter: map[string]string{"owner": models.CurrentUserToken}},
		},
	}

	m, err := NewManager(Options{
		Config:         cfg,
		SourceOverride: override,
		Prefs:          prefs.NewStore(prefs.NewMemoryKV(), zerolog.Nop()),
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, dir
}

func TestOpen_LoadsRowsAndInfersColumns(t *testing.T) {
	m, _ := newTestManager(t, "")
	ctx := context.Background()

	view, err := m.Open(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "invoices", view.Module)
	assert.Equal(t, "Invoices", view.Title)

	total, err := view.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, view.Engine.TotalCount())
	assert.Equal(t, []string{"id", "number", "client", "status", "owner"}, models.ColumnKeys(view.Engine.Columns()))

	require.NoError(t, view.Engine.ApplyQuickFilter("Mine"))
	assert.Equal(t, 2, view.Engine.FilteredCount())
}

func TestOpen_UnknownModule(t *testing.T) {
	m, _ := newTestManager(t, "")
	_, err := m.Open(context.Background(), "nope")
	assert.True(t, errors.Is(err, config.ErrUnknownView))
}

func TestOpen_SavedFiltersRoundTrip(t *testing.T) {
	m, _ := newTestManager(t, "")
	ctx := context.Background()

	view, err := m.Open(ctx, "invoices")
	require.NoError(t, err)
	_, err = view.Load(ctx)
	require.NoError(t, err)

	view.Engine.SetFilter("status", models.SelectValue("Due"))
	saved, err := view.Engine.SaveCurrentFilter("Due")
	require.NoError(t, err)
	assert.Equal(t, "invoices", saved.Module)

	// a new engine sees the stored filter
	again, err := m.Open(ctx, "invoices")
	require.NoError(t, err)
	_, err = again.Load(ctx)
	require.NoError(t, err)
	require.Len(t, again.Engine.SavedFilters(), 1)
	require.NoError(t, again.Engine.ApplySavedFilter(saved.ID))
	assert.Equal(t, 2, again.Engine.FilteredCount())

	require.NoError(t, again.Engine.DeleteSavedFilter(saved.ID))
	assert.Empty(t, m.Saved().List("invoices"))
}

func TestOpen_ColumnPreferencesShared(t *testing.T) {
	m, _ := newTestManager(t, "")
	ctx := context.Background()

	view, err := m.Open(ctx, "invoices")
	require.NoError(t, err)
	_, err = view.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, view.Engine.ToggleColumn("owner"))

	again, err := m.Open(ctx, "invoices")
	require.NoError(t, err)
	_, err = again.Load(ctx)
	require.NoError(t, err)
	assert.False(t, again.Engine.IsColumnVisible("owner"))
}

func TestSourceOverride_AdHocModule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clients.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"Acme"},{"name":"Globex"}]`), 0644))

	m, _ := newTestManager(t, path)
	ctx := context.Background()

	view, err := m.Open(ctx, "clients")
	require.NoError(t, err)
	assert.Equal(t, "clients", view.Title)

	total, err := view.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestSourceOverride_ReplacesConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("number,status\nX-1,Paid\n"), 0644))

	m, _ := newTestManager(t, path)
	view, err := m.ViewConfig("invoices")
	require.NoError(t, err)
	assert.Equal(t, path, view.Source.Path)
	assert.Equal(t, "Invoices", view.Title)
	assert.Contains(t, m.Modules(), "invoices")
}

func TestActiveAndReopen(t *testing.T) {
	m, _ := newTestManager(t, "")
	assert.Empty(t, m.GetActive())
	m.SetActive("invoices")
	assert.Equal(t, "invoices", m.GetActive())

	_, err := m.Open(context.Background(), "invoices")
	require.NoError(t, err)
	require.NoError(t, m.Reopen("invoices"))
	require.NoError(t, m.Reopen("invoices"))
	assert.Equal(t, []string{"invoices"}, m.Modules())
}

func TestNewManager_OpensStorage(t *testing.T) {
	dir := t.TempDir()
	cfg := config.GetDefaults()
	cfg.Storage.PreferencesPath = filepath.Join(dir, "nested", "prefs.db")
	cfg.Storage.SavedFiltersDir = dir

	m, err := NewManager(Options{Config: cfg, Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.NotNil(t, m.Prefs())
	assert.Equal(t, filepath.Join(dir, "saved_filters.yaml"), m.Saved().Path())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err = os.Stat(cfg.Storage.PreferencesPath)
	assert.NoError(t, err)
}

func TestPrepare_AppliesQueryAfterLoad(t *testing.T) {
	m, _ := newTestManager(t, "")
	ctx := context.Background()

	view, err := m.Open(ctx, "invoices")
	require.NoError(t, err)

	// sorting on an inferred column only works once rows are loaded
	require.NoError(t, view.Prepare(ctx, listview.Query{
		Filters: map[string]string{"status": "Due"},
		Sort:    "number:desc",
	}))
	rows := view.Engine.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "INV-3", rows[0]["number"])

	other, err := m.Open(ctx, "invoices")
	require.NoError(t, err)
	err = other.Prepare(ctx, listview.Query{Quick: "Nobody"})
	assert.True(t, errors.Is(err, listview.ErrUnknownQuickFilter))
}

func TestExportFile(t *testing.T) {
	m, _ := newTestManager(t, "")
	ctx := context.Background()
	view, err := m.Open(ctx, "invoices")
	require.NoError(t, err)
	require.NoError(t, view.Prepare(ctx, listview.Query{Filters: map[string]string{"status": "Paid"}}))

	dir := t.TempDir()
	result, path, err := view.ExportFile(dir, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoices_export.csv"), path)
	assert.Equal(t, 1, result.Rows)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,number,client,status,owner\n1,INV-1,Acme,Paid,u1\n", string(data))

	result, path, err = view.ExportFile(filepath.Join(dir, "out.csv"), export.FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.csv"), path)
	assert.NotEmpty(t, result.Notice)

	_, path, err = view.ExportFile(dir, export.FormatPDF)
	assert.True(t, errors.Is(err, export.ErrNotImplemented))
	assert.Empty(t, path)
	_, statErr := os.Stat(filepath.Join(dir, "invoices_export.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoad_InfersFilterTypesFromSQLColumns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crm.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE invoices (id INTEGER PRIMARY KEY, status TEXT, issued DATE);
		INSERT INTO invoices (status, issued) VALUES ('Paid', '2024-03-01'), ('Due', '2024-04-02');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := config.GetDefaults()
	cfg.Storage.SavedFiltersDir = dir
	cfg.Views["invoices"] = config.ViewConfig{
		Source:  models.SourceConfig{Path: path, Table: "invoices"},
		Filters: []models.FilterField{{Key: "issued", Label: "Issued"}, {Key: "status", Type: models.FilterSelect}},
	}
	m, err := NewManager(Options{
		Config: cfg,
		Prefs:  prefs.NewStore(prefs.NewMemoryKV(), zerolog.Nop()),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	view, err := m.Open(context.Background(), "invoices")
	require.NoError(t, err)
	require.NoError(t, view.Prepare(context.Background(), listview.Query{Filters: map[string]string{"issued": "2024-04-01.."}}))

	field, ok := view.Engine.FilterField("issued")
	require.True(t, ok)
	assert.Equal(t, models.FilterDateRange, field.Type)
	assert.Equal(t, 1, view.Engine.FilteredCount())
}

func TestPushdown_SearchMatchesInMemory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crm.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE invoices (id INTEGER PRIMARY KEY, number TEXT, client TEXT);
		INSERT INTO invoices (number, client) VALUES ('INV-1', 'Acme'), ('INV-2', 'Globex'), ('INV-3', 'Acme Corp');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src := models.SourceConfig{Path: path, Table: "invoices"}
	cfg := config.GetDefaults()
	cfg.Storage.SavedFiltersDir = dir
	cfg.Views["memory"] = config.ViewConfig{Source: src}
	cfg.Views["partial"] = config.ViewConfig{Source: src, Pushdown: true, SearchColumns: []string{"number"}}
	cfg.Views["full"] = config.ViewConfig{Source: src, Pushdown: true, SearchColumns: []string{"id", "number", "client"}}
	m, err := NewManager(Options{
		Config: cfg,
		Prefs:  prefs.NewStore(prefs.NewMemoryKV(), zerolog.Nop()),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	numbers := func(rows []models.Row) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = models.FormatValue(r["number"])
		}
		return out
	}

	ctx := context.Background()
	q := listview.Query{Search: "acme", Sort: "number"}
	want := []string{"INV-1", "INV-3"}

	for _, module := range []string{"memory", "partial", "full"} {
		t.Run(module, func(t *testing.T) {
			view, err := m.Open(ctx, module)
			require.NoError(t, err)
			require.NoError(t, view.Prepare(ctx, q))
			assert.Equal(t, want, numbers(view.Engine.Rows()))
		})
	}

	partial, err := m.Open(ctx, "partial")
	require.NoError(t, err)
	require.NoError(t, partial.Prepare(ctx, q))
	assert.Empty(t, partial.Request().Query.Search)

	full, err := m.Open(ctx, "full")
	require.NoError(t, err)
	require.NoError(t, full.Prepare(ctx, q))
	assert.Equal(t, "acme", full.Request().Query.Search)
	assert.Equal(t, 2, full.Engine.TotalCount())
}
