package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazylist/internal/models"
)

const sampleConfig = `
general:
  current_user: u1
  page_size: 25
log:
  level: debug
server:
  allowed_origins: [https://crm.example.com]
views:
  invoices:
    title: Invoices
    source:
      kind: postgres
      table: invoices
      id_column: invoice_id
      connection:
        host: localhost
        port: 5432
        database: crm
        user: app
    columns:
      - key: number
        label: Number
      - key: total
        label: Total
        format: money
    filters:
      - key: status
        label: Status
        type: select
        options: [Paid, Due]
      - key: client
        label: Client
        type: multiselect
        options:
          - value: "3"
            label: Acme
      - key: issued
        label: Issued
        type: daterange
    quick_filters:
      - label: Paid
        filter:
          status: Paid
      - label: Mine
        filter:
          owner: current_user
    search_columns: [number, notes]
    pushdown: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "u1", cfg.General.CurrentUser)
	assert.Equal(t, 25, cfg.General.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://crm.example.com"}, cfg.Server.AllowedOrigins)

	// untouched keys keep their defaults
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Features.Export)
	assert.Equal(t, 50, cfg.UI.MaxCellWidth)

	view, err := cfg.View("invoices")
	require.NoError(t, err)
	assert.Equal(t, "Invoices", view.Title)
	assert.Equal(t, models.SourcePostgres, view.Source.Kind)
	assert.Equal(t, "invoice_id", view.Source.IDColumn)
	assert.Equal(t, 5432, view.Source.Connection.Port)
	assert.True(t, view.Pushdown)
	assert.Equal(t, []string{"number", "notes"}, view.SearchColumns)

	require.Len(t, view.Filters, 3)
	assert.Equal(t, []models.FilterOption{{Value: "Paid", Label: "Paid"}, {Value: "Due", Label: "Due"}}, view.Filters[0].Options)
	assert.Equal(t, "Acme", view.Filters[1].OptionLabel("3"))
	assert.True(t, view.Filters[1].IsMulti())
	assert.Equal(t, models.FilterDateRange, view.Filters[2].Type)

	require.Len(t, view.QuickFilters, 2)
	assert.Equal(t, map[string]string{"owner": models.CurrentUserToken}, view.QuickFilters[1].Filter)

	cols := view.ColumnsFor(nil)
	require.Len(t, cols, 2)
	assert.Equal(t, "Total", cols[1].Label)
	assert.Equal(t, "12.50", cols[1].Cell(models.Row{"total": 12.5}))

	assert.Equal(t, []string{"invoices"}, cfg.Modules())
}

func TestLoad_UnknownView(t *testing.T) {
	cfg, err := Load(writeConfig(t, "general:\n  page_size: 10\n"))
	require.NoError(t, err)

	_, err = cfg.View("nope")
	assert.True(t, errors.Is(err, ErrUnknownView))
	assert.Empty(t, cfg.Modules())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "views: [unterminated"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LAZYLIST_GENERAL_CURRENT_USER", "u9")
	t.Setenv("LAZYLIST_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "u9", cfg.General.CurrentUser)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestColumnsFor_InfersFromLoadedNames(t *testing.T) {
	cols := ViewConfig{}.ColumnsFor([]string{"id", "name"})
	assert.Equal(t, []string{"id", "name"}, models.ColumnKeys(cols))
	assert.Equal(t, "name", cols[1].Label)
}

func TestGetDefaults(t *testing.T) {
	d := GetDefaults()
	assert.Equal(t, "default", d.General.DefaultModule)
	assert.True(t, d.Features.Filters)
	assert.True(t, d.Features.BulkActions)
	assert.Equal(t, 10, d.UI.MinCellWidth)
}
