package savedfilters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/lazylist/internal/models"
)

func paidFilter(module string) models.SavedFilter {
	return models.SavedFilter{
		Name: "Paid by 3",
		Filters: models.FilterSet{
			"status": models.SelectValue("Paid"),
			"client": models.MultiSelectValue("3", "4"),
			"issued": models.DateRangeValue("2024-01-01", ""),
		},
		Logic:  models.LogicOr,
		Module: module,
	}
}

func TestManager_AddPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	saved, err := m.Add(paidFilter("invoices"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	_, err = os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)

	reloaded, err := NewManager(dir)
	require.NoError(t, err)

	got, err := reloaded.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Equal(t, []string{"3", "4"}, got.Filters["client"].Values)
	assert.Equal(t, models.LogicOr, got.Logic)
}

func TestManager_DuplicateNamesPerModule(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = m.Add(paidFilter("invoices"))
	require.NoError(t, err)

	dup := paidFilter("invoices")
	dup.Name = "PAID BY 3"
	_, err = m.Add(dup)
	assert.True(t, errors.Is(err, ErrDuplicateName))

	_, err = m.Add(paidFilter("expenses"))
	assert.NoError(t, err)
}

func TestManager_EmptyName(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	f := paidFilter("invoices")
	f.Name = "  "
	_, err = m.Add(f)
	assert.Error(t, err)
}

func TestManager_ListIsScopedAndSorted(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"zeta", "Alpha", "mid"} {
		f := paidFilter("invoices")
		f.Name = name
		_, err := m.Add(f)
		require.NoError(t, err)
	}
	_, err = m.Add(paidFilter("expenses"))
	require.NoError(t, err)

	var names []string
	for _, f := range m.List("invoices") {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Alpha", "mid", "zeta"}, names)
	assert.Len(t, m.List("expenses"), 1)
	assert.Empty(t, m.List("other"))
}

func TestManager_RenameAndDelete(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	saved, err := m.Add(paidFilter("invoices"))
	require.NoError(t, err)

	require.NoError(t, m.Rename(saved.ID, "Renamed"))
	got, err := m.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	require.NoError(t, m.Delete(saved.ID))
	_, err = m.Get(saved.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(m.Delete(saved.ID), ErrNotFound))
}

func TestManager_SearchAndUsage(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	first, err := m.Add(paidFilter("invoices"))
	require.NoError(t, err)
	other := models.SavedFilter{Name: "Overdue", Filters: models.FilterSet{"due": models.DateValue("2024-01-01")}, Module: "invoices"}
	second, err := m.Add(other)
	require.NoError(t, err)

	assert.Len(t, m.Search("invoices", "paid"), 1)
	assert.Len(t, m.Search("invoices", "DUE"), 1)
	assert.Len(t, m.Search("invoices", ""), 2)

	require.NoError(t, m.RecordUsage(second.ID))
	require.NoError(t, m.RecordUsage(second.ID))
	require.NoError(t, m.RecordUsage(first.ID))

	top := m.MostUsed("invoices", 1)
	require.Len(t, top, 1)
	assert.Equal(t, second.ID, top[0].ID)
}

func TestManager_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("- [broken"), 0644))

	_, err := NewManager(dir)
	assert.Error(t, err)
}
