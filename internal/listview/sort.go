package listview

import (
	"sort"
	"strings"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// SortBy orders rows by a column; an empty key restores data order
func (e *Engine) SortBy(key string, dir models.SortDirection) {
	if dir != models.SortDesc {
		dir = models.SortAsc
	}
	e.sortKey = key
	e.sortDir = dir
}

// ClearSort restores data order
func (e *Engine) ClearSort() {
	e.SortBy("", models.SortAsc)
}

// Sort returns the current sort column and direction
func (e *Engine) Sort() (string, models.SortDirection) {
	return e.sortKey, e.sortDir
}

// CycleSort steps key through ascending, descending and unsorted
func (e *Engine) CycleSort(key string) {
	switch {
	case e.sortKey != key:
		e.SortBy(key, models.SortAsc)
	case e.sortDir == models.SortAsc:
		e.SortBy(key, models.SortDesc)
	default:
		e.ClearSort()
	}
}

func (e *Engine) sortRows(rows []models.Row) []models.Row {
	if e.sortKey == "" || len(rows) < 2 {
		return rows
	}

	sorted := make([]models.Row, len(rows))
	copy(sorted, rows)

	key, desc := e.sortKey, e.sortDir == models.SortDesc
	sort.SliceStable(sorted, func(i, j int) bool {
		if desc {
			return compareValues(sorted[j][key], sorted[i][key]) < 0
		}
		return compareValues(sorted[i][key], sorted[j][key]) < 0
	})
	return sorted
}

// compareValues orders numbers numerically, dates chronologically and
// everything else case-insensitively. Empty values sort first.
func compareValues(a, b interface{}) int {
	as, bs := models.FormatValue(a), models.FormatValue(b)
	switch {
	case as == "" && bs == "":
		return 0
	case as == "":
		return -1
	case bs == "":
		return 1
	}

	if af, ok := models.ToFloat(a); ok {
		if bf, ok := models.ToFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if at, _, ok := models.ParseDate(a); ok {
		if bt, _, ok := models.ParseDate(b); ok {
			return at.Compare(bt)
		}
	}

	return strings.Compare(strings.ToLower(as), strings.ToLower(bs))
}

// PageInfo describes a page of the filtered, sorted rows
type PageInfo struct {
	Number     int `json:"page"`
	Size       int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalRows  int `json:"totalRows"`
}

// Page returns a 1-based page of rows. Out of range numbers are clamped;
// size <= 0 or disabled pagination returns everything on one page.
func (e *Engine) Page(number, size int) ([]models.Row, PageInfo) {
	rows := e.Rows()
	total := len(rows)
	if size <= 0 || !e.features.Pagination {
		return rows, PageInfo{Number: 1, Size: total, TotalPages: 1, TotalRows: total}
	}

	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	return rows[start:end], PageInfo{
		Number:     number,
		Size:       size,
		TotalPages: pages,
		TotalRows:  total,
	}
}
