package listview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rebeliceyang/lazylist/internal/filter"
	"github.com/rebeliceyang/lazylist/internal/models"
)

// Query is the engine state a caller can ask for by value: command-line
// flags, URL parameters or a saved session.
type Query struct {
	Search string
	// Filters holds one literal per key, parsed with models.ValueForField
	Filters map[string]string
	Logic   models.FilterLogic
	Quick   string
	// Saved is a saved filter id or name
	Saved string
	// Sort is "key" or "key:desc"
	Sort string
}

// IsZero reports whether q asks for nothing
func (q Query) IsZero() bool {
	return q.Search == "" && len(q.Filters) == 0 && q.Logic == "" &&
		q.Quick == "" && q.Saved == "" && q.Sort == ""
}

// ParseFilterArgs turns "key=value" arguments into a filter map.
// Repeating a key for a multi-value field appends to its comma list.
func ParseFilterArgs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", arg)
		}
		if prev, exists := out[key]; exists && prev != "" {
			value = prev + "," + value
		}
		out[key] = value
	}
	return out, nil
}

// Apply sets the engine state described by q. A saved filter is restored
// first, then a quick filter replaces it, then explicit filters are layered
// on top.
func (e *Engine) Apply(q Query) error {
	if q.Saved != "" {
		if err := e.ApplySavedFilter(e.savedFilterID(q.Saved)); err != nil {
			return err
		}
	}
	if q.Quick != "" {
		if err := e.ApplyQuickFilter(q.Quick); err != nil {
			return err
		}
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.SetFilterString(k, q.Filters[k])
	}

	if q.Logic != "" {
		e.SetFilterLogic(q.Logic)
	}
	if q.Search != "" {
		e.SetSearch(q.Search)
	}
	if q.Sort != "" {
		key, dir := models.ParseSortExpression(q.Sort)
		if _, ok := e.column(key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
		}
		e.SortBy(key, dir)
	}
	return nil
}

// savedFilterID resolves a saved filter reference given by id or by name
func (e *Engine) savedFilterID(ref string) string {
	saved := e.SavedFilters()
	for _, sf := range saved {
		if sf.ID == ref {
			return ref
		}
	}
	for _, sf := range saved {
		if strings.EqualFold(sf.Name, ref) {
			return sf.ID
		}
	}
	return ref
}

// State captures the current engine state as a Query
func (e *Engine) State() Query {
	q := Query{
		Search:  e.search,
		Filters: make(map[string]string, len(e.filters)),
		Logic:   e.logic,
		Quick:   e.quick,
	}
	for k, v := range e.filters {
		if v.IsEmpty() {
			continue
		}
		if v.Kind == models.KindDateRange {
			q.Filters[k] = v.Start + ".." + v.End
		} else if v.IsList() {
			q.Filters[k] = strings.Join(v.Values, ",")
		} else {
			q.Filters[k] = v.Text
		}
	}
	if e.sortKey != "" {
		q.Sort = e.sortKey
		if e.sortDir == models.SortDesc {
			q.Sort += ":" + string(models.SortDesc)
		}
	}
	return q
}

// PushdownQuery is the part of the state a SQL source can evaluate.
// Search is only pushed when searchColumns names where to look; those must
// be every field of the rows or SQL drops rows the search would keep.
func (e *Engine) PushdownQuery(searchColumns []string) filter.Query {
	q := filter.Query{
		Filters: e.ActiveFilters(),
		Logic:   e.logic,
		SortKey: e.sortKey,
		SortDir: e.sortDir,
	}
	if len(searchColumns) > 0 {
		q.Search = e.search
		q.SearchColumns = searchColumns
	}
	return q
}
