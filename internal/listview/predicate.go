package listview

import (
	"strings"
	"time"

	"github.com/rebeliceyang/lazylist/internal/models"
)

// filtered runs the pipeline: search, then the active quick filter, then the
// advanced filter set combined with the current logic. The result is a new
// slice; the rows themselves are shared with the engine.
func (e *Engine) filtered() []models.Row {
	active := e.filters.Active()
	quick, hasQuick := e.activeQuick()
	search := strings.ToLower(e.search)

	if search == "" && !hasQuick && len(active) == 0 {
		return append([]models.Row(nil), e.data...)
	}

	out := make([]models.Row, 0, len(e.data))
	for _, row := range e.data {
		if search != "" && !matchSearch(row, search) {
			continue
		}
		if hasQuick && !e.matchQuick(row, quick) {
			continue
		}
		if len(active) > 0 && !e.matchAdvanced(row, active) {
			continue
		}
		out = append(out, row)
	}

	e.logger.Debug().
		Str("search", search).
		Str("quick", e.quick).
		Int("filters", len(active)).
		Str("logic", string(e.logic)).
		Int("before", len(e.data)).
		Int("after", len(out)).
		Msg("rows filtered")

	return out
}

// matchSearch is a case-insensitive substring test over every field value
func matchSearch(row models.Row, needle string) bool {
	for _, v := range row {
		if strings.Contains(strings.ToLower(models.FormatValue(v)), needle) {
			return true
		}
	}
	return false
}

func (e *Engine) activeQuick() (models.QuickFilter, bool) {
	if e.quick == "" {
		return models.QuickFilter{}, false
	}
	for _, qf := range e.quickFilters {
		if qf.Label == e.quick {
			return qf, true
		}
	}
	return models.QuickFilter{}, false
}

// matchQuick requires an exact match on every pair of the preset
func (e *Engine) matchQuick(row models.Row, qf models.QuickFilter) bool {
	for key, want := range qf.Filter {
		if want == models.CurrentUserToken {
			if e.currentUserID == "" {
				return false
			}
			want = e.currentUserID
		}
		if !matchExact(row[key], want) {
			return false
		}
	}
	return true
}

func (e *Engine) matchAdvanced(row models.Row, keys []string) bool {
	if e.logic == models.LogicOr {
		for _, key := range keys {
			if e.matchFilter(row, key, e.filters[key]) {
				return true
			}
		}
		return false
	}

	for _, key := range keys {
		if !e.matchFilter(row, key, e.filters[key]) {
			return false
		}
	}
	return true
}

// filterType prefers the configured field type and falls back to the value's shape
func (e *Engine) filterType(key string, v models.FilterValue) models.FilterType {
	if field, ok := e.fields[key]; ok && field.Type != "" {
		return field.Type
	}
	switch v.Kind {
	case models.KindText:
		return models.FilterText
	case models.KindDate:
		return models.FilterDate
	case models.KindDateRange:
		return models.FilterDateRange
	default:
		return models.FilterSelect
	}
}

// matchFilter evaluates one criterion. A criterion whose value does not fit
// its type is treated as absent and passes.
func (e *Engine) matchFilter(row models.Row, key string, v models.FilterValue) bool {
	field := row[key]

	switch e.filterType(key, v) {
	case models.FilterText:
		needle := v.Text
		if needle == "" {
			return true
		}
		return strings.Contains(strings.ToLower(models.FormatValue(field)), strings.ToLower(needle))

	case models.FilterDate:
		want, _, ok := models.ParseDate(v.Text)
		if !ok {
			return true
		}
		got, _, ok := models.ParseDate(field)
		if !ok {
			return false
		}
		return sameDay(got, want)

	case models.FilterDateRange:
		if v.Kind != models.KindDateRange {
			return true
		}
		return matchRange(field, v.Start, v.End)

	default:
		if v.IsList() {
			for _, want := range v.Values {
				if matchExact(field, want) {
					return true
				}
			}
			return false
		}
		return matchExact(field, v.Text)
	}
}

// matchExact compares a field with a string; list fields match on any element
func matchExact(field interface{}, want string) bool {
	switch list := field.(type) {
	case []string:
		for _, item := range list {
			if item == want {
				return true
			}
		}
		return false
	case []interface{}:
		for _, item := range list {
			if models.FormatValue(item) == want {
				return true
			}
		}
		return false
	}
	return models.FormatValue(field) == want
}

func matchRange(field interface{}, start, end string) bool {
	from, fromDateOnly, hasFrom := models.ParseDate(start)
	to, toDateOnly, hasTo := models.ParseDate(end)
	if !hasFrom && !hasTo {
		return true
	}

	got, _, ok := models.ParseDate(field)
	if !ok {
		return false
	}

	if hasFrom {
		if fromDateOnly {
			if dayOf(got).Before(dayOf(from)) {
				return false
			}
		} else if got.Before(from) {
			return false
		}
	}

	if hasTo {
		// A date-only upper bound covers the whole day
		if toDateOnly {
			if dayOf(got).After(dayOf(to)) {
				return false
			}
		} else if got.After(to) {
			return false
		}
	}

	return true
}

// dayOf truncates t to its calendar date in its own location, expressed in UTC
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}
