package models

import (
	"sort"
	"strings"
)

// FilterType is the control type of a configured filter field
type FilterType string

const (
	FilterSelect      FilterType = "select"
	FilterMultiSelect FilterType = "multiselect"
	FilterText        FilterType = "text"
	FilterDate        FilterType = "date"
	FilterDateRange   FilterType = "daterange"
)

// FilterLogic combines all active filters
type FilterLogic string

const (
	LogicAnd FilterLogic = "AND"
	LogicOr  FilterLogic = "OR"
)

// ParseFilterLogic returns LogicOr for "or" (any case) and LogicAnd otherwise
func ParseFilterLogic(s string) FilterLogic {
	if strings.EqualFold(strings.TrimSpace(s), string(LogicOr)) {
		return LogicOr
	}
	return LogicAnd
}

// FilterOption is one selectable value of a select/multiselect field
type FilterOption struct {
	Value string `json:"value" yaml:"value" mapstructure:"value"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// FilterField describes one filter control and the shape of its value
type FilterField struct {
	Key         string         `json:"key" yaml:"key" mapstructure:"key"`
	Label       string         `json:"label" yaml:"label" mapstructure:"label"`
	Type        FilterType     `json:"type" yaml:"type" mapstructure:"type"`
	Options     []FilterOption `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
	MultiSelect bool           `json:"multiSelect,omitempty" yaml:"multi_select,omitempty" mapstructure:"multi_select"`
	Placeholder string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty" mapstructure:"placeholder"`
}

// IsMulti reports whether the field stores a list of values
func (f FilterField) IsMulti() bool {
	return f.Type == FilterMultiSelect || f.MultiSelect
}

// OptionLabel returns the label for an option value, or the value itself
func (f FilterField) OptionLabel(value string) string {
	for _, opt := range f.Options {
		if opt.Value == value {
			if opt.Label != "" {
				return opt.Label
			}
			break
		}
	}
	return value
}

// FilterKind tags which member of FilterValue is populated
type FilterKind string

const (
	KindText      FilterKind = "text"
	KindSelect    FilterKind = "select"
	KindDate      FilterKind = "date"
	KindDateRange FilterKind = "daterange"
)

// FilterValue is the value stored for one filter key.
//
//	text, date:  Text
//	select:      Text, or Values for multi-select
//	daterange:   Start and/or End
type FilterValue struct {
	Kind   FilterKind `json:"kind" yaml:"kind"`
	Text   string     `json:"text,omitempty" yaml:"text,omitempty"`
	Values []string   `json:"values,omitempty" yaml:"values,omitempty"`
	Start  string     `json:"start,omitempty" yaml:"start,omitempty"`
	End    string     `json:"end,omitempty" yaml:"end,omitempty"`
}

func TextValue(s string) FilterValue   { return FilterValue{Kind: KindText, Text: s} }
func SelectValue(s string) FilterValue { return FilterValue{Kind: KindSelect, Text: s} }
func DateValue(s string) FilterValue   { return FilterValue{Kind: KindDate, Text: s} }

// MultiSelectValue builds a select value holding a list
func MultiSelectValue(values ...string) FilterValue {
	return FilterValue{Kind: KindSelect, Values: append([]string{}, values...)}
}

// DateRangeValue builds a range; either bound may be empty
func DateRangeValue(start, end string) FilterValue {
	return FilterValue{Kind: KindDateRange, Start: start, End: end}
}

// IsList reports whether the value holds a list of selections
func (v FilterValue) IsList() bool {
	return v.Values != nil
}

// IsEmpty reports whether the value is inactive
func (v FilterValue) IsEmpty() bool {
	switch v.Kind {
	case KindDateRange:
		return v.Start == "" && v.End == ""
	case KindSelect:
		if v.IsList() {
			return len(v.Values) == 0
		}
		return v.Text == ""
	default:
		return v.Text == "" && len(v.Values) == 0 && v.Start == "" && v.End == ""
	}
}

// Contains reports whether a list value already holds s
func (v FilterValue) Contains(s string) bool {
	for _, existing := range v.Values {
		if existing == s {
			return true
		}
	}
	return false
}

// String renders the value for filter tags and logs
func (v FilterValue) String() string {
	switch {
	case v.Kind == KindDateRange:
		start, end := v.Start, v.End
		if start == "" {
			start = "…"
		}
		if end == "" {
			end = "…"
		}
		return start + " – " + end
	case v.IsList():
		return strings.Join(v.Values, ", ")
	default:
		return v.Text
	}
}

// ValueForField builds the value shape a field expects from a literal string.
// Date ranges accept "start..end".
func ValueForField(field FilterField, literal string) FilterValue {
	switch field.Type {
	case FilterText:
		return TextValue(literal)
	case FilterDate:
		return DateValue(literal)
	case FilterDateRange:
		start, end, _ := strings.Cut(literal, "..")
		return DateRangeValue(strings.TrimSpace(start), strings.TrimSpace(end))
	default:
		if field.IsMulti() {
			var values []string
			for _, part := range strings.Split(literal, ",") {
				if p := strings.TrimSpace(part); p != "" {
					values = append(values, p)
				}
			}
			return MultiSelectValue(values...)
		}
		return SelectValue(literal)
	}
}

// FilterSet maps filter keys to their values
type FilterSet map[string]FilterValue

// Active returns the keys with a non-empty value, sorted
func (fs FilterSet) Active() []string {
	var keys []string
	for k, v := range fs {
		if !v.IsEmpty() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone deep-copies the set
func (fs FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(fs))
	for k, v := range fs {
		if v.Values != nil {
			v.Values = append([]string{}, v.Values...)
		}
		out[k] = v
	}
	return out
}

// QuickFilter is a one-click preset that replaces the whole filter set
type QuickFilter struct {
	Label  string            `json:"label" yaml:"label" mapstructure:"label"`
	Filter map[string]string `json:"filter" yaml:"filter" mapstructure:"filter"`
}

// CurrentUserToken in a quick filter stands for the viewing user's id
const CurrentUserToken = "current_user"

// SavedFilter is a named snapshot of a filter configuration owned by the caller
type SavedFilter struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Filters FilterSet   `json:"filters" yaml:"filters"`
	Logic   FilterLogic `json:"logic" yaml:"logic"`
	Module  string      `json:"module" yaml:"module"`
}
