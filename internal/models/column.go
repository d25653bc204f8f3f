package models

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderFunc converts a raw field value into what a cell displays
type RenderFunc func(value interface{}, row Row) interface{}

// Column describes how one row field is labelled and rendered
type Column struct {
	Key    string
	Label  string
	Render RenderFunc
}

// Cell returns the display string of this column for a row
func (c Column) Cell(row Row) string {
	val := row[c.Key]
	if c.Render != nil {
		return FormatValue(c.Render(val, row))
	}
	return FormatValue(val)
}

// ColumnSpec is the config-file form of a column
type ColumnSpec struct {
	Key    string `mapstructure:"key" yaml:"key" json:"key"`
	Label  string `mapstructure:"label" yaml:"label" json:"label"`
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
}

// Column converts s, resolving Format to a render function
func (s ColumnSpec) Column() Column {
	label := s.Label
	if label == "" {
		label = s.Key
	}
	return Column{Key: s.Key, Label: label, Render: RenderFor(s.Format)}
}

// RenderFor returns a render function for a named format.
// Known formats: upper, lower, money, percent, date, bool. Unknown or empty returns nil.
func RenderFor(format string) RenderFunc {
	switch strings.ToLower(format) {
	case "upper":
		return func(v interface{}, _ Row) interface{} { return strings.ToUpper(FormatValue(v)) }
	case "lower":
		return func(v interface{}, _ Row) interface{} { return strings.ToLower(FormatValue(v)) }
	case "money":
		return func(v interface{}, _ Row) interface{} {
			f, ok := ToFloat(v)
			if !ok {
				return v
			}
			return fmt.Sprintf("%.2f", f)
		}
	case "percent":
		return func(v interface{}, _ Row) interface{} {
			f, ok := ToFloat(v)
			if !ok {
				return v
			}
			return strconv.FormatFloat(f, 'f', -1, 64) + "%"
		}
	case "date":
		return func(v interface{}, _ Row) interface{} {
			t, _, ok := ParseDate(v)
			if !ok {
				return v
			}
			return t.Format(DateLayout)
		}
	case "bool":
		return func(v interface{}, _ Row) interface{} {
			switch strings.ToLower(FormatValue(v)) {
			case "true", "1", "yes", "y":
				return "Yes"
			case "":
				return ""
			default:
				return "No"
			}
		}
	default:
		return nil
	}
}

// ToFloat converts numeric values and numeric strings
func ToFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		return ToFloat(string(v))
	default:
		f, err := strconv.ParseFloat(FormatValue(val), 64)
		return f, err == nil
	}
}

// ColumnKeys returns the keys of cols in order
func ColumnKeys(cols []Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

// ColumnViewState is the persisted per-module column preference
type ColumnViewState struct {
	Visibility map[string]bool   `json:"visibility"`
	Order      []string          `json:"order"`
	Widths     map[string]string `json:"widths"`
}

// IsVisible treats a missing entry as visible
func (s ColumnViewState) IsVisible(key string) bool {
	visible, ok := s.Visibility[key]
	return !ok || visible
}

// Clone deep-copies the state
func (s ColumnViewState) Clone() ColumnViewState {
	out := ColumnViewState{
		Visibility: make(map[string]bool, len(s.Visibility)),
		Order:      append([]string{}, s.Order...),
		Widths:     make(map[string]string, len(s.Widths)),
	}
	for k, v := range s.Visibility {
		out.Visibility[k] = v
	}
	for k, v := range s.Widths {
		out.Widths[k] = v
	}
	return out
}
