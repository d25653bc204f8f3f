package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// IDField is the row field every record must carry
const IDField = "id"

// Row is a single record supplied by the caller. The engine never mutates rows.
type Row map[string]interface{}

// ID returns the formatted value of the row's id field
func (r Row) ID() string {
	return FormatValue(r[IDField])
}

// Keys returns the row's field names in sorted order
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FormatValue converts a field value to its display string.
// nil becomes "", maps and slices become compact JSON, times use DateTimeLayout.
func FormatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(DateLayout)
		}
		return v.Format(DateTimeLayout)
	case fmt.Stringer:
		return v.String()
	case map[string]interface{}, []interface{}, []string:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	default:
		return fmt.Sprintf("%v", val)
	}
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// dateLayouts are tried in order when a row or filter value is a string
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate converts a field or filter value to a time.
// The second return reports whether the value carried only a calendar date.
func ParseDate(val interface{}) (time.Time, bool, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, false, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false, false
		}
		return *v, false, !v.IsZero()
	case string:
		if v == "" {
			return time.Time{}, false, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, !containsClock(layout), true
			}
		}
	case []byte:
		return ParseDate(string(v))
	}
	return time.Time{}, false, false
}

func containsClock(layout string) bool {
	for i := 0; i+1 < len(layout); i++ {
		if layout[i:i+2] == "15" || layout[i:i+2] == "04" {
			return true
		}
	}
	return false
}
