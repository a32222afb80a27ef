package core

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// NullText is the textual form of SQL NULL in a Row.
const NullText = "NULL"

// timestampLayout matches the layout the sqlite driver writes time values with.
const timestampLayout = "2006-01-02 15:04:05.999999999-07:00"

// Row maps column names to the textual form of their values.
type Row map[string]string

// Keys returns the row's column names sorted ascending.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResultSet is a materialized query result that keeps the engine's column order.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// FormatValue converts a scanned driver value to its textual form.
// nil becomes NullText; everything else is rendered regardless of declared type.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return val.Format(timestampLayout)
	default:
		return fmt.Sprintf("%v", val)
	}
}
