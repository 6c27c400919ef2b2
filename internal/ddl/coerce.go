package ddl

import (
	"strconv"
	"strings"
)

// Coerce converts a raw cell into a Go value for the logical type t.
// Empty (after trimming) yields nil, which backends store as NULL. A value
// that does not fit t is returned unchanged as a string so no data is lost;
// the database decides whether to accept it.
func Coerce(t Type, s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	switch t {
	case TypeBigint:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	case TypeFloat:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	case TypeBool:
		if b, ok := parseBool(v); ok {
			return b
		}
	case TypeDate:
		if tm, ok := parseTime(v, DateLayouts); ok {
			return tm
		}
	case TypeTimestamp:
		if tm, ok := parseTime(v, TimestampLayouts); ok {
			return tm
		}
		if tm, ok := parseTime(v, DateLayouts); ok {
			return tm
		}
	case TypeText:
		return s
	}
	return s
}

// CoerceRow converts row to values aligned to types. Short rows are padded
// with nil and long rows truncated.
func CoerceRow(types []Type, row []string) []any {
	out := make([]any, len(types))
	for i, t := range types {
		if i < len(row) {
			out[i] = Coerce(t, row[i])
		}
	}
	return out
}
