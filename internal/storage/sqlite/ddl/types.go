package ddl

import gddl "csvload/internal/ddl"

// MapType maps a logical type to a SQLite column type. Booleans are stored as
// 0/1 and temporal values as ISO-8601 text.
func MapType(t gddl.Type) string {
	switch t {
	case gddl.TypeBigint, gddl.TypeBool:
		return "INTEGER"
	case gddl.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
