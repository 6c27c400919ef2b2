package ddl

import gddl "csvload/internal/ddl"

// MapType maps a logical type to a Postgres column type.
func MapType(t gddl.Type) string {
	switch t {
	case gddl.TypeBigint:
		return "BIGINT"
	case gddl.TypeFloat:
		return "DOUBLE PRECISION"
	case gddl.TypeBool:
		return "BOOLEAN"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
