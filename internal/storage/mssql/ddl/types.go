package ddl

import gddl "csvload/internal/ddl"

// MapType maps a logical type to a SQL Server column type.
func MapType(t gddl.Type) string {
	switch t {
	case gddl.TypeBigint:
		return "BIGINT"
	case gddl.TypeFloat:
		return "FLOAT"
	case gddl.TypeBool:
		return "BIT"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
