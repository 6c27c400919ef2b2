package ddl

import "strings"

// Type is a logical column type inferred from sample values. Backends map it
// to their own SQL types.
type Type string

const (
	TypeBigint    Type = "bigint"
	TypeFloat     Type = "float"
	TypeBool      Type = "bool"
	TypeDate      Type = "date"
	TypeTimestamp Type = "timestamp"
	TypeText      Type = "text"
)

// ParseType accepts the logical names plus a few common aliases
// ("int", "integer", "double", "boolean", "datetime", "string").
// Unknown values map to TypeText.
func ParseType(s string) Type {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bigint", "int", "integer":
		return TypeBigint
	case "float", "double", "real", "numeric":
		return TypeFloat
	case "bool", "boolean":
		return TypeBool
	case "date":
		return TypeDate
	case "timestamp", "datetime", "timestamptz":
		return TypeTimestamp
	default:
		return TypeText
	}
}

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - Type: logical type, mapped by the dialect when SQLType is empty
//   - SQLType: explicit SQL type; wins over Type
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	Type       Type
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (optionally dotted, "schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// FromInference builds a nullable TableDef from parallel name and type slices.
func FromInference(table string, names []string, types []Type) TableDef {
	cols := make([]ColumnDef, len(names))
	for i, n := range names {
		t := TypeText
		if i < len(types) {
			t = types[i]
		}
		cols[i] = ColumnDef{Name: n, Type: t, Nullable: true}
	}
	return TableDef{FQN: table, Columns: cols}
}
