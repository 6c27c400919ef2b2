// Package ddl defines a small, backend-agnostic model for SQL DDL, the type
// inference that feeds it, and helpers to render CREATE TABLE statements.
//
// Rendering is driven by a Dialect: backends (internal/storage/*/ddl) supply
// identifier quoting, a logical-to-SQL type mapping and an optional
// existence guard. The zero Dialect emits names verbatim, a plain CREATE
// TABLE and the upper-cased logical type names.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect customizes Render for one SQL backend.
type Dialect struct {
	// Name prefixes error messages ("postgres ddl: ..."). Default "ddl".
	Name string

	// Quote quotes one identifier segment. Nil emits names verbatim.
	Quote func(ident string) string

	// MapType renders a logical Type when ColumnDef.SQLType is empty.
	MapType func(Type) string

	// IfNotExists emits CREATE TABLE IF NOT EXISTS.
	IfNotExists bool

	// Guard, when set, wraps the finished statement. It receives the quoted
	// table name and the CREATE TABLE statement; dialects without
	// IF NOT EXISTS use it.
	Guard func(quotedFQN, stmt string) string
}

func (d Dialect) prefix() string {
	if d.Name == "" {
		return "ddl"
	}
	return d.Name + " ddl"
}

func (d Dialect) quote(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}

// QuoteFQN quotes each dot-separated segment of fqn with d.Quote.
func (d Dialect) QuoteFQN(fqn string) string {
	if d.Quote == nil {
		return fqn
	}
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, d.Quote(p))
		}
	}
	return strings.Join(out, ".")
}

// Render builds a CREATE TABLE statement for t in dialect d.
//
// Each column is rendered as
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
// and PRIMARY KEY columns are collected into a trailing table constraint.
// Default is emitted as raw SQL.
func Render(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.prefix())
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.prefix())
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.prefix(), fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" && c.Type != "" {
			if d.MapType != nil {
				typ = d.MapType(c.Type)
			} else {
				typ = strings.ToUpper(string(c.Type))
			}
		}
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.prefix(), name)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	head := "CREATE TABLE"
	if d.IfNotExists {
		head += " IF NOT EXISTS"
	}
	quoted := d.QuoteFQN(fqn)
	stmt := fmt.Sprintf("%s %s (\n  %s\n);", head, quoted, strings.Join(cols, ",\n  "))
	if d.Guard != nil {
		stmt = d.Guard(quoted, stmt)
	}
	return stmt, nil
}
