// Package ddl renders Postgres CREATE TABLE statements from the generic
// ddl.TableDef model: double-quoted identifiers, CREATE TABLE IF NOT EXISTS
// and native BIGINT/DOUBLE PRECISION/BOOLEAN/DATE/TIMESTAMPTZ types.
package ddl

import (
	"strings"

	gddl "csvload/internal/ddl"
)

// Dialect is the Postgres rendering of the generic DDL model.
var Dialect = gddl.Dialect{
	Name:        "postgres",
	Quote:       QuoteIdent,
	MapType:     MapType,
	IfNotExists: true,
}

// BuildCreateTableSQL returns a CREATE TABLE IF NOT EXISTS statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, Dialect)
}

// QuoteIdent quotes one identifier segment, doubling embedded quotes.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
