// Package ddl renders SQLite CREATE TABLE statements from the generic
// ddl.TableDef model.
//
// Identifiers are double-quoted ("main"."events"), the statement uses
// CREATE TABLE IF NOT EXISTS, and logical types map onto SQLite's storage
// classes.
package ddl

import (
	"strings"

	gddl "csvload/internal/ddl"
)

// Dialect is the SQLite rendering of the generic DDL model.
var Dialect = gddl.Dialect{
	Name:        "sqlite",
	Quote:       QuoteIdent,
	MapType:     MapType,
	IfNotExists: true,
}

// BuildCreateTableSQL returns
//
//	CREATE TABLE IF NOT EXISTS "table" (
//	  "col1" TYPE [NOT NULL] [DEFAULT expr],
//	  PRIMARY KEY ("pk1")
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, Dialect)
}

// QuoteIdent double-quotes one identifier, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteFQN quotes each segment of a possibly qualified name.
func QuoteFQN(fqn string) string { return Dialect.QuoteFQN(fqn) }
