// Package ddl renders MySQL CREATE TABLE statements from the generic
// ddl.TableDef model using backtick identifiers and IF NOT EXISTS.
package ddl

import (
	"strings"

	gddl "csvload/internal/ddl"
)

// Dialect is the MySQL rendering of the generic DDL model.
var Dialect = gddl.Dialect{
	Name:        "mysql",
	Quote:       QuoteIdent,
	MapType:     MapType,
	IfNotExists: true,
}

// BuildCreateTableSQL returns a CREATE TABLE IF NOT EXISTS statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, Dialect)
}

// QuoteIdent wraps id in backticks, doubling embedded backticks.
func QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// QuoteFQN quotes each segment of db.table.
func QuoteFQN(fqn string) string { return Dialect.QuoteFQN(fqn) }
