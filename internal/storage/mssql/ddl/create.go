// Package ddl renders SQL Server CREATE TABLE scripts from the generic
// ddl.TableDef model.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the statement is wrapped in an
// IF OBJECT_ID(...) IS NULL guard. Identifiers use bracket quoting.
package ddl

import (
	"fmt"
	"strings"

	gddl "csvload/internal/ddl"
)

// Dialect is the SQL Server rendering of the generic DDL model.
var Dialect = gddl.Dialect{
	Name:    "mssql",
	Quote:   QuoteIdent,
	MapType: MapType,
	Guard:   objectIDGuard,
}

// BuildCreateTableSQL returns
//
//	IF OBJECT_ID(N'[dbo].[t]', N'U') IS NULL
//	BEGIN
//	CREATE TABLE [dbo].[t] (
//	  [col] TYPE
//	);
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, Dialect)
}

func objectIDGuard(quotedFQN, stmt string) string {
	lit := strings.ReplaceAll(quotedFQN, "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", lit, stmt)
}

// QuoteIdent quotes one identifier with brackets: weird]id -> [weird]]id].
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes a possibly schema-qualified name: dbo.Users -> [dbo].[Users].
func QuoteFQN(fqn string) string { return Dialect.QuoteFQN(fqn) }
