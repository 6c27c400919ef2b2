package ddl

import (
	"context"

	gddl "csvload/internal/ddl"
	"csvload/internal/storage"
)

// EnsureTable creates the table described by def unless it already exists.
func EnsureTable(ctx context.Context, repo storage.Execer, def gddl.TableDef) error {
	return storage.ExecDDL(ctx, repo, def, BuildCreateTableSQL)
}
