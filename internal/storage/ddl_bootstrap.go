package storage

import (
	"context"
	"fmt"
	"sync"

	"csvload/internal/ddl"
)

// Execer runs a single statement. Every Repository is an Execer.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// DDLBootstrapper creates the table described by def on repo using the
// backend's own dialect. It must be safe to run against an existing table.
type DDLBootstrapper func(ctx context.Context, repo Execer, def ddl.TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers the bootstrapper used by EnsureTable for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable runs the bootstrapper registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Execer, def ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, def)
}

// ExecDDL renders def with build and executes it on repo. Backends use it to
// implement their DDLBootstrapper.
func ExecDDL(ctx context.Context, repo Execer, def ddl.TableDef, build func(ddl.TableDef) (string, error)) error {
	sql, err := build(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
