// Package storage holds the backend-agnostic contract for loading rows into a
// database table, a factory that maps storage kinds to backends, and the
// batched loader that drives a backend's bulk insert.
//
// Concrete backends live in subpackages and register themselves from init;
// import internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Repository is what the loader needs from a database backend.
type Repository interface {
	// CopyFrom inserts rows (aligned to columns) into the configured table
	// and returns the number of rows the backend reports as inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases connections held by the repository.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind    string   // registered backend kind, e.g. "postgres"
	DSN     string   // driver-specific connection string
	Table   string   // target table; may be schema-qualified ("public.orders")
	Columns []string // destination columns in insert order
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

// ErrUnsupportedKind is returned by New for kinds nobody registered.
var ErrUnsupportedKind = errors.New("unsupported storage.kind")

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. A later registration for
// the same kind replaces the earlier one.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w=%s", ErrUnsupportedKind, cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
