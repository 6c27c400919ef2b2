// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrIsDir is returned by Open when the path names a directory.
var ErrIsDir = errors.New("is a directory")

// Local is a filesystem data source that opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path. The value is safe for
// concurrent use; every Open returns an independent handle.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Name returns the base name of the path without its final extension:
// "/tmp/orders.csv" → "orders", "dump.tar.gz" → "dump.tar".
func (l *Local) Name() string { return BaseName(l.path) }

// Open opens the configured path read-only and returns the *os.File.
//
// Behavior:
//   - A canceled context short-circuits before touching the filesystem.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is checks such as errors.Is(err, os.ErrNotExist).
//   - Directories are rejected with ErrIsDir; the handle is closed first.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", l.path, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: %w", l.path, ErrIsDir)
	}
	return f, nil
}

// BaseName strips the directory and the final extension from p.
func BaseName(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
