// Package rowparser defines the minimal capability a pluggable row parser must
// provide (construct from options, read the next row from a stream) and a
// process-wide registry mapping parser kinds to their factories.
//
// Concrete parsers register themselves from init, mirroring the storage
// backend registry:
//
//	func init() {
//	    rowparser.Register("csv", func(opts rowparser.Options) (rowparser.RowParser, error) {
//	        return NewParser(opts)
//	    })
//	}
package rowparser

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// DefaultKind is the parser kind used when a caller does not pick one.
const DefaultKind = "csv"

// RowParser reads one logical row at a time from r. Implementations return
// io.EOF (unwrapped) once the stream is exhausted and keep returning it on
// subsequent calls. Malformed input should be reported as *ParseError.
type RowParser interface {
	ReadRow(r io.Reader) ([]string, error)
}

// Factory constructs a RowParser from merged construction options.
type Factory func(opts Options) (RowParser, error)

// ErrNotRegistered is returned by Lookup for unknown kinds.
var ErrNotRegistered = errors.New("rowparser: kind not registered")

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the Factory for kind.
func Register(kind string, fn Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = fn
}

// Lookup returns the Factory registered for kind.
func Lookup(kind string) (Factory, error) {
	mu.RLock()
	fn, ok := factories[kind]
	mu.RUnlock()
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, kind)
	}
	return fn, nil
}

// Kinds lists registered parser kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseError reports malformed input at a given (1-based) line.
type ParseError struct {
	Line int
	Err  error

	// Record holds the fields that were read despite the error, when the
	// parser has them (a record with the wrong field count). Nil otherwise.
	Record []string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
