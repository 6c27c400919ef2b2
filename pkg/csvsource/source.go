package csvsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"csvload/internal/datasource/file"
	// Registers the default "csv" parser kind.
	_ "csvload/internal/parser/csv"
	"csvload/pkg/rowparser"
)

// FallbackName is returned by DefaultName when neither a table nor a path was
// configured.
const FallbackName = "csv"

// openFile opens a configured path. Tests swap it to observe the handle.
var openFile = func(ctx context.Context, path string) (io.ReadCloser, error) {
	return file.NewLocal(path).Open(ctx)
}

// Source pairs an input stream with a configured row parser.
//
// A Source serves a single consumer; it is not safe for concurrent ReadRow
// calls.
type Source struct {
	cfg    Config
	parser rowparser.RowParser
	stream io.Reader
	owned  io.Closer

	header    []string
	discarded bool

	nameOnce sync.Once
	name     string

	closeOnce sync.Once
	closeErr  error
}

// New resolves opts and performs setup: pick or build the parser, open the
// stream, then drop the header row when explicit columns replace it.
//
// Setup is all or nothing. On error no Source is returned and a file opened
// along the way has already been closed.
func New(ctx context.Context, opts ...Option) (*Source, error) {
	cfg := ResolveConfig(opts...)

	parser, err := buildParser(cfg)
	if err != nil {
		return nil, err
	}

	s := &Source{cfg: cfg, parser: parser}
	if err := s.openStream(ctx); err != nil {
		return nil, err
	}

	if cfg.HasColumns() && !cfg.KeepHeader {
		if err := s.discardHeader(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

func buildParser(cfg Config) (rowparser.RowParser, error) {
	if cfg.Parser != nil {
		return cfg.Parser, nil
	}
	factory, err := rowparser.Lookup(cfg.ParserKind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDependencyLoad, err)
	}
	p, err := factory(rowparser.Merge(cfg.ParserDefaults, cfg.ParserOptions))
	if err != nil {
		return nil, fmt.Errorf("%w: construct %q: %w", ErrDependencyLoad, cfg.ParserKind, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: factory for %q returned nil", ErrDependencyLoad, cfg.ParserKind)
	}
	return p, nil
}

func (s *Source) openStream(ctx context.Context) error {
	switch {
	case s.cfg.Stream != nil && s.cfg.HasPath():
		return fmt.Errorf("%w: both a stream and a source path were given", ErrConfiguration)
	case s.cfg.Stream != nil:
		s.stream = s.cfg.Stream
		return nil
	case !s.cfg.HasPath():
		return fmt.Errorf("%w: cannot proceed without a source path or stream", ErrConfiguration)
	}

	// Cancellation is reported as the bare context error on every path.
	if err := ctx.Err(); err != nil {
		return err
	}
	rc, err := openFile(ctx, s.cfg.Path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrOpen, err)
	}
	s.stream, s.owned = rc, rc
	return nil
}

func (s *Source) discardHeader(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, err := s.parser.ReadRow(s.stream)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return fmt.Errorf("discard header: %w", wrapRead(err))
	}
	s.header, s.discarded = row, true
	return nil
}

// ReadRow returns the next row, or io.EOF once the input is exhausted. Every
// later call returns io.EOF again. Malformed input yields an error matching
// ErrParse.
func (s *Source) ReadRow() ([]string, error) {
	row, err := s.parser.ReadRow(s.stream)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, wrapRead(err)
	}
	return row, nil
}

// DefaultName returns the configured table name, else the path's base name
// without its final extension, else FallbackName. The first result is kept
// for the life of the Source.
func (s *Source) DefaultName() string {
	s.nameOnce.Do(func() {
		switch {
		case s.cfg.HasTable():
			s.name = s.cfg.Table
		case s.cfg.HasPath():
			s.name = file.BaseName(s.cfg.Path)
		default:
			s.name = FallbackName
		}
	})
	return s.name
}

// Columns returns the explicit column names, or nil when none were set.
func (s *Source) Columns() []string {
	if !s.cfg.HasColumns() {
		return nil
	}
	return append([]string(nil), s.cfg.Columns...)
}

// HasColumns reports whether explicit column names were configured.
func (s *Source) HasColumns() bool { return s.cfg.HasColumns() }

// Discarded returns the header row dropped during setup, if any.
func (s *Source) Discarded() ([]string, bool) {
	if !s.discarded {
		return nil, false
	}
	return append([]string(nil), s.header...), true
}

// Config returns the resolved configuration.
func (s *Source) Config() Config { return s.cfg }

// Close releases the stream opened from Path. Injected streams are left to
// the caller. Close is safe to call more than once.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		if s.owned != nil {
			s.closeErr = s.owned.Close()
		}
	})
	return s.closeErr
}
