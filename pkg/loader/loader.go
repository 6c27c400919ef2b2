// Package loader streams rows from a CSV source into a database table.
//
// Load reads the header (or uses configured column names), samples rows to
// infer column types, optionally creates the table, then replays the samples
// and drains the rest of the source through storage.LoadBatches. A producer
// goroutine converts rows while the batch loader writes them; the two are tied
// together with an errgroup so a failure on either side stops both.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"csvload/internal/ddl"
	"csvload/internal/metrics"
	csvparser "csvload/internal/parser/csv"
	"csvload/internal/storage"
	"csvload/pkg/csvsource"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// RowSource is what Load consumes. *csvsource.Source satisfies it.
type RowSource interface {
	ReadRow() ([]string, error)
	DefaultName() string
	Columns() []string
	HasColumns() bool
}

var _ RowSource = (*csvsource.Source)(nil)

// RepoOpener opens the destination repository. storage.New is the default.
type RepoOpener func(ctx context.Context, cfg storage.Config) (storage.Repository, error)

// ParseErrorPolicy says what Load does with a row the parser rejects.
type ParseErrorPolicy string

const (
	// Abort stops the load at the first unparseable row.
	Abort ParseErrorPolicy = "abort"
	// Skip drops unparseable rows until MaxSkipped is exceeded.
	Skip ParseErrorPolicy = "skip"
)

// Defaults applied by New to zero-valued Options fields.
const (
	DefaultBatchSize  = 1000
	DefaultSampleRows = 100
	DefaultMaxSkipped = 400
)

// logFirstSkips is how many skipped rows are logged at Warn before the
// remainder drop to Debug.
const logFirstSkips = 3

var (
	// ErrEmptySource is returned when the source has neither a header row
	// nor configured column names.
	ErrEmptySource = errors.New("loader: source is empty")

	// ErrNoColumns is returned when the source was configured with an empty
	// column list.
	ErrNoColumns = errors.New("loader: configured column list is empty")

	// ErrTooManySkipped is returned when more than MaxSkipped rows fail to
	// parse under the Skip policy.
	ErrTooManySkipped = errors.New("loader: too many unparseable rows")
)

// Options configures a Loader. Start from DefaultOptions to get name
// normalization; zero sizes are replaced with the package defaults.
type Options struct {
	// Kind and DSN select the storage backend.
	Kind string
	DSN  string

	// Table overrides the source's DefaultName. May be schema-qualified.
	Table string

	BatchSize  int
	SampleRows int

	OnParseError ParseErrorPolicy
	MaxSkipped   int

	// Dedupe drops rows whose cells exactly repeat an earlier row, compared
	// by a 64-bit xxh3 fingerprint.
	Dedupe bool

	// AutoCreate creates the table from inferred types if it does not exist.
	AutoCreate bool

	// NormalizeNames folds the table and column names into lowercase ASCII
	// identifiers.
	NormalizeNames bool

	Logger *slog.Logger
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	return Options{
		BatchSize:      DefaultBatchSize,
		SampleRows:     DefaultSampleRows,
		OnParseError:   Abort,
		MaxSkipped:     DefaultMaxSkipped,
		NormalizeNames: true,
	}
}

// Result summarizes one load.
type Result struct {
	Table      string
	Columns    []string
	Types      []ddl.Type
	Read       int64 // data rows read successfully
	Inserted   int64 // rows the backend reported as written
	Skipped    int64 // rows dropped as unparseable
	Duplicates int64 // rows dropped by Dedupe
	Batches    int64
	Elapsed    time.Duration
}

// Loader moves rows from a RowSource into storage. It is safe to call Load
// from multiple goroutines with different sources.
type Loader struct {
	open RepoOpener
	opts Options
	log  *slog.Logger
}

// New returns a Loader. A nil open uses storage.New.
func New(open RepoOpener, opts Options) *Loader {
	if open == nil {
		open = storage.New
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = DefaultSampleRows
	}
	if opts.MaxSkipped <= 0 {
		opts.MaxSkipped = DefaultMaxSkipped
	}
	if opts.OnParseError == "" {
		opts.OnParseError = Abort
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Loader{open: open, opts: opts, log: log}
}

// Options returns the effective options.
func (l *Loader) Options() Options { return l.opts }

// counts is the per-load state shared by the reading helpers. Only the
// producer goroutine touches it once streaming starts.
type counts struct {
	read, skipped, dups int64
	seen                map[uint64]struct{}
}

// Load copies every row of src into the destination table.
func (l *Loader) Load(ctx context.Context, src RowSource) (res Result, err error) {
	start := time.Now()
	if l.opts.OnParseError != Abort && l.opts.OnParseError != Skip {
		return Result{}, fmt.Errorf("loader: unknown parse error policy %q", l.opts.OnParseError)
	}

	res.Table = l.tableName(src)
	defer func() {
		res.Elapsed = time.Since(start)
		metrics.RecordStep(res.Table, "load", err, res.Elapsed)
		metrics.RecordRows(res.Table, "read", res.Read)
		metrics.RecordRows(res.Table, "inserted", res.Inserted)
		metrics.RecordRows(res.Table, "skipped", res.Skipped)
		metrics.RecordRows(res.Table, "duplicates", res.Duplicates)
	}()
	log := l.log.With("table", res.Table)

	st := &counts{}
	if l.opts.Dedupe {
		st.seen = make(map[uint64]struct{})
	}

	res.Columns, err = l.columns(src)
	if err != nil {
		return res, err
	}

	samples, err := l.sample(src, st, log)
	res.Read, res.Skipped = st.read, st.skipped
	if err != nil {
		return res, err
	}
	res.Types = ddl.Infer(len(res.Columns), samples)
	log.Debug("columns resolved", "columns", res.Columns, "types", res.Types, "samples", len(samples))

	repo, err := l.open(ctx, storage.Config{
		Kind:    l.opts.Kind,
		DSN:     l.opts.DSN,
		Table:   res.Table,
		Columns: res.Columns,
	})
	if err != nil {
		return res, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if l.opts.AutoCreate {
		ddlStart := time.Now()
		err := storage.EnsureTable(ctx, l.opts.Kind, repo, ddl.FromInference(res.Table, res.Columns, res.Types))
		metrics.RecordStep(res.Table, "ddl", err, time.Since(ddlStart))
		if err != nil {
			return res, fmt.Errorf("ensure table %s: %w", res.Table, err)
		}
	}

	rows := make(chan []any, l.opts.BatchSize)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(rows)
		emit := func(raw []string) error {
			if st.seen != nil {
				fp := fingerprint(raw)
				if _, dup := st.seen[fp]; dup {
					st.dups++
					return nil
				}
				st.seen[fp] = struct{}{}
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			case rows <- ddl.CoerceRow(res.Types, raw):
				return nil
			}
		}

		for _, raw := range samples {
			if err := emit(raw); err != nil {
				return err
			}
		}
		samples = nil

		for {
			raw, err := l.next(src, st, log)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := emit(raw); err != nil {
				return err
			}
		}
	})

	var inserted, batches int64
	g.Go(func() error {
		copyFn := func(ctx context.Context, columns []string, batch [][]any) (int64, error) {
			n, err := repo.CopyFrom(ctx, columns, batch)
			if err == nil {
				batches++
				metrics.RecordBatches(res.Table, 1)
			}
			return n, err
		}
		n, err := storage.LoadBatches(gctx, log, res.Columns, rows, l.opts.BatchSize, copyFn)
		inserted = n
		return err
	})

	err = g.Wait()
	res.Read, res.Skipped, res.Duplicates = st.read, st.skipped, st.dups
	res.Inserted, res.Batches = inserted, batches
	if err != nil {
		return res, err
	}

	log.Info("load finished",
		"read", res.Read,
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"duplicates", res.Duplicates,
		"batches", res.Batches,
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
	return res, nil
}

// tableName picks the override or the source's name and normalizes each
// dot-separated segment.
func (l *Loader) tableName(src RowSource) string {
	name := l.opts.Table
	if name == "" {
		name = src.DefaultName()
	}
	if !l.opts.NormalizeNames {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = ddl.NormalizeName(p)
	}
	return strings.Join(parts, ".")
}

// columns returns the configured names or consumes the header row. A source
// with configured columns has already dropped its header; an empty list
// there is ErrNoColumns and no row is read.
func (l *Loader) columns(src RowSource) ([]string, error) {
	var names []string
	if src.HasColumns() {
		if names = src.Columns(); len(names) == 0 {
			return nil, ErrNoColumns
		}
	} else {
		header, err := src.ReadRow()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySource
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if len(header) == 0 {
			return nil, ErrEmptySource
		}
		names = csvparser.StripHeaderBOM(append([]string(nil), header...))
	}

	if l.opts.NormalizeNames {
		return ddl.NormalizeNames(names), nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		if out[i] = strings.TrimSpace(n); out[i] == "" {
			out[i] = fmt.Sprintf("col_%d", i+1)
		}
	}
	return ddl.UniqueNames(out), nil
}

// sample reads up to SampleRows data rows for type inference.
func (l *Loader) sample(src RowSource, st *counts, log *slog.Logger) ([][]string, error) {
	out := make([][]string, 0, l.opts.SampleRows)
	for len(out) < l.opts.SampleRows {
		row, err := l.next(src, st, log)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// next returns the next data row, applying the parse error policy. Errors that
// are not parse errors always stop the load.
func (l *Loader) next(src RowSource, st *counts, log *slog.Logger) ([]string, error) {
	for {
		row, err := src.ReadRow()
		if err == nil {
			st.read++
			return row, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if l.opts.OnParseError != Skip || !errors.Is(err, csvsource.ErrParse) {
			return nil, err
		}

		st.skipped++
		if st.skipped > int64(l.opts.MaxSkipped) {
			return nil, fmt.Errorf("%w: more than %d skipped, last: %w", ErrTooManySkipped, l.opts.MaxSkipped, err)
		}
		level := slog.LevelDebug
		if st.skipped <= logFirstSkips {
			level = slog.LevelWarn
		}
		attrs := []any{"skipped", st.skipped, "err", err}
		if pe := (*csvsource.ParseError)(nil); errors.As(err, &pe) && pe.Record != nil {
			attrs = append(attrs, "fields", len(pe.Record))
		}
		log.Log(context.Background(), level, "skipping unparseable row", attrs...)
	}
}

// fingerprint hashes the cells of row with a unit separator between them so
// that ["ab","c"] and ["a","bc"] differ.
func fingerprint(row []string) uint64 {
	h := xxh3.New()
	for _, c := range row {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0x1f})
	}
	return h.Sum64()
}
