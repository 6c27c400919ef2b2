package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"csvload/internal/ddl"
	"csvload/internal/storage"
	"csvload/pkg/csvsource"
)

// fakeSource replays rows; a non-nil entry in errs at index i is returned
// instead of rows[i].
type fakeSource struct {
	name    string
	columns []string
	hasCols bool
	rows    [][]string
	errs    map[int]error
	i       int
	forever bool
}

func (s *fakeSource) ReadRow() ([]string, error) {
	if s.forever {
		s.i++
		return []string{fmt.Sprint(s.i), "x"}, nil
	}
	if s.i >= len(s.rows) {
		return nil, io.EOF
	}
	i := s.i
	s.i++
	if err := s.errs[i]; err != nil {
		return nil, err
	}
	return s.rows[i], nil
}

func (s *fakeSource) DefaultName() string { return s.name }
func (s *fakeSource) Columns() []string   { return s.columns }
func (s *fakeSource) HasColumns() bool    { return s.hasCols }

// fakeRepo records what the loader writes.
type fakeRepo struct {
	mu      sync.Mutex
	cfg     storage.Config
	batches [][][]any
	execs   []string
	failAt  int // 1-based batch that fails; 0 never
	closed  bool
}

func (r *fakeRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAt > 0 && len(r.batches)+1 == r.failAt {
		return 0, errors.New("disk full")
	}
	cp := make([][]any, len(rows))
	copy(cp, rows)
	r.batches = append(r.batches, cp)
	return int64(len(rows)), nil
}

func (r *fakeRepo) Exec(_ context.Context, sql string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execs = append(r.execs, sql)
	return nil
}

func (r *fakeRepo) Close() { r.closed = true }

func (r *fakeRepo) rows() [][]any {
	var out [][]any
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

const fakeKind = "loader-fake"

func init() {
	storage.RegisterDDL(fakeKind, func(ctx context.Context, repo storage.Execer, def ddl.TableDef) error {
		return storage.ExecDDL(ctx, repo, def, func(def ddl.TableDef) (string, error) {
			return ddl.Render(def, ddl.Dialect{})
		})
	})
}

func opener(repo *fakeRepo) RepoOpener {
	return func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		repo.cfg = cfg
		return repo, nil
	}
}

func opts(mut func(*Options)) Options {
	o := DefaultOptions()
	o.Kind = fakeKind
	if mut != nil {
		mut(&o)
	}
	return o
}

func parseErr(line int) error {
	return &csvsource.ParseError{Line: line, Err: errors.New("bare quote")}
}

func TestLoad_HeaderInferenceAndBatches(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		name: "Orders 2024",
		rows: [][]string{
			{"\uFEFFOrder ID", "Název", "Price", "Paid"},
			{"1", "a", "1.5", "true"},
			{"2", "b", "2", "false"},
			{"3", "", "3.25", ""},
			{"4", "d", "", "yes"},
			{"5", "e", "5"},
		},
	}
	repo := &fakeRepo{}
	res, err := New(opener(repo), opts(func(o *Options) { o.BatchSize = 2 })).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if res.Table != "orders_2024" {
		t.Errorf("Table = %q", res.Table)
	}
	wantCols := []string{"order_id", "nazev", "price", "paid"}
	if !reflect.DeepEqual(res.Columns, wantCols) || !reflect.DeepEqual(repo.cfg.Columns, wantCols) {
		t.Errorf("Columns = %q, repo got %q", res.Columns, repo.cfg.Columns)
	}
	wantTypes := []ddl.Type{ddl.TypeBigint, ddl.TypeText, ddl.TypeFloat, ddl.TypeBool}
	if !reflect.DeepEqual(res.Types, wantTypes) {
		t.Errorf("Types = %v, want %v", res.Types, wantTypes)
	}
	if res.Read != 5 || res.Inserted != 5 || res.Batches != 3 {
		t.Errorf("Read=%d Inserted=%d Batches=%d, want 5/5/3", res.Read, res.Inserted, res.Batches)
	}

	got := repo.rows()
	if !reflect.DeepEqual(got[0], []any{int64(1), "a", 1.5, true}) {
		t.Errorf("row 0 = %#v", got[0])
	}
	if got[2][1] != nil || got[2][3] != nil {
		t.Errorf("empty cells must be NULL: %#v", got[2])
	}
	if len(got[4]) != 4 || got[4][3] != nil {
		t.Errorf("short row not padded: %#v", got[4])
	}
	if !repo.closed {
		t.Error("repository not closed")
	}
	if len(repo.execs) != 0 {
		t.Errorf("DDL ran without AutoCreate: %q", repo.execs)
	}
}

func TestLoad_ConfiguredColumnsAndOverride(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		name:    "ignored",
		columns: []string{"id", "id", "Note"},
		hasCols: true,
		rows:    [][]string{{"1", "2", "x", "extra"}},
	}
	repo := &fakeRepo{}
	res, err := New(opener(repo), opts(func(o *Options) { o.Table = "Sales.Orders" })).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Table != "sales.orders" || repo.cfg.Table != "sales.orders" {
		t.Fatalf("Table = %q / %q", res.Table, repo.cfg.Table)
	}
	if !reflect.DeepEqual(res.Columns, []string{"id", "id_2", "note"}) {
		t.Fatalf("Columns = %q", res.Columns)
	}
	if rows := repo.rows(); len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("long row not truncated: %#v", rows)
	}
}

func TestLoad_NamesKeptWithoutNormalization(t *testing.T) {
	t.Parallel()

	src := &fakeSource{name: "Raw Name", rows: [][]string{{"\uFEFFA B", " ", "A B"}, {"1", "2", "3"}}}
	repo := &fakeRepo{}
	res, err := New(opener(repo), opts(func(o *Options) { o.NormalizeNames = false })).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Table != "Raw Name" {
		t.Errorf("Table = %q", res.Table)
	}
	if !reflect.DeepEqual(res.Columns, []string{"A B", "col_2", "A B_2"}) {
		t.Errorf("Columns = %q", res.Columns)
	}
	if src.rows[0][0] != "\uFEFFA B" {
		t.Errorf("source header mutated: %q", src.rows[0][0])
	}
}

func TestLoad_EmptySource(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	_, err := New(opener(repo), opts(nil)).Load(context.Background(), &fakeSource{name: "t"})
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("err = %v, want ErrEmptySource", err)
	}

	src := &fakeSource{name: "t", columns: []string{"a"}, hasCols: true}
	res, err := New(opener(repo), opts(func(o *Options) { o.AutoCreate = true })).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("columns without rows: %v", err)
	}
	if res.Inserted != 0 || res.Batches != 0 || len(repo.execs) != 1 {
		t.Fatalf("res = %+v execs = %q", res, repo.execs)
	}
	if res.Types[0] != ddl.TypeText {
		t.Fatalf("no samples must infer text, got %v", res.Types)
	}
}

func TestLoad_EmptyConfiguredColumns(t *testing.T) {
	t.Parallel()

	src := &fakeSource{name: "t", hasCols: true, rows: [][]string{{"1", "2"}, {"3", "4"}}}
	repo := &fakeRepo{}
	_, err := New(opener(repo), opts(nil)).Load(context.Background(), src)
	if !errors.Is(err, ErrNoColumns) {
		t.Fatalf("err = %v, want ErrNoColumns", err)
	}
	if src.i != 0 {
		t.Fatalf("read %d rows, want none", src.i)
	}
	if len(repo.batches) != 0 {
		t.Fatalf("batches = %v", repo.batches)
	}
}

func TestLoad_EmptyColumnsFromCSVSource(t *testing.T) {
	t.Parallel()

	src, err := csvsource.New(context.Background(),
		csvsource.WithStream(strings.NewReader("h1,h2\n1,2\n3,4\n")),
		csvsource.WithColumns(),
	)
	if err != nil {
		t.Fatalf("csvsource.New: %v", err)
	}
	if hdr, ok := src.Discarded(); !ok || !reflect.DeepEqual(hdr, []string{"h1", "h2"}) {
		t.Fatalf("discarded = %q, %v", hdr, ok)
	}

	repo := &fakeRepo{}
	_, err = New(opener(repo), opts(nil)).Load(context.Background(), src)
	if !errors.Is(err, ErrNoColumns) {
		t.Fatalf("err = %v, want ErrNoColumns", err)
	}
	if len(repo.batches) != 0 {
		t.Fatalf("data row consumed as header: batches = %v", repo.batches)
	}
	row, err := src.ReadRow()
	if err != nil || !reflect.DeepEqual(row, []string{"1", "2"}) {
		t.Fatalf("first data row = %q, %v; want it still unread", row, err)
	}
}

func TestLoad_AutoCreate(t *testing.T) {
	t.Parallel()

	src := &fakeSource{name: "events", rows: [][]string{{"id", "at"}, {"1", "2024-01-31 10:00:00"}}}
	repo := &fakeRepo{}
	if _, err := New(opener(repo), opts(func(o *Options) { o.AutoCreate = true })).Load(context.Background(), src); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(repo.execs) != 1 {
		t.Fatalf("execs = %q", repo.execs)
	}
	for _, want := range []string{"CREATE TABLE events", "id BIGINT", "at TIMESTAMP"} {
		if !strings.Contains(repo.execs[0], want) {
			t.Errorf("DDL %q lacks %q", repo.execs[0], want)
		}
	}
}

func TestLoad_ParseErrorPolicies(t *testing.T) {
	t.Parallel()

	rows := [][]string{{"id"}, {"1"}, nil, {"3"}, nil, {"5"}}
	errs := map[int]error{2: parseErr(3), 4: parseErr(5)}

	t.Run("abort", func(t *testing.T) {
		src := &fakeSource{name: "t", rows: rows, errs: errs}
		_, err := New(opener(&fakeRepo{}), opts(nil)).Load(context.Background(), src)
		if !errors.Is(err, csvsource.ErrParse) {
			t.Fatalf("err = %v, want ErrParse", err)
		}
	})

	t.Run("skip", func(t *testing.T) {
		src := &fakeSource{name: "t", rows: rows, errs: errs}
		repo := &fakeRepo{}
		res, err := New(opener(repo), opts(func(o *Options) { o.OnParseError = Skip })).Load(context.Background(), src)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if res.Skipped != 2 || res.Read != 3 || res.Inserted != 3 {
			t.Fatalf("res = %+v", res)
		}
	})

	t.Run("skip budget exceeded", func(t *testing.T) {
		src := &fakeSource{name: "t", rows: rows, errs: errs}
		_, err := New(opener(&fakeRepo{}), opts(func(o *Options) {
			o.OnParseError = Skip
			o.MaxSkipped = 1
		})).Load(context.Background(), src)
		if !errors.Is(err, ErrTooManySkipped) || !errors.Is(err, csvsource.ErrParse) {
			t.Fatalf("err = %v, want ErrTooManySkipped wrapping ErrParse", err)
		}
	})

	t.Run("io errors are never skipped", func(t *testing.T) {
		src := &fakeSource{name: "t", rows: rows, errs: map[int]error{2: io.ErrUnexpectedEOF}}
		_, err := New(opener(&fakeRepo{}), opts(func(o *Options) { o.OnParseError = Skip })).Load(context.Background(), src)
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := New(opener(&fakeRepo{}), opts(func(o *Options) { o.OnParseError = "retry" })).Load(context.Background(), &fakeSource{})
		if err == nil {
			t.Fatal("unknown policy accepted")
		}
	})
}

func TestLoad_Dedupe(t *testing.T) {
	t.Parallel()

	src := &fakeSource{name: "t", rows: [][]string{{"a", "b"}, {"ab", "c"}, {"a", "bc"}, {"ab", "c"}, {"x", "y"}}}
	repo := &fakeRepo{}
	res, err := New(opener(repo), opts(func(o *Options) {
		o.Dedupe = true
		o.SampleRows = 2
	})).Load(context.Background(), src)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Read != 4 || res.Duplicates != 1 || res.Inserted != 3 {
		t.Fatalf("res = %+v", res)
	}
}

func TestLoad_CopyFailureStopsProducer(t *testing.T) {
	t.Parallel()

	src := &fakeSource{name: "t", forever: true}
	src.hasCols, src.columns = true, []string{"id", "v"}
	repo := &fakeRepo{failAt: 2}

	done := make(chan error, 1)
	go func() {
		_, err := New(opener(repo), opts(func(o *Options) { o.BatchSize = 10 })).Load(context.Background(), src)
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "disk full") {
			t.Fatalf("err = %v, want copy failure", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Load did not stop after a copy failure")
	}
}

func TestLoad_OpenFailure(t *testing.T) {
	t.Parallel()

	open := func(context.Context, storage.Config) (storage.Repository, error) {
		return nil, errors.New("refused")
	}
	src := &fakeSource{name: "t", rows: [][]string{{"a"}, {"1"}}}
	if _, err := New(open, opts(nil)).Load(context.Background(), src); err == nil || !strings.Contains(err.Error(), "open storage") {
		t.Fatalf("err = %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	got := New(nil, Options{}).Options()
	if got.BatchSize != DefaultBatchSize || got.SampleRows != DefaultSampleRows ||
		got.MaxSkipped != DefaultMaxSkipped || got.OnParseError != Abort {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if got.NormalizeNames {
		t.Fatal("zero Options must not switch on normalization")
	}
	if !DefaultOptions().NormalizeNames {
		t.Fatal("DefaultOptions must normalize names")
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	if fingerprint([]string{"ab", "c"}) == fingerprint([]string{"a", "bc"}) {
		t.Fatal("cell boundaries must affect the fingerprint")
	}
	if fingerprint([]string{"a", "b"}) != fingerprint([]string{"a", "b"}) {
		t.Fatal("fingerprint not stable")
	}
}
