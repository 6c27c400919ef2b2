package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	gddl "csvload/internal/ddl"
	"csvload/internal/storage"
)

func newRepo(tb testing.TB, table string, cols []string) *Repository {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "test.db")
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn, Table: table, Columns: cols})
	if err != nil {
		tb.Fatalf("NewRepository: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()
	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("want error for empty DSN")
	}
}

func TestCopyFrom_InsertsRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cols := []string{"id", "full name"}
	r := newRepo(t, "people", cols)

	def := gddl.FromInference("people", cols, []gddl.Type{gddl.TypeBigint, gddl.TypeText})
	if err := storage.EnsureTable(ctx, Kind, r, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	// Running the bootstrap twice must be harmless.
	if err := storage.EnsureTable(ctx, Kind, r, def); err != nil {
		t.Fatalf("EnsureTable again: %v", err)
	}

	n, err := r.CopyFrom(ctx, cols, [][]any{{int64(1), "Ann"}, {int64(2), nil}})
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}

	var count, nulls int
	if err := r.DB().QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(CASE WHEN "full name" IS NULL THEN 1 ELSE 0 END) FROM "people"`,
	).Scan(&count, &nulls); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 2 || nulls != 1 {
		t.Fatalf("count=%d nulls=%d", count, nulls)
	}
}

func TestCopyFrom_RowWidthMismatchRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := newRepo(t, "t", []string{"a", "b"})
	if err := r.Exec(ctx, `CREATE TABLE "t" ("a" TEXT, "b" TEXT)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	n, err := r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{"1", "2"}, {"only"}})
	if err == nil || !strings.Contains(err.Error(), "row 1") {
		t.Fatalf("want width error, got %v", err)
	}
	if n != 0 {
		t.Fatalf("inserted = %d after rollback", n)
	}
	var count int
	if err := r.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM "t"`).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 0 {
		t.Fatalf("rows survived rollback: %d", count)
	}
}

func TestCopyFrom_Empty(t *testing.T) {
	t.Parallel()
	r := newRepo(t, "t", []string{"a"})
	if n, err := r.CopyFrom(context.Background(), []string{"a"}, nil); n != 0 || err != nil {
		t.Fatalf("got %d, %v", n, err)
	}
	if _, err := r.CopyFrom(context.Background(), nil, [][]any{{1}}); err == nil {
		t.Fatal("want error for empty columns")
	}
}

func TestExec_BlankIsNoop(t *testing.T) {
	t.Parallel()
	r := newRepo(t, "t", nil)
	if err := r.Exec(context.Background(), "   "); err != nil {
		t.Fatalf("Exec: %v", err)
	}
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()
	got := insertSQL("main.t", []string{"a", `b"c`})
	want := `INSERT INTO "main"."t" ("a", "b""c") VALUES (?, ?)`
	if got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
}

func TestRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind: Kind, DSN: "x.db", Table: "events", Columns: []string{"id"},
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.DSN != "x.db" || gotCfg.Table != "events" || len(gotCfg.Columns) != 1 {
		t.Fatalf("cfg not mapped: %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close did not reach closeFn")
	}
}
