package loader

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"csvload/internal/config"
	"csvload/internal/metrics"
	"csvload/pkg/rowparser"
)

func sqlitePipeline(t *testing.T) (config.Pipeline, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "warehouse.db")
	return config.Pipeline{
		Job:     "test",
		Source:  config.Source{Kind: config.SourceFile},
		Parser:  config.Parser{Kind: "csv", Options: rowparser.Options{"comma": ";"}},
		Storage: config.Storage{Kind: "sqlite", DSN: dsn, AutoCreate: true},
		Runtime: config.Runtime{
			BatchSize:      2,
			SampleRows:     10,
			OnParseError:   config.OnParseErrorSkip,
			MaxSkipped:     10,
			NormalizeNames: true,
		},
		Metrics: config.Metrics{Kind: config.MetricsNone},
	}, dsn
}

func queryCount(t *testing.T, dsn, query string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open %s: %v", dsn, err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestRun_FileToSQLite(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "Zákazníci.csv")
	body := "ID;Jméno;Částka\n1;Ann;1.5\n2;Bob;\n3;\"broken;2\n"
	if err := os.WriteFile(csvPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, dsn := sqlitePipeline(t)
	cfg.Source.Path = csvPath

	res, err := Run(context.Background(), cfg, RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Table != "zakaznici" {
		t.Fatalf("Table = %q", res.Table)
	}
	if strings.Join(res.Columns, ",") != "id,jmeno,castka" {
		t.Fatalf("Columns = %q", res.Columns)
	}
	if res.Inserted != 2 || res.Skipped != 1 {
		t.Fatalf("res = %+v", res)
	}

	if n := queryCount(t, dsn, `SELECT COUNT(*) FROM "zakaznici"`); n != 2 {
		t.Fatalf("rows in table = %d", n)
	}
	if n := queryCount(t, dsn, `SELECT COUNT(*) FROM "zakaznici" WHERE "castka" IS NULL`); n != 1 {
		t.Fatalf("NULL amounts = %d", n)
	}
}

func TestRun_HTTPSourceWithPushgateway(t *testing.T) {
	t.Parallel()

	var pushes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/exports/daily_orders.csv", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "sku;qty\nA-1;3\nB-2;4\nA-1;3\n")
	})
	mux.HandleFunc("/metrics/", func(w http.ResponseWriter, r *http.Request) {
		pushes.Add(1)
		w.WriteHeader(http.StatusAccepted)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg, dsn := sqlitePipeline(t)
	cfg.Source = config.Source{Kind: config.SourceHTTP, URL: srv.URL + "/exports/daily_orders.csv"}
	cfg.Runtime.Dedupe = true
	cfg.Metrics = config.Metrics{Kind: config.MetricsPromPush, GatewayURL: srv.URL}

	res, err := Run(context.Background(), cfg, RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Table != "daily_orders" || res.Inserted != 2 || res.Duplicates != 1 {
		t.Fatalf("res = %+v", res)
	}
	if n := queryCount(t, dsn, `SELECT SUM("qty") FROM "daily_orders"`); n != 7 {
		t.Fatalf("sum(qty) = %d", n)
	}
	if pushes.Load() != 1 {
		t.Fatalf("pushes = %d, want 1", pushes.Load())
	}
}

func TestRun_ConfiguredColumnsAndTable(t *testing.T) {
	t.Parallel()

	csvPath := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(csvPath, []byte("c1;c2\n10;x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, dsn := sqlitePipeline(t)
	cfg.Source.Path = csvPath
	cfg.Source.Table = "Items"
	cfg.Source.Columns = []string{"Qty", "Label"}

	res, err := Run(context.Background(), cfg, RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Table != "items" || strings.Join(res.Columns, ",") != "qty,label" || res.Read != 1 {
		t.Fatalf("res = %+v", res)
	}
	if n := queryCount(t, dsn, `SELECT "qty" FROM "items"`); n != 10 {
		t.Fatalf("qty = %d", n)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg, _ := sqlitePipeline(t)
	_, err := Run(context.Background(), cfg, RunOptions{})
	if err == nil || !strings.Contains(err.Error(), "source.path") {
		t.Fatalf("err = %v, want a source.path finding", err)
	}
}

func TestInstallMetrics_NoneKeepsBackend(t *testing.T) {
	restore, err := installMetrics("job", config.Metrics{Kind: config.MetricsNone}, nil)
	if err != nil {
		t.Fatalf("installMetrics: %v", err)
	}
	restore()
	if err := metrics.Flush(); err != nil {
		t.Fatalf("Flush on default backend: %v", err)
	}
}
