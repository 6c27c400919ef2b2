package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, payload string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(payload), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return p
}

// TestLocalOpen covers success, missing file, directories and a pre-canceled
// context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	canceled := func() context.Context {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	cases := []struct {
		name            string
		path            func(t *testing.T) string
		ctx             func() context.Context
		wantErrIs       error
		wantErrContains string
		wantContent     string
	}{
		{
			name:        "reads_content",
			path:        func(t *testing.T) string { return writeFile(t, "orders.csv", "id\n1\n") },
			ctx:         context.Background,
			wantContent: "id\n1\n",
		},
		{
			name:            "missing_file_wraps_not_exist",
			path:            func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.csv") },
			ctx:             context.Background,
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "open ",
		},
		{
			name:      "directory_rejected",
			path:      func(t *testing.T) string { return t.TempDir() },
			ctx:       context.Background,
			wantErrIs: ErrIsDir,
		},
		{
			name:      "pre_canceled_context",
			path:      func(t *testing.T) string { return writeFile(t, "x.csv", "ignored") },
			ctx:       canceled,
			wantErrIs: context.Canceled,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			rc, err := NewLocal(c.path(t)).Open(c.ctx())
			if c.wantErrIs != nil {
				if !errors.Is(err, c.wantErrIs) {
					t.Fatalf("errors.Is(%v, %v) = false", err, c.wantErrIs)
				}
				if c.wantErrContains != "" && !strings.Contains(err.Error(), c.wantErrContains) {
					t.Fatalf("error %q does not contain %q", err, c.wantErrContains)
				}
				if rc != nil {
					_ = rc.Close()
					t.Fatalf("got non-nil ReadCloser on error: %T", rc)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()

			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != c.wantContent {
				t.Fatalf("content: got %q want %q", got, c.wantContent)
			}
		})
	}
}

func TestBaseName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"/tmp/orders.csv":    "orders",
		"orders":             "orders",
		"dump.tar.gz":        "dump.tar",
		"/data/.hidden":      "",
		"relative/dir/a.b.c": "a.b",
		"C.csv":              "C",
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
	if NewLocal("/x/y.csv").Name() != "y" {
		t.Fatalf("Local.Name")
	}
}

// BenchmarkLocalOpen measures open+close of a small file.
func BenchmarkLocalOpen(b *testing.B) {
	p := filepath.Join(b.TempDir(), "data.csv")
	if err := os.WriteFile(p, []byte("payload"), 0o644); err != nil {
		b.Fatalf("write test file: %v", err)
	}
	src := NewLocal(p)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rc, err := src.Open(ctx)
		if err != nil {
			b.Fatal(err)
		}
		if err := rc.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
