package httpds

import (
	"strings"
	"testing"
)

func TestHashString_Stable(t *testing.T) {
	t.Parallel()

	const input = "https://example.com/path?x=1&y=2"
	got := HashString(input)
	if len(got) != 16 {
		t.Fatalf("HashString(%q) = %q, want 16 hex digits", input, got)
	}
	if got != HashString(input) {
		t.Fatalf("HashString(%q) not stable", input)
	}
	if got == HashString(input+"&z=3") {
		t.Fatalf("different inputs hashed equal")
	}
}

func TestNameFromURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://example.com/exports/orders.csv":         "orders",
		"https://example.com/exports/orders.csv?day=1":   "orders",
		"https://example.com/dump.tar.gz":                "dump.tar",
		"https://example.com/export?table=sales&fmt=csv": "export",
		"https://example.com/?table=sales":               "table_sales",
	}
	for in, want := range tests {
		if got := NameFromURL(in); got != want {
			t.Errorf("NameFromURL(%q) = %q, want %q", in, got, want)
		}
	}

	if got := NameFromURL("https://example.com/"); !strings.HasPrefix(got, "u_") {
		t.Errorf("NameFromURL(bare host) = %q, want hash fallback", got)
	}
}

func TestSafeFilenameFromURL(t *testing.T) {
	t.Parallel()

	got := SafeFilenameFromURL("https://example.com/search?q=hello+world&lang=en")
	if got != "q_hello_world_lang_en" {
		t.Fatalf("SafeFilenameFromURL = %q", got)
	}
	if got := SafeFilenameFromURL(":// not a url"); !strings.HasPrefix(got, "u_") {
		t.Fatalf("invalid URL = %q, want hash fallback", got)
	}
	if got := SafeFilenameFromURL("https://example.com/noquery"); !strings.HasPrefix(got, "u_") {
		t.Fatalf("empty query = %q, want hash fallback", got)
	}
}
