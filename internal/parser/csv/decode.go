package csv

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// textDecoder returns a reader that decodes r from the named charset into
// UTF-8. A leading byte-order mark is honored and stripped; invalid input is
// replaced with U+FFFD rather than passed through. Names follow the WHATWG
// encoding index ("utf-8", "windows-1250", "iso-8859-2", "shift_jis", ...).
func textDecoder(r io.Reader, charset string) (io.Reader, error) {
	name := strings.TrimSpace(charset)
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("csv: unknown encoding %q: %w", charset, err)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}
