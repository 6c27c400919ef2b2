package csv

import "strings"

const utf8BOM = "\uFEFF"

// StripHeaderBOM trims a leading byte order mark from the first cell and
// returns the same slice. Binary-safe mode skips decoding and so keeps the
// mark; loaders reading the first row as column names run it through here.
func StripHeaderBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header
}
