package httpds

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// filenameCleaner replaces sequences of non-alphanumeric characters with "_".
var filenameCleaner = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// HashString returns a stable 16-digit hex xxh3 digest of s.
func HashString(s string) string {
	h := strconv.FormatUint(xxh3.HashString(s), 16)
	return strings.Repeat("0", 16-len(h)) + h
}

// NameFromURL derives a name hint from the last path segment of rawURL with
// its final extension removed ("https://x/exports/orders.csv?d=1" gives
// "orders"). It falls back to SafeFilenameFromURL when the path has no usable
// segment.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		base := path.Base(u.Path)
		if base != "." && base != "/" {
			if name := strings.TrimSuffix(base, path.Ext(base)); name != "" {
				return name
			}
		}
	}
	return SafeFilenameFromURL(rawURL)
}

// SafeFilenameFromURL derives a filesystem-safe name from rawURL: its query
// string with runs of non-alphanumerics collapsed to "_", or "u_" plus a hash
// of the whole URL when it cannot be parsed or has no usable query.
func SafeFilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "u_" + HashString(rawURL)
	}

	clean := strings.Trim(filenameCleaner.ReplaceAllString(u.RawQuery, "_"), "_")
	if clean == "" {
		return "u_" + HashString(rawURL)
	}
	return clean
}
