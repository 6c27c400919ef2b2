package ddl

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxIdentLen is the identifier length limit applied by NormalizeName
// (PostgreSQL's NAMEDATALEN-1).
const MaxIdentLen = 63

// NormalizeName converts arbitrary header text into a lowercase ASCII
// identifier:
//  1. lowercase
//  2. strip accents (NFD, remove Mn, NFC)
//  3. keep [a-z0-9_]; space, dash and dot become one underscore; drop others
//  4. fall back to "col" if nothing is left
//  5. cap the length at MaxIdentLen (first 10 + last 53 bytes)
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	prevUnderscore := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return truncateIdent(name)
}

func truncateIdent(s string) string {
	if len(s) > MaxIdentLen {
		return s[:10] + s[len(s)-(MaxIdentLen-10):]
	}
	return s
}

// UniqueNames returns names with duplicates suffixed _2, _3, ... in order of
// appearance. The input is not modified.
func UniqueNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		cand := n
		for k := 2; seen[cand]; k++ {
			cand = n + "_" + strconv.Itoa(k)
		}
		seen[cand] = true
		out[i] = cand
	}
	return out
}

// NormalizeNames applies NormalizeName to every name, then UniqueNames.
func NormalizeNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n)
	}
	return UniqueNames(out)
}
