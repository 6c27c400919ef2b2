package ddl

import (
	"strconv"
	"strings"
	"time"
)

// DateLayouts are the accepted date formats (no time component).
var DateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01.02.2006",
	"02/01/2006",
	"01/02/2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
	"20060102",
}

// TimestampLayouts are the accepted timestamp formats.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
}

// Infer returns one logical type per column from the sampled rows. Rows may
// be shorter or longer than width; missing cells count as empty.
func Infer(width int, samples [][]string) []Type {
	cols := make([][]string, width)
	for _, row := range samples {
		for i := 0; i < width && i < len(row); i++ {
			cols[i] = append(cols[i], row[i])
		}
	}
	types := make([]Type, width)
	for i := range cols {
		types[i] = InferColumn(cols[i])
	}
	return types
}

// InferColumn picks the narrowest type that every non-empty value satisfies,
// trying bigint, bool, float, then date/timestamp. A column with no
// non-empty values is text.
func InferColumn(values []string) Type {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return TypeText
	}
	if allMatch(nonEmpty, isInt) {
		return TypeBigint
	}
	if allMatch(nonEmpty, isBool) {
		return TypeBool
	}
	if allMatch(nonEmpty, isNumber) {
		return TypeFloat
	}

	anyTime := false
	for _, v := range nonEmpty {
		ok, hasTime := parseDateOrTimestamp(v)
		if !ok {
			return TypeText
		}
		anyTime = anyTime || hasTime
	}
	if anyTime {
		return TypeTimestamp
	}
	return TypeDate
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isBool(s string) bool {
	_, ok := parseBool(s)
	return ok
}

// parseBool accepts common textual booleans and 1/0.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// isNumber accepts integers, decimals and scientific notation. Checked after
// isInt, so a column reaching it holds at least one non-integer.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func parseDateOrTimestamp(s string) (ok bool, hasTime bool) {
	if _, ok := parseTime(s, TimestampLayouts); ok {
		return true, true
	}
	if _, ok := parseTime(s, DateLayouts); ok {
		return true, false
	}
	return false, false
}

func parseTime(s string, layouts []string) (time.Time, bool) {
	st := strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, st); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
