package csvsource

import (
	"errors"
	"fmt"

	"csvload/pkg/rowparser"
)

var (
	// ErrConfiguration reports missing or conflicting inputs. Setup fails
	// with it before any I/O happens.
	ErrConfiguration = errors.New("csvsource: configuration error")

	// ErrDependencyLoad reports a parser kind that is not registered or whose
	// factory refused the options.
	ErrDependencyLoad = errors.New("csvsource: parser could not be loaded")

	// ErrOpen reports a failure to open the source path. The OS error stays
	// reachable through errors.Is.
	ErrOpen = errors.New("csvsource: open failed")

	// ErrParse reports malformed input from the parser.
	ErrParse = errors.New("csvsource: parse error")
)

// ParseError carries the line number of malformed input. It matches both
// ErrParse and the parser's underlying error. Record is the parser's partial
// record, if it produced one.
type ParseError struct {
	Line   int
	Err    error
	Record []string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("csvsource: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("csvsource: %v", e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// wrapRead maps a parser read error onto the package's error kinds.
func wrapRead(err error) error {
	var pe *rowparser.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err, Record: pe.Record}
	}
	return err
}
