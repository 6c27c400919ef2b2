// Package csv implements the default "csv" row parser. It wraps encoding/csv
// with a small set of tuning options and two optional byte-level stages that
// run before tokenizing: a streaming find/replace for known-bad sequences in
// real-world exports, and charset decoding when binary-safe mode is off.
//
// Nothing is buffered beyond encoding/csv's own line buffer, so multi-GB
// inputs stream in bounded memory.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"csvload/pkg/rowparser"
)

// Kind is the registry name of this parser.
const Kind = rowparser.DefaultKind

// Option keys understood by NewParser.
const (
	OptBinarySafe      = "binary_safe"       // bool, default true
	OptEncoding        = "encoding"          // string, used when binary_safe=false
	OptComma           = "comma"             // string, first rune; default ","
	OptComment         = "comment"           // string, first rune; default none
	OptLazyQuotes      = "lazy_quotes"       // bool
	OptFieldsPerRecord = "fields_per_record" // int; 0 → variable width
	OptTrimSpace       = "trim_space"        // bool, default false
	OptRewrite         = "rewrite"           // object {from: to}
)

// Settings is the typed form of the option bag.
type Settings struct {
	BinarySafe      bool
	Encoding        string
	Comma           rune
	Comment         rune
	LazyQuotes      bool
	FieldsPerRecord int
	TrimSpace       bool
	Rewrite         map[string]string
}

// SettingsFrom reads Settings from opts, applying defaults for absent keys.
func SettingsFrom(opts rowparser.Options) Settings {
	return Settings{
		BinarySafe:      opts.Bool(OptBinarySafe, true),
		Encoding:        opts.String(OptEncoding, "utf-8"),
		Comma:           opts.Rune(OptComma, ','),
		Comment:         opts.Rune(OptComment, 0),
		LazyQuotes:      opts.Bool(OptLazyQuotes, false),
		FieldsPerRecord: opts.Int(OptFieldsPerRecord, 0),
		TrimSpace:       opts.Bool(OptTrimSpace, false),
		Rewrite:         opts.StringMap(OptRewrite),
	}
}

// Parser reads CSV rows from a stream. A Parser binds to the first stream it
// is given and keeps reading from it; use one Parser per stream. It is not
// safe for concurrent use.
type Parser struct {
	set Settings

	cr  *csv.Reader
	eof bool
}

// NewParser validates opts and returns a Parser.
func NewParser(opts rowparser.Options) (*Parser, error) {
	set := SettingsFrom(opts)
	if set.Comma == '\r' || set.Comma == '\n' || set.Comma == '"' || set.Comma == utf8.RuneError {
		return nil, fmt.Errorf("csv: invalid delimiter %q", set.Comma)
	}
	if set.Comment != 0 && set.Comment == set.Comma {
		return nil, fmt.Errorf("csv: comment character equals delimiter %q", set.Comma)
	}
	if !set.BinarySafe {
		// Fail at construction rather than on first read.
		if _, err := textDecoder(strings.NewReader(""), set.Encoding); err != nil {
			return nil, err
		}
	}
	return &Parser{set: set}, nil
}

// Settings returns the effective settings.
func (p *Parser) Settings() Settings { return p.set }

// ReadRow returns the next row from r, or io.EOF once the stream is
// exhausted. Malformed records are reported as *rowparser.ParseError; other
// read failures are returned wrapped.
func (p *Parser) ReadRow(r io.Reader) ([]string, error) {
	if p.eof {
		return nil, io.EOF
	}
	if p.cr == nil {
		if err := p.bind(r); err != nil {
			return nil, err
		}
	}

	rec, err := p.cr.Read()
	if err == io.EOF {
		p.eof = true
		return nil, io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			// encoding/csv resumes at the next record, so a caller may skip.
			// On ErrFieldCount rec is the complete record; it rides on the error.
			return nil, &rowparser.ParseError{Line: pe.StartLine, Err: pe.Err, Record: rec}
		}
		return nil, fmt.Errorf("csv read: %w", err)
	}

	if p.set.TrimSpace {
		for i, v := range rec {
			rec[i] = strings.TrimSpace(v)
		}
	}
	return rec, nil
}

func (p *Parser) bind(r io.Reader) error {
	if r == nil {
		return errors.New("csv: nil stream")
	}
	src := wrapRewrites(r, p.set.Rewrite)
	if !p.set.BinarySafe {
		dec, err := textDecoder(src, p.set.Encoding)
		if err != nil {
			return err
		}
		src = dec
	}

	cr := csv.NewReader(src)
	cr.Comma = p.set.Comma
	cr.Comment = p.set.Comment
	cr.LazyQuotes = p.set.LazyQuotes
	if p.set.FieldsPerRecord != 0 {
		cr.FieldsPerRecord = p.set.FieldsPerRecord
	} else {
		cr.FieldsPerRecord = -1 // tolerant by default
	}
	p.cr = cr
	return nil
}
