package csvsource

import (
	"io"

	"csvload/pkg/rowparser"
)

// OptBinarySafe is the parser option that keeps input bytes untouched.
const OptBinarySafe = "binary_safe"

// Config is the resolved set of inputs for a Source.
//
// Path, Table and Columns carry explicit presence flags so that an empty
// value supplied on purpose is distinguishable from "not configured".
type Config struct {
	// Parser, when non-nil, is used as is; ParserKind and the option maps
	// are ignored.
	Parser rowparser.RowParser

	// ParserKind selects a registered parser factory. Default "csv".
	ParserKind string

	// ParserDefaults are the baseline construction options.
	// Default {"binary_safe": true}.
	ParserDefaults rowparser.Options

	// ParserOptions are merged over ParserDefaults, caller keys winning.
	ParserOptions rowparser.Options

	// Path is opened read-only when Stream is nil.
	Path string

	// Stream is an already-open reader owned by the caller.
	Stream io.Reader

	// Table overrides the derived table name.
	Table string

	// Columns are explicit column names. When set, the first row of the
	// input is a header and is discarded unless KeepHeader is true.
	Columns []string

	// KeepHeader preserves the first row even when Columns is set.
	KeepHeader bool

	hasPath    bool
	hasTable   bool
	hasColumns bool
}

// HasPath reports whether a source path was configured.
func (c Config) HasPath() bool { return c.hasPath }

// HasTable reports whether a table name was configured.
func (c Config) HasTable() bool { return c.hasTable }

// HasColumns reports whether explicit columns were configured, including an
// empty list.
func (c Config) HasColumns() bool { return c.hasColumns }

// DefaultConfig returns the defaults. Maps are fresh on every call.
func DefaultConfig() Config {
	return Config{
		ParserKind:     rowparser.DefaultKind,
		ParserDefaults: rowparser.Options{OptBinarySafe: true},
		ParserOptions:  rowparser.Options{},
	}
}

// Option overlays one caller value onto a Config.
type Option func(*Config)

// WithParser injects a ready parser instance.
func WithParser(p rowparser.RowParser) Option {
	return func(c *Config) { c.Parser = p }
}

// WithParserKind selects a registered parser implementation.
func WithParserKind(kind string) Option {
	return func(c *Config) { c.ParserKind = kind }
}

// WithParserDefaults replaces the baseline parser options.
func WithParserDefaults(opts rowparser.Options) Option {
	return func(c *Config) { c.ParserDefaults = opts.Clone() }
}

// WithParserOptions sets the caller parser overrides.
func WithParserOptions(opts rowparser.Options) Option {
	return func(c *Config) { c.ParserOptions = opts.Clone() }
}

// WithPath sets the file to open.
func WithPath(path string) Option {
	return func(c *Config) { c.Path, c.hasPath = path, true }
}

// WithStream injects an open reader. The Source never closes it.
func WithStream(r io.Reader) Option {
	return func(c *Config) { c.Stream = r }
}

// WithTable sets the table name.
func WithTable(name string) Option {
	return func(c *Config) { c.Table, c.hasTable = name, true }
}

// WithColumns sets explicit column names. Calling it with no names still
// marks columns as configured.
func WithColumns(names ...string) Option {
	return func(c *Config) {
		c.Columns = append(make([]string, 0, len(names)), names...)
		c.hasColumns = true
	}
}

// WithKeepHeader controls whether the first row survives when columns are set.
func WithKeepHeader(keep bool) Option {
	return func(c *Config) { c.KeepHeader = keep }
}

// ResolveConfig applies opts, in order, over DefaultConfig. It performs no
// validation.
func ResolveConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
