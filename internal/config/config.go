// Package config defines the pipeline configuration for a csvload run and
// loads it with koanf from, in increasing precedence: built-in defaults, a
// YAML (or JSON) file, and CSVLOAD_-prefixed environment variables.
//
// Example:
//
//	job: orders-nightly
//	source:
//	  kind: http
//	  url: https://exports.example.com/orders.csv
//	parser:
//	  kind: csv
//	  options: { comma: ";" }
//	storage:
//	  kind: postgres
//	  dsn: postgresql://etl@db/warehouse
//	  auto_create: true
//	runtime:
//	  batch_size: 5000
//	  on_parse_error: skip
//	metrics:
//	  kind: prompush
//	  gateway_url: http://pushgateway:9091
package config

import (
	"time"

	"csvload/pkg/rowparser"
)

// Source kinds understood by the pipeline runner.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Parse error policies.
const (
	OnParseErrorAbort = "abort"
	OnParseErrorSkip  = "skip"
)

// Metrics backends.
const (
	MetricsNone     = "none"
	MetricsPromPush = "prompush"
	MetricsDatadog  = "datadog"
)

// Pipeline is the top-level configuration of one load.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `koanf:"job"`

	Source  Source  `koanf:"source"`
	Parser  Parser  `koanf:"parser"`
	Storage Storage `koanf:"storage"`
	Runtime Runtime `koanf:"runtime"`
	Metrics Metrics `koanf:"metrics"`
}

// Source says where the CSV comes from and how its first line is treated.
type Source struct {
	// Kind is "file" or "http".
	Kind string `koanf:"kind"`

	// Path is the local file for kind "file".
	Path string `koanf:"path"`

	// URL, Headers and the retry settings apply to kind "http".
	URL                string            `koanf:"url"`
	Headers            map[string]string `koanf:"headers"`
	Timeout            time.Duration     `koanf:"timeout"`
	MaxRetries         int               `koanf:"max_retries"`
	InsecureSkipVerify bool              `koanf:"insecure_skip_verify"`

	// Table overrides the name derived from the path or URL.
	Table string `koanf:"table"`

	// Columns, when set, name the columns; the first line is then discarded
	// unless KeepHeader is true.
	Columns    []string `koanf:"columns"`
	KeepHeader bool     `koanf:"keep_header"`
}

// Parser selects the row parser and its options.
type Parser struct {
	Kind    string            `koanf:"kind"`
	Options rowparser.Options `koanf:"options"`
}

// Storage selects the destination backend.
type Storage struct {
	// Kind is a registered storage kind: postgres, mysql, mssql or sqlite.
	Kind string `koanf:"kind"`
	DSN  string `koanf:"dsn"`

	// AutoCreate creates the table from inferred types when missing.
	AutoCreate bool `koanf:"auto_create"`
}

// Runtime tunes batching, inference and error handling.
type Runtime struct {
	BatchSize      int    `koanf:"batch_size"`
	SampleRows     int    `koanf:"sample_rows"`
	OnParseError   string `koanf:"on_parse_error"`
	MaxSkipped     int    `koanf:"max_skipped"`
	Dedupe         bool   `koanf:"dedupe"`
	NormalizeNames bool   `koanf:"normalize_names"`
}

// Metrics selects where run metrics are sent. Kind "" or "none" disables them.
type Metrics struct {
	Kind string `koanf:"kind"`

	// GatewayURL is the Pushgateway base URL for kind "prompush".
	GatewayURL string `koanf:"gateway_url"`

	// Addr, Namespace and Tags configure kind "datadog".
	Addr      string   `koanf:"addr"`
	Namespace string   `koanf:"namespace"`
	Tags      []string `koanf:"tags"`
}

// Defaults returns the values applied before any file or environment layer.
func Defaults() map[string]any {
	return map[string]any{
		"job":                     "csvload",
		"source.kind":             SourceFile,
		"source.timeout":          "30s",
		"source.max_retries":      3,
		"parser.kind":             rowparser.DefaultKind,
		"runtime.batch_size":      1000,
		"runtime.sample_rows":     100,
		"runtime.on_parse_error":  OnParseErrorAbort,
		"runtime.max_skipped":     400,
		"runtime.normalize_names": true,
		"metrics.kind":            MetricsNone,
	}
}
