package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"csvload/internal/storage"
	"csvload/pkg/rowparser"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single finding. Path is a dotted path into the config, e.g.
// "storage.dsn".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate returns every error-severity issue joined with errors.Join, or nil.
func (p Pipeline) Validate() error {
	var errs []error
	for _, iss := range Lint(p) {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	return errors.Join(errs...)
}

// Lint performs static checks over p without mutating it and returns all
// findings, warnings included.
func Lint(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{SeverityError, "job", "job must not be empty; it labels logs and metrics"})
	}
	issues = append(issues, lintSource(p.Source)...)
	issues = append(issues, lintParser(p.Parser)...)
	issues = append(issues, lintStorage(p.Storage)...)
	issues = append(issues, lintRuntime(p.Runtime, p.Storage)...)
	issues = append(issues, lintMetrics(p.Metrics)...)
	return issues
}

func lintSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case SourceFile:
		if strings.TrimSpace(s.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.path", "file source requires a non-empty path"})
		}
		if s.URL != "" {
			issues = append(issues, Issue{SeverityWarning, "source.url", "url is ignored for file sources"})
		}
	case SourceHTTP:
		u, err := url.Parse(s.URL)
		switch {
		case strings.TrimSpace(s.URL) == "":
			issues = append(issues, Issue{SeverityError, "source.url", "http source requires a url"})
		case err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "":
			issues = append(issues, Issue{SeverityError, "source.url", fmt.Sprintf("%q is not an absolute http(s) URL", s.URL)})
		}
		if s.Path != "" {
			issues = append(issues, Issue{SeverityWarning, "source.path", "path is ignored for http sources"})
		}
		if s.MaxRetries < 0 {
			issues = append(issues, Issue{SeverityError, "source.max_retries", "max_retries must not be negative"})
		}
		if s.InsecureSkipVerify {
			issues = append(issues, Issue{SeverityWarning, "source.insecure_skip_verify", "TLS certificate verification is disabled"})
		}
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source.kind must not be empty"})
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q; want file or http", s.Kind)})
	}

	for i, c := range s.Columns {
		if strings.TrimSpace(c) == "" {
			issues = append(issues, Issue{SeverityError, fmt.Sprintf("source.columns[%d]", i), "column names must not be empty"})
		}
	}
	if s.KeepHeader && len(s.Columns) == 0 {
		issues = append(issues, Issue{SeverityWarning, "source.keep_header", "keep_header has no effect without columns"})
	}
	return issues
}

func lintParser(p Parser) []Issue {
	if strings.TrimSpace(p.Kind) == "" {
		return []Issue{{SeverityError, "parser.kind", "parser.kind must not be empty"}}
	}
	if _, err := rowparser.Lookup(p.Kind); err != nil {
		return []Issue{{SeverityError, "parser.kind", fmt.Sprintf("parser kind %q is not registered (have %v)", p.Kind, rowparser.Kinds())}}
	}
	return nil
}

func lintStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		issues = append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	} else if kinds := storage.ListKinds(); !slices.Contains(kinds, s.Kind) {
		issues = append(issues, Issue{SeverityError, "storage.kind", fmt.Sprintf("storage kind %q is not registered (have %v)", s.Kind, kinds)})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "storage.dsn", "storage.dsn must not be empty"})
	}
	return issues
}

func lintRuntime(r Runtime, s Storage) []Issue {
	var issues []Issue

	if r.BatchSize <= 0 {
		issues = append(issues, Issue{SeverityError, "runtime.batch_size", fmt.Sprintf("batch_size=%d; must be positive", r.BatchSize)})
	}
	if r.SampleRows < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.sample_rows", "sample_rows must not be negative"})
	}
	if r.SampleRows == 0 && s.AutoCreate {
		issues = append(issues, Issue{SeverityWarning, "runtime.sample_rows", "sample_rows=0 with auto_create; every column will be text"})
	}
	switch r.OnParseError {
	case OnParseErrorAbort, OnParseErrorSkip:
	default:
		issues = append(issues, Issue{SeverityError, "runtime.on_parse_error", fmt.Sprintf("on_parse_error=%q; want abort or skip", r.OnParseError)})
	}
	if r.MaxSkipped < 0 {
		issues = append(issues, Issue{SeverityError, "runtime.max_skipped", "max_skipped must not be negative"})
	}
	return issues
}

func lintMetrics(m Metrics) []Issue {
	switch m.Kind {
	case "", MetricsNone:
		return nil
	case MetricsPromPush:
		if strings.TrimSpace(m.GatewayURL) == "" {
			return []Issue{{SeverityError, "metrics.gateway_url", "prompush metrics require gateway_url"}}
		}
	case MetricsDatadog:
		if strings.TrimSpace(m.Addr) == "" {
			return []Issue{{SeverityError, "metrics.addr", "datadog metrics require addr"}}
		}
	default:
		return []Issue{{SeverityError, "metrics.kind", fmt.Sprintf("unknown metrics kind %q; want none, prompush or datadog", m.Kind)}}
	}
	return nil
}
