package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"csvload/internal/config"
	"csvload/internal/datasource/httpds"
	"csvload/internal/metrics"
	"csvload/internal/metrics/datadog"
	"csvload/internal/metrics/prompush"
	"csvload/pkg/csvsource"

	_ "csvload/internal/storage/all"
)

// RunOptions carries dependencies that do not belong in a config file.
type RunOptions struct {
	Logger *slog.Logger

	// Open replaces storage.New.
	Open RepoOpener

	// HTTPTransport replaces the default transport for http sources.
	HTTPTransport http.RoundTripper
}

// Run validates cfg, installs the configured metrics backend for the duration
// of the run, opens the source and loads it.
func Run(ctx context.Context, cfg config.Pipeline, ro RunOptions) (Result, error) {
	log := ro.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("job", cfg.Job)

	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid config: %w", err)
	}

	restore, err := installMetrics(cfg.Job, cfg.Metrics, log)
	if err != nil {
		return Result{}, err
	}
	defer restore()

	opts := []csvsource.Option{
		csvsource.WithParserKind(cfg.Parser.Kind),
		csvsource.WithParserOptions(cfg.Parser.Options),
		csvsource.WithKeepHeader(cfg.Source.KeepHeader),
	}
	if cfg.Source.Table != "" {
		opts = append(opts, csvsource.WithTable(cfg.Source.Table))
	}
	if len(cfg.Source.Columns) > 0 {
		opts = append(opts, csvsource.WithColumns(cfg.Source.Columns...))
	}

	switch cfg.Source.Kind {
	case config.SourceHTTP:
		body, name, err := openHTTP(ctx, cfg.Source, ro.HTTPTransport, log)
		if err != nil {
			return Result{}, err
		}
		defer body.Close()
		opts = append(opts, csvsource.WithStream(body))
		if cfg.Source.Table == "" {
			opts = append(opts, csvsource.WithTable(name))
		}
	default:
		opts = append(opts, csvsource.WithPath(cfg.Source.Path))
	}

	src, err := csvsource.New(ctx, opts...)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	l := New(ro.Open, Options{
		Kind:           cfg.Storage.Kind,
		DSN:            cfg.Storage.DSN,
		BatchSize:      cfg.Runtime.BatchSize,
		SampleRows:     cfg.Runtime.SampleRows,
		OnParseError:   ParseErrorPolicy(cfg.Runtime.OnParseError),
		MaxSkipped:     cfg.Runtime.MaxSkipped,
		Dedupe:         cfg.Runtime.Dedupe,
		AutoCreate:     cfg.Storage.AutoCreate,
		NormalizeNames: cfg.Runtime.NormalizeNames,
		Logger:         log,
	})
	return l.Load(ctx, src)
}

func openHTTP(ctx context.Context, s config.Source, rt http.RoundTripper, log *slog.Logger) (io.ReadCloser, string, error) {
	var hdr http.Header
	if len(s.Headers) > 0 {
		hdr = make(http.Header, len(s.Headers))
		for k, v := range s.Headers {
			hdr.Set(k, v)
		}
	}
	client := httpds.NewClient(httpds.Config{
		Timeout:            s.Timeout,
		MaxRetries:         s.MaxRetries,
		InsecureSkipVerify: s.InsecureSkipVerify,
		Transport:          rt,
		Logger:             log,
	})
	hs := httpds.NewSource(client, s.URL, hdr)

	start := time.Now()
	body, err := hs.Open(ctx)
	metrics.RecordStep(hs.Name(), "download", err, time.Since(start))
	if err != nil {
		return nil, "", err
	}
	return body, hs.Name(), nil
}

// installMetrics swaps in the configured backend and returns a function that
// flushes it and restores the previous one.
func installMetrics(job string, m config.Metrics, log *slog.Logger) (func(), error) {
	var b metrics.Backend
	switch m.Kind {
	case config.MetricsPromPush:
		pb, err := prompush.NewBackend(job, m.GatewayURL)
		if err != nil {
			return nil, err
		}
		b = pb
	case config.MetricsDatadog:
		db, err := datadog.NewBackend(datadog.Config{Addr: m.Addr, Namespace: m.Namespace, GlobalTags: m.Tags})
		if err != nil {
			return nil, err
		}
		b = db
	default:
		return func() {}, nil
	}

	prev := metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "kind", m.Kind, "err", err)
		}
		if c, ok := b.(io.Closer); ok {
			_ = c.Close()
		}
		metrics.SetBackend(prev)
	}, nil
}
