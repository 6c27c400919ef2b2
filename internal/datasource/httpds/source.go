package httpds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrStatus is wrapped by Source.Open when the server answers with a
// non-2xx status that is not retried.
var ErrStatus = errors.New("httpds: unexpected status")

// Source opens a URL as a byte stream. It satisfies datasource.Source.
type Source struct {
	client  *Client
	url     string
	headers http.Header
}

// NewSource returns a Source that downloads url with c. headers are sent with
// every Open and may be nil.
func NewSource(c *Client, url string, headers http.Header) *Source {
	return &Source{client: c, url: url, headers: headers.Clone()}
}

// URL returns the configured location.
func (s *Source) URL() string { return s.url }

// Name returns a table-name hint derived from the URL.
func (s *Source) Name() string { return NameFromURL(s.url) }

// Open issues a GET and returns the response body. The caller closes it.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, s.headers)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("open %s: %w %d", s.url, ErrStatus, resp.StatusCode)
	}
	return resp.Body, nil
}
