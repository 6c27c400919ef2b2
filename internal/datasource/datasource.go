// Package datasource defines where CSV bytes come from. Implementations live
// in subpackages: file for local paths and httpds for HTTP downloads.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh byte stream. The caller owns and closes it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
