// Package asset describes the shared store that uploaded files are written to and
// static assets are served from.
package asset

import (
	"context"
	"io"
	"time"
)

type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Store keeps files by name. Open returns errors.ErrNotFound for unknown names.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, name string) (*Object, error)
}
