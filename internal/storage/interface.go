package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrInvalidKey = errors.New("invalid document key")
)

// DocumentStorage keeps generated member documents. Keys are slash-separated
// relative paths such as "credentials/<request id>/<file>".
type DocumentStorage interface {
	// Save writes data under key, replacing any previous content
	Save(ctx context.Context, key string, data []byte) error

	// Open returns the stored content and its size
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Exists reports whether key is stored and its size
	Exists(ctx context.Context, key string) (bool, int64, error)

	// DownloadURL returns a signed link to key valid for ttl
	DownloadURL(key, requestID string, ttl time.Duration) (string, error)
}
