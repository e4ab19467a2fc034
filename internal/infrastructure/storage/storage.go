package storage

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object not found")

// FileStore is where uploaded files and generated variants live.
// Keys are slash separated ("places/12/ab12.jpg").
type FileStore interface {
	// Upload stores data under key and returns its public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	URL(key string) string
}
