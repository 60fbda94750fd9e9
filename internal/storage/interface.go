package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrEmptyKey indicates an empty object key was provided.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates the object key contains a path traversal segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// EnsureBucket creates the bucket or container if it does not exist
	EnsureBucket(ctx context.Context) error

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the URL for accessing an object
	GetURL(key string) string
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
