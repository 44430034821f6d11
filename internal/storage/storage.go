package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"snagaudit/pkg/types"
)

// ErrObjectNotFound is returned by Open when no object exists at the key.
var ErrObjectNotFound = fmt.Errorf("stored object %w", types.ErrNotFound)

// Backend stores uploaded voice recordings and media files by key.
type Backend interface {
	// Save writes r to key, replacing any existing object.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns the object content. Callers close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Name() string
}

// New builds the backend selected by config.StorageBackend.
func New(ctx context.Context, config *types.Config) (Backend, error) {
	switch strings.ToLower(config.StorageBackend) {
	case "", "local":
		return NewLocalBackend(config.UploadDir), nil
	case "s3":
		return NewS3Backend(ctx, S3Options{
			Endpoint:  config.S3Endpoint,
			AccessKey: config.S3AccessKey,
			SecretKey: config.S3SecretKey,
			Bucket:    config.S3Bucket,
			Region:    config.S3Region,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.StorageBackend)
	}
}

// ValidKey rejects keys that are empty, absolute or climb out of the root.
func ValidKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasPrefix(key, "\\") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q: contains '..'", key)
	}
	return nil
}
