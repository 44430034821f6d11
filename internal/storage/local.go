package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend keeps objects as files under a base directory.
type LocalBackend struct {
	baseDir string
}

func NewLocalBackend(baseDir string) *LocalBackend {
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &LocalBackend{baseDir: baseDir}
}

func (b *LocalBackend) Name() string { return "local" }

func (b *LocalBackend) resolve(key string) (string, error) {
	if err := ValidKey(key); err != nil {
		return "", err
	}
	full := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(full, b.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory")
	}
	return full, nil
}

func (b *LocalBackend) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	full, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}

	return writeAndClose(f, r, key)
}

// writeAndClose copies r into w and reports a failed close as a failed save.
func writeAndClose(w io.WriteCloser, r io.Reader, key string) error {
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	return nil
}

func (b *LocalBackend) Open(_ context.Context, key string) (io.ReadCloser, error) {
	full, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}
