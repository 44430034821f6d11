package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"

	"snagaudit/internal/storage"
)

// Files is an in-memory storage backend.
type Files struct {
	mu           sync.RWMutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func NewFiles() *Files {
	return &Files{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *Files) Name() string { return "memory" }

func (m *Files) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := storage.ValidKey(key); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.contentTypes[key] = contentType
	return nil
}

func (m *Files) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Keys returns the stored object keys.
func (m *Files) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
