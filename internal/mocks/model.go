package mocks

import (
	"context"
	"io"
	"sync"

	"snagaudit/internal/extract"
)

// Model is a scripted speech-to-text and chat backend.
type Model struct {
	mu sync.Mutex

	Transcript string
	Reply      string
	MatchReply string
	Err        error

	Calls int
}

func (m *Model) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if _, err := io.Copy(io.Discard, audio); err != nil {
		return "", err
	}
	return m.Transcript, m.Err
}

func (m *Model) Complete(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	return m.Reply, m.Err
}

func (m *Model) CompleteWithImages(ctx context.Context, prompt string, photos []extract.Photo) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	return m.MatchReply, m.Err
}
