package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"snagaudit/pkg/types"
)

// Tracker records created tasks and attachments.
type Tracker struct {
	mu          sync.Mutex
	Tasks       []types.ExternalTask
	Attachments map[string][]string

	// FailNames makes CreateTask fail for tasks with the given name.
	FailNames map[string]error
	// AttachErr, when set, is returned by every AttachFile call.
	AttachErr error
}

func NewTracker() *Tracker {
	return &Tracker{
		Attachments: make(map[string][]string),
		FailNames:   make(map[string]error),
	}
}

func (m *Tracker) CreateTask(ctx context.Context, task types.ExternalTask) (types.TaskRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.FailNames[task.Name]; ok {
		return types.TaskRef{}, err
	}

	m.Tasks = append(m.Tasks, task)
	id := fmt.Sprintf("task-%d", len(m.Tasks))
	return types.TaskRef{ID: id, URL: "https://tracker.test/t/" + id}, nil
}

func (m *Tracker) AttachFile(ctx context.Context, taskID, filename string, r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AttachErr != nil {
		return m.AttachErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}

	m.Attachments[taskID] = append(m.Attachments[taskID], filename)
	return nil
}

func (m *Tracker) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tasks)
}
