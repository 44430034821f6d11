package types

import "time"

// TaskPriority follows ClickUp's scale: 1 urgent, 2 high, 3 normal.
type TaskPriority int

const (
	TaskPriorityUrgent TaskPriority = 1
	TaskPriorityHigh   TaskPriority = 2
	TaskPriorityNormal TaskPriority = 3
)

// ExternalTask is the tracker-side representation of a snag.
type ExternalTask struct {
	Name        string
	Description string
	DueDate     *time.Time
	Priority    TaskPriority
	Status      string
}

type TaskRef struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

type SyncStatus string

const (
	SyncStatusCreated SyncStatus = "created"
	SyncStatusSkipped SyncStatus = "skipped"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncResult is the per-snag outcome of a bulk sync.
type SyncResult struct {
	SnagID string     `json:"snag_id"`
	Status SyncStatus `json:"status"`
	TaskID string     `json:"task_id,omitempty"`
	Reason string     `json:"reason,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// SyncOutcome is the result of syncing a single snag.
type SyncOutcome struct {
	Task TaskRef `json:"task"`
	Snag *Snag   `json:"snag"`
}
