package types

import "time"

type AuditStatus string

const AuditStatusDraft AuditStatus = "draft"

// Audit groups the snags and media from one submission.
type Audit struct {
	ID          string      `db:"id" json:"id"`
	ProjectName *string     `db:"project_name" json:"project_name"`
	Status      AuditStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// AuditDetail is an audit's snags and media.
type AuditDetail struct {
	Snags []Snag  `json:"snags"`
	Media []Media `json:"media"`
}

// SnagDetail is a snag with the media attached to it.
type SnagDetail struct {
	Snag
	Media []Media `json:"media"`
}

// Submission is the result of extracting snags from audio or text.
type Submission struct {
	AuditID    string `json:"auditId"`
	Transcript string `json:"transcript,omitempty"`
	Snags      []Snag `json:"snags"`
}
