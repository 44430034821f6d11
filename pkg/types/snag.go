package types

import (
	"fmt"
	"strings"
	"time"
)

type SnagStatus string

const (
	SnagStatusNew        SnagStatus = "new"
	SnagStatusInProgress SnagStatus = "in_progress"
	SnagStatusCompleted  SnagStatus = "completed"
)

func (s SnagStatus) Valid() bool {
	switch s {
	case SnagStatusNew, SnagStatusInProgress, SnagStatusCompleted:
		return true
	}
	return false
}

// Snag is a single recorded defect. AuditID is set once at creation.
type Snag struct {
	ID                 string     `db:"id" json:"id"`
	AuditID            string     `db:"audit_id" json:"audit_id"`
	Description        string     `db:"snag_description" json:"snag_description"`
	ProjectName        string     `db:"project_name" json:"project_name"`
	RecommendedTrade   *string    `db:"recommended_trade" json:"recommended_trade"`
	RecommendedBuilder *string    `db:"recommended_builder" json:"recommended_builder"`
	Deadline           *string    `db:"deadline" json:"deadline"`
	MaterialsNeeded    *string    `db:"materials_needed" json:"materials_needed"`
	PlantNeeded        *string    `db:"plant_needed" json:"plant_needed"`
	DrawingReference   *string    `db:"drawing_reference" json:"drawing_reference"`
	AdditionalNotes    *string    `db:"additional_notes" json:"additional_notes"`
	Status             SnagStatus `db:"status" json:"status"`
	ClickUpTaskID      *string    `db:"clickup_task_id" json:"clickup_task_id"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Synced reports whether the snag already has an external task.
func (s *Snag) Synced() bool {
	return s.ClickUpTaskID != nil && *s.ClickUpTaskID != ""
}

// SnagUpdate is the whitelist of fields a caller may change on a snag.
// Nil fields are left untouched.
type SnagUpdate struct {
	Description        *string     `json:"snag_description"`
	ProjectName        *string     `json:"project_name"`
	RecommendedTrade   *string     `json:"recommended_trade"`
	RecommendedBuilder *string     `json:"recommended_builder"`
	Deadline           *string     `json:"deadline"`
	MaterialsNeeded    *string     `json:"materials_needed"`
	PlantNeeded        *string     `json:"plant_needed"`
	DrawingReference   *string     `json:"drawing_reference"`
	AdditionalNotes    *string     `json:"additional_notes"`
	Status             *SnagStatus `json:"status"`
	ClickUpTaskID      *string     `json:"-"`
}

// Columns returns the column/value pairs set on the update. Optional
// fields that are blank after trimming are written as NULL.
func (u SnagUpdate) Columns() map[string]any {
	out := make(map[string]any)
	required := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	optional := func(col string, v *string) {
		if v == nil {
			return
		}
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			out[col] = trimmed
			return
		}
		out[col] = nil
	}

	required("snag_description", u.Description)
	required("project_name", u.ProjectName)
	optional("recommended_trade", u.RecommendedTrade)
	optional("recommended_builder", u.RecommendedBuilder)
	optional("deadline", u.Deadline)
	optional("materials_needed", u.MaterialsNeeded)
	optional("plant_needed", u.PlantNeeded)
	optional("drawing_reference", u.DrawingReference)
	optional("additional_notes", u.AdditionalNotes)
	optional("clickup_task_id", u.ClickUpTaskID)
	if u.Status != nil {
		out["status"] = string(*u.Status)
	}

	return out
}

func (u SnagUpdate) Empty() bool {
	return len(u.Columns()) == 0
}

// Validate rejects updates that would break snag invariants.
func (u SnagUpdate) Validate() error {
	if u.Empty() {
		return fmt.Errorf("no valid updates: %w", ErrValidation)
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		return fmt.Errorf("snag_description cannot be empty: %w", ErrValidation)
	}
	if u.ProjectName != nil && strings.TrimSpace(*u.ProjectName) == "" {
		return fmt.Errorf("project_name cannot be empty: %w", ErrValidation)
	}
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", *u.Status, ErrValidation)
	}
	return nil
}

type SnagFilters struct {
	Project string `form:"project"`
	Status  string `form:"status"`
	Trade   string `form:"trade"`
}
