package tasksync

import (
	"strings"
	"time"

	"snagaudit/pkg/types"
)

const (
	TaskStatus = "to do"
	urgentLead = 72 * time.Hour
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04",
	"02/01/2006",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// PlanDeadline maps free-text deadline wording to a priority and optional
// due time. "asap" and "urgent" win over everything else; a due time is
// otherwise only set when the text is a literal date.
func PlanDeadline(deadline string, now time.Time) (types.TaskPriority, *time.Time) {
	deadline = strings.TrimSpace(deadline)
	if deadline == "" {
		return types.TaskPriorityNormal, nil
	}

	lower := strings.ToLower(deadline)
	if strings.Contains(lower, "asap") || strings.Contains(lower, "urgent") {
		due := now.Add(urgentLead)
		return types.TaskPriorityUrgent, &due
	}

	due := parseDate(deadline)
	if strings.Contains(lower, "this week") || strings.Contains(lower, "end of week") {
		return types.TaskPriorityHigh, due
	}

	return types.TaskPriorityNormal, due
}

func parseDate(s string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// BuildTask renders a snag as a tracker task.
func BuildTask(snag types.Snag, now time.Time) types.ExternalTask {
	var b strings.Builder
	b.WriteString(snag.Description)
	section(&b, "\n\n**Notes:** ", snag.AdditionalNotes)
	section(&b, "\n**Materials needed:** ", snag.MaterialsNeeded)
	section(&b, "\n**Plant/equipment:** ", snag.PlantNeeded)
	section(&b, "\n**Drawing ref:** ", snag.DrawingReference)

	var deadline string
	if snag.Deadline != nil {
		deadline = *snag.Deadline
	}
	priority, due := PlanDeadline(deadline, now)

	return types.ExternalTask{
		Name:        "[" + snag.ProjectName + "] " + snag.Description,
		Description: b.String(),
		DueDate:     due,
		Priority:    priority,
		Status:      TaskStatus,
	}
}

func section(b *strings.Builder, label string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(*value)
}
