package task

import (
	"time"

	"github.com/kontorapp/kontor/internal/types"
)

// Task is a concrete unit of work. TemplateID is nil for ad hoc tasks.
type Task struct {
	ID          string           `db:"id" json:"id"`
	TemplateID  *string          `db:"template_id" json:"template_id,omitempty"`
	ClientID    string           `db:"client_id" json:"client_id"`
	AssigneeID  *string          `db:"assignee_id" json:"assignee_id,omitempty"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	TaskStatus  types.TaskStatus `db:"task_status" json:"task_status"`
	DueAt       time.Time        `db:"due_at" json:"due_at"`
	CompletedAt *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	types.BaseModel
}

// SameOccurrence reports whether t is the instance identified by the natural key
// (client, title, calendar date of due).
func (t *Task) SameOccurrence(clientID, title string, dueAt time.Time) bool {
	return t.ClientID == clientID && t.Title == title && types.SameCalendarDate(t.DueAt, dueAt)
}
