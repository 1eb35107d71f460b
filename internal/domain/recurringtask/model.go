package recurringtask

import (
	"time"

	"github.com/kontorapp/kontor/internal/types"
)

// Template is a standing task definition attached to a client.
// NextDueAt points at the next occurrence to generate; nil means due now.
// AnchorDay is the day of month month based schedules return to; 0 until the
// first due date is known.
type Template struct {
	ID          string          `db:"id" json:"id"`
	ClientID    string          `db:"client_id" json:"client_id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Frequency   types.Frequency `db:"frequency" json:"frequency"`
	NextDueAt   *time.Time      `db:"next_due_at" json:"next_due_at,omitempty"`
	AnchorDay   int             `db:"anchor_day" json:"anchor_day,omitempty"`
	AssigneeID  *string         `db:"assignee_id" json:"assignee_id,omitempty"`
	types.BaseModel
}

// IsActive reports whether the engine should consider the template
func (t *Template) IsActive() bool {
	return t != nil && t.Status == types.StatusPublished && t.Frequency != ""
}

// DueDate returns the stored due date, or now when the template was never scheduled
func (t *Template) DueDate(now time.Time) time.Time {
	if t.NextDueAt == nil {
		return now
	}
	return *t.NextDueAt
}

// SetNextDueAt schedules the next occurrence and pins the anchor day to it
func (t *Template) SetNextDueAt(next time.Time) {
	next = next.UTC()
	t.NextDueAt = &next
	t.AnchorDay = next.Day()
}

// NextOccurrence returns the occurrence following due under frequency f,
// kept on the template's anchor day
func (t *Template) NextOccurrence(due time.Time, f types.Frequency) time.Time {
	anchor := t.AnchorDay
	if anchor == 0 {
		anchor = due.Day()
	}
	return types.NextAnchoredOccurrence(due, f, anchor)
}

// InstanceDescription is the description copied onto generated instances
func (t *Template) InstanceDescription() string {
	if t.Description != "" {
		return t.Description
	}
	return "Recurring task: " + t.Name
}
