package types

import (
	"strings"
	"time"

	ierr "github.com/kontorapp/kontor/internal/errors"
)

// TaskStatus is the progress of a task instance
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// norwegian names used by the web client
var taskStatusNorwegian = map[TaskStatus]string{
	TaskStatusPending:    "ikke_startet",
	TaskStatusInProgress: "pågår",
	TaskStatusCompleted:  "ferdig",
}

// ParseTaskStatus accepts both the English and the Norwegian status names
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "ikke_startet", "ikke startet":
		return TaskStatusPending, nil
	case "in_progress", "in progress", "pågår", "pagar":
		return TaskStatusInProgress, nil
	case "completed", "done", "ferdig":
		return TaskStatusCompleted, nil
	}
	return "", ierr.NewError("invalid task status").
		WithHintf("unknown task status %q", s).
		WithReportableDetails(map[string]any{
			"allowed": []string{"pending", "in_progress", "completed", "ikke_startet", "pågår", "ferdig"},
		}).
		Mark(ierr.ErrValidation)
}

func (s TaskStatus) Norwegian() string {
	return taskStatusNorwegian[s]
}

func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusInProgress:
		return 1
	case TaskStatusCompleted:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether a task may move from s to next.
// Status only moves forward; setting the same status again is allowed.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	return s.rank() >= 0 && next.rank() >= s.rank()
}

// TaskFilter represents the filter options for listing task instances
type TaskFilter struct {
	ClientID   string     `form:"client_id" json:"client_id,omitempty"`
	AssigneeID string     `form:"assignee_id" json:"assignee_id,omitempty"`
	TemplateID string     `form:"template_id" json:"template_id,omitempty"`
	TaskStatus TaskStatus `form:"task_status" json:"task_status,omitempty"`
	DueFrom    *time.Time `form:"due_from" time_format:"2006-01-02" json:"due_from,omitempty"`
	DueTo      *time.Time `form:"due_to" time_format:"2006-01-02" json:"due_to,omitempty"`
	Limit      int        `form:"limit,default=50" json:"limit,omitempty"`
	Offset     int        `form:"offset,default=0" json:"offset,omitempty"`
}

const FILTER_DEFAULT_LIMIT = 50

func NewDefaultTaskFilter() *TaskFilter {
	return &TaskFilter{Limit: FILTER_DEFAULT_LIMIT}
}

func (f *TaskFilter) GetLimit() int {
	if f == nil || f.Limit <= 0 {
		return FILTER_DEFAULT_LIMIT
	}
	return f.Limit
}

func (f *TaskFilter) GetOffset() int {
	if f == nil || f.Offset < 0 {
		return 0
	}
	return f.Offset
}

// RecurringTaskFilter represents the filter options for listing recurring task templates
type RecurringTaskFilter struct {
	ClientID  string    `form:"client_id" json:"client_id,omitempty"`
	Frequency Frequency `form:"frequency" json:"frequency,omitempty"`
}
