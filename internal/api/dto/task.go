package dto

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/domain/task"
	"github.com/kontorapp/kontor/internal/domain/timeentry"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/kontorapp/kontor/internal/validator"
	"github.com/samber/lo"
)

// CreateTaskRequest creates an ad hoc task that belongs to no template
type CreateTaskRequest struct {
	ClientID    string    `json:"client_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description,omitempty"`
	AssigneeID  *string   `json:"assignee_id,omitempty"`
	DueAt       time.Time `json:"due_at" validate:"required"`
}

func (r *CreateTaskRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToTask converts the request to a domain task
func (r *CreateTaskRequest) ToTask(ctx context.Context, now time.Time) *task.Task {
	return &task.Task{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TASK),
		ClientID:    r.ClientID,
		AssigneeID:  r.AssigneeID,
		Title:       r.Title,
		Description: r.Description,
		TaskStatus:  types.TaskStatusPending,
		DueAt:       r.DueAt.UTC(),
		BaseModel:   types.GetBaseModelAt(ctx, now),
	}
}

// UpdateTaskStatusRequest accepts English or Norwegian status names
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,task_status"`
}

func (r *UpdateTaskStatusRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// CompleteTaskRequest completes a task. Minutes > 0 also registers a time entry.
type CompleteTaskRequest struct {
	Minutes     int        `json:"minutes" validate:"min=0,max=1440"`
	Description string     `json:"description,omitempty"`
	WorkDate    *time.Time `json:"work_date,omitempty"`
}

func (r *CompleteTaskRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Minutes == 0 && r.Description != "" {
		return ierr.NewError("description without minutes").
			WithHint("A time entry description requires minutes").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TaskResponse represents a task in responses
type TaskResponse struct {
	*task.Task
	StatusLabel string `json:"status_label"`
}

// NewTaskResponse creates a new task response from a domain task
func NewTaskResponse(t *task.Task) *TaskResponse {
	if t == nil {
		return nil
	}
	return &TaskResponse{Task: t, StatusLabel: t.TaskStatus.Norwegian()}
}

func NewTaskResponses(tasks []*task.Task) []*TaskResponse {
	return lo.Map(tasks, func(t *task.Task, _ int) *TaskResponse { return NewTaskResponse(t) })
}

// ListTasksResponse represents the response for listing tasks
type ListTasksResponse = types.ListResponse[*TaskResponse]

// CompleteTaskResponse carries the completed task and the time entry it produced
type CompleteTaskResponse struct {
	Task      *TaskResponse        `json:"task"`
	TimeEntry *timeentry.TimeEntry `json:"time_entry,omitempty"`
}
