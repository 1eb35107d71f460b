package dto

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/domain/recurringtask"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/kontorapp/kontor/internal/validator"
)

// CreateRecurringTaskRequest creates a recurring task template.
// Frequency is free text, e.g. "monthly" or "kvartalsvis".
type CreateRecurringTaskRequest struct {
	ClientID    string     `json:"client_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description,omitempty"`
	Frequency   string     `json:"frequency" validate:"required"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
}

func (r *CreateRecurringTaskRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToTemplate converts the request to a template using the already normalized frequency
func (r *CreateRecurringTaskRequest) ToTemplate(ctx context.Context, frequency types.Frequency, now time.Time) *recurringtask.Template {
	tmpl := &recurringtask.Template{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECURRING_TASK),
		ClientID:    r.ClientID,
		Name:        r.Name,
		Description: r.Description,
		Frequency:   frequency,
		AssigneeID:  r.AssigneeID,
		BaseModel:   types.GetBaseModelAt(ctx, now),
	}
	if r.NextDueAt != nil {
		tmpl.SetNextDueAt(*r.NextDueAt)
	}
	return tmpl
}

// UpdateRecurringTaskRequest edits a template; nil fields are left unchanged
type UpdateRecurringTaskRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty"`
	Frequency   *string    `json:"frequency,omitempty" validate:"omitempty,min=1"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
}

func (r *UpdateRecurringTaskRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type RecurringTaskResponse struct {
	*recurringtask.Template
}

func NewRecurringTaskResponse(t *recurringtask.Template) *RecurringTaskResponse {
	if t == nil {
		return nil
	}
	return &RecurringTaskResponse{Template: t}
}

type ListRecurringTasksResponse = types.ListResponse[*RecurringTaskResponse]
