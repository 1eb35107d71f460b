package task

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/types"
)

// Repository defines the interface for task instance persistence
type Repository interface {
	// Create inserts the task. A task with the same client, title and calendar
	// due date in the tenant yields ErrAlreadyExists.
	Create(ctx context.Context, task *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, filter *types.TaskFilter) ([]*Task, error)
	Count(ctx context.Context, filter *types.TaskFilter) (int, error)
	Update(ctx context.Context, task *Task) error

	// ExistsForDueDate reports whether an instance with the natural key exists
	ExistsForDueDate(ctx context.Context, clientID, title string, dueAt time.Time) (bool, error)
}
