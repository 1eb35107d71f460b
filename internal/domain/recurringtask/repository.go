package recurringtask

import (
	"context"

	"github.com/kontorapp/kontor/internal/types"
)

// Repository defines the interface for recurring task template persistence
type Repository interface {
	Create(ctx context.Context, template *Template) error
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, filter *types.RecurringTaskFilter) ([]*Template, error)
	Update(ctx context.Context, template *Template) error

	// ListActive returns the published templates of every tenant. It is the only
	// read that is not scoped to the tenant in ctx and is used by the engine tick.
	ListActive(ctx context.Context) ([]*Template, error)
}
