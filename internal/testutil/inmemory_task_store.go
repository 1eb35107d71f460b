package testutil

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/domain/task"
	"github.com/kontorapp/kontor/internal/types"
)

// InMemoryTaskStore implements task.Repository
type InMemoryTaskStore struct {
	*InMemoryStore[*task.Task]
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		InMemoryStore: NewInMemoryStore(copyTask),
	}
}

func copyTask(t *task.Task) *task.Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		c.CompletedAt = &completed
	}
	return &c
}

// Create enforces the (tenant, client, title, due date) natural key
func (s *InMemoryTaskStore) Create(ctx context.Context, t *task.Task) error {
	if t.TenantID == "" {
		t.TenantID = types.GetTenantID(ctx)
	}
	return s.InMemoryStore.CreateUnless(ctx, t.ID, t, func(stored *task.Task) bool {
		return stored.TenantID == t.TenantID &&
			notDeleted(stored.Status) &&
			stored.SameOccurrence(t.ClientID, t.Title, t.DueAt)
	})
}

func (s *InMemoryTaskStore) Get(ctx context.Context, id string) (*task.Task, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inTenant(ctx, t.TenantID) || !notDeleted(t.Status) {
		return nil, notFound("task", id)
	}
	return t, nil
}

func (s *InMemoryTaskStore) List(ctx context.Context, filter *types.TaskFilter) ([]*task.Task, error) {
	items := s.InMemoryStore.List(ctx, taskFilterFn(filter), func(a, b *task.Task) bool {
		return a.DueAt.Before(b.DueAt) || (a.DueAt.Equal(b.DueAt) && a.ID < b.ID)
	})

	start := filter.GetOffset()
	if start >= len(items) {
		return []*task.Task{}, nil
	}
	end := min(start+filter.GetLimit(), len(items))
	return items[start:end], nil
}

func (s *InMemoryTaskStore) Count(ctx context.Context, filter *types.TaskFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, taskFilterFn(filter)), nil
}

func (s *InMemoryTaskStore) Update(ctx context.Context, t *task.Task) error {
	if _, err := s.Get(ctx, t.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, t.ID, t)
}

func (s *InMemoryTaskStore) ExistsForDueDate(ctx context.Context, clientID, title string, dueAt time.Time) (bool, error) {
	n := s.InMemoryStore.Count(ctx, func(ctx context.Context, t *task.Task) bool {
		return inTenant(ctx, t.TenantID) && notDeleted(t.Status) && t.SameOccurrence(clientID, title, dueAt)
	})
	return n > 0, nil
}

func taskFilterFn(f *types.TaskFilter) FilterFunc[*task.Task] {
	return func(ctx context.Context, t *task.Task) bool {
		if !inTenant(ctx, t.TenantID) || !notDeleted(t.Status) {
			return false
		}
		if f == nil {
			return true
		}
		if f.ClientID != "" && t.ClientID != f.ClientID {
			return false
		}
		if f.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != f.AssigneeID) {
			return false
		}
		if f.TemplateID != "" && (t.TemplateID == nil || *t.TemplateID != f.TemplateID) {
			return false
		}
		if f.TaskStatus != "" && t.TaskStatus != f.TaskStatus {
			return false
		}
		if f.DueFrom != nil && t.DueAt.Before(*f.DueFrom) {
			return false
		}
		if f.DueTo != nil && t.DueAt.After(*f.DueTo) {
			return false
		}
		return true
	}
}
