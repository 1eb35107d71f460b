package testutil

import (
	"context"

	"github.com/kontorapp/kontor/internal/domain/recurringtask"
	"github.com/kontorapp/kontor/internal/types"
)

// InMemoryRecurringTaskStore implements recurringtask.Repository
type InMemoryRecurringTaskStore struct {
	*InMemoryStore[*recurringtask.Template]
}

func NewInMemoryRecurringTaskStore() *InMemoryRecurringTaskStore {
	return &InMemoryRecurringTaskStore{
		InMemoryStore: NewInMemoryStore(copyTemplate),
	}
}

func copyTemplate(t *recurringtask.Template) *recurringtask.Template {
	if t == nil {
		return nil
	}
	c := *t
	if t.NextDueAt != nil {
		next := *t.NextDueAt
		c.NextDueAt = &next
	}
	if t.AssigneeID != nil {
		assignee := *t.AssigneeID
		c.AssigneeID = &assignee
	}
	return &c
}

func (s *InMemoryRecurringTaskStore) Create(ctx context.Context, t *recurringtask.Template) error {
	if t.TenantID == "" {
		t.TenantID = types.GetTenantID(ctx)
	}
	return s.InMemoryStore.Create(ctx, t.ID, t)
}

func (s *InMemoryRecurringTaskStore) Get(ctx context.Context, id string) (*recurringtask.Template, error) {
	t, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inTenant(ctx, t.TenantID) || !notDeleted(t.Status) {
		return nil, notFound("recurring task", id)
	}
	return t, nil
}

func (s *InMemoryRecurringTaskStore) List(ctx context.Context, filter *types.RecurringTaskFilter) ([]*recurringtask.Template, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, t *recurringtask.Template) bool {
		if !inTenant(ctx, t.TenantID) || !notDeleted(t.Status) {
			return false
		}
		if filter == nil {
			return true
		}
		if filter.ClientID != "" && t.ClientID != filter.ClientID {
			return false
		}
		if filter.Frequency != "" && t.Frequency != filter.Frequency {
			return false
		}
		return true
	}, func(a, b *recurringtask.Template) bool {
		return a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID)
	}), nil
}

func (s *InMemoryRecurringTaskStore) Update(ctx context.Context, t *recurringtask.Template) error {
	if _, err := s.Get(ctx, t.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, t.ID, t)
}

func (s *InMemoryRecurringTaskStore) ListActive(ctx context.Context) ([]*recurringtask.Template, error) {
	return s.InMemoryStore.List(ctx, func(_ context.Context, t *recurringtask.Template) bool {
		return t.Status == types.StatusPublished
	}, func(a, b *recurringtask.Template) bool {
		switch {
		case a.NextDueAt == nil && b.NextDueAt == nil:
			return a.ID < b.ID
		case a.NextDueAt == nil:
			return true
		case b.NextDueAt == nil:
			return false
		case a.NextDueAt.Equal(*b.NextDueAt):
			return a.ID < b.ID
		}
		return a.NextDueAt.Before(*b.NextDueAt)
	}), nil
}
