package testutil

import (
	"context"

	"github.com/kontorapp/kontor/internal/domain/timeentry"
	"github.com/kontorapp/kontor/internal/types"
)

// InMemoryTimeEntryStore implements timeentry.Repository
type InMemoryTimeEntryStore struct {
	*InMemoryStore[*timeentry.TimeEntry]
}

func NewInMemoryTimeEntryStore() *InMemoryTimeEntryStore {
	return &InMemoryTimeEntryStore{
		InMemoryStore: NewInMemoryStore(func(e *timeentry.TimeEntry) *timeentry.TimeEntry {
			c := *e
			return &c
		}),
	}
}

func (s *InMemoryTimeEntryStore) Create(ctx context.Context, e *timeentry.TimeEntry) error {
	if e.TenantID == "" {
		e.TenantID = types.GetTenantID(ctx)
	}
	return s.InMemoryStore.Create(ctx, e.ID, e)
}

func (s *InMemoryTimeEntryStore) ListByTask(ctx context.Context, taskID string) ([]*timeentry.TimeEntry, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, e *timeentry.TimeEntry) bool {
		return inTenant(ctx, e.TenantID) && e.TaskID != nil && *e.TaskID == taskID
	}, func(a, b *timeentry.TimeEntry) bool {
		return a.WorkDate.Before(b.WorkDate) || (a.WorkDate.Equal(b.WorkDate) && a.ID < b.ID)
	}), nil
}
