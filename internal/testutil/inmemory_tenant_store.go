package testutil

import (
	"context"

	"github.com/kontorapp/kontor/internal/domain/tenant"
)

// InMemoryTenantStore implements tenant.Repository
type InMemoryTenantStore struct {
	*InMemoryStore[*tenant.Tenant]
}

func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		InMemoryStore: NewInMemoryStore(copyTenant),
	}
}

func copyTenant(t *tenant.Tenant) *tenant.Tenant {
	if t == nil {
		return nil
	}
	c := *t
	if t.EmployeeLimit != nil {
		limit := *t.EmployeeLimit
		c.EmployeeLimit = &limit
	}
	return &c
}

func (s *InMemoryTenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	return s.InMemoryStore.Create(ctx, t.ID, t)
}

func (s *InMemoryTenantStore) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.InMemoryStore.Get(ctx, id)
}

// GetForUpdate is GetByID; MockPostgresClient serializes transactions, which
// stands in for the row lock.
func (s *InMemoryTenantStore) GetForUpdate(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryTenantStore) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.InMemoryStore.List(ctx, func(_ context.Context, t *tenant.Tenant) bool {
		return notDeleted(t.Status)
	}, func(a, b *tenant.Tenant) bool {
		return a.ID < b.ID
	}), nil
}

// Update replaces the stored tenant, used by tests that change the seat policy
func (s *InMemoryTenantStore) Update(ctx context.Context, t *tenant.Tenant) error {
	return s.InMemoryStore.Update(ctx, t.ID, t)
}
