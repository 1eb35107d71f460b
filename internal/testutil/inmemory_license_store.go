package testutil

import (
	"context"
	"sync"

	"github.com/kontorapp/kontor/internal/domain/license"
	"github.com/kontorapp/kontor/internal/types"
)

// InMemoryLicenseStore implements license.Repository
type InMemoryLicenseStore struct {
	*InMemoryStore[*license.Record]
	upsertMu sync.Mutex
}

func NewInMemoryLicenseStore() *InMemoryLicenseStore {
	return &InMemoryLicenseStore{
		InMemoryStore: NewInMemoryStore(func(r *license.Record) *license.Record {
			c := *r
			return &c
		}),
	}
}

func (s *InMemoryLicenseStore) Upsert(ctx context.Context, r *license.Record) (*license.Record, error) {
	s.upsertMu.Lock()
	defer s.upsertMu.Unlock()

	if r.TenantID == "" {
		r.TenantID = types.GetTenantID(ctx)
	}

	existing, err := s.Get(ctx, r.UserID, r.BillingPeriod)
	if err != nil {
		if err := s.InMemoryStore.Create(ctx, r.ID, r); err != nil {
			return nil, err
		}
		return s.InMemoryStore.Get(ctx, r.ID)
	}

	existing.IsLicensed = r.IsLicensed
	existing.UpdatedAt = r.UpdatedAt
	existing.UpdatedBy = r.UpdatedBy
	if err := s.InMemoryStore.Update(ctx, existing.ID, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *InMemoryLicenseStore) Get(ctx context.Context, userID, period string) (*license.Record, error) {
	items := s.InMemoryStore.List(ctx, func(ctx context.Context, r *license.Record) bool {
		return inTenant(ctx, r.TenantID) && r.UserID == userID && r.BillingPeriod == period
	}, nil)
	if len(items) == 0 {
		return nil, notFound("licensed employee", userID+"/"+period)
	}
	return items[0], nil
}

func (s *InMemoryLicenseStore) ListByPeriod(ctx context.Context, period string) ([]*license.Record, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, r *license.Record) bool {
		return inTenant(ctx, r.TenantID) && r.BillingPeriod == period
	}, func(a, b *license.Record) bool {
		return a.ID < b.ID
	}), nil
}
