package testutil

import (
	"context"
	"strings"

	"github.com/kontorapp/kontor/internal/domain/user"
	"github.com/kontorapp/kontor/internal/types"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore(copyUser),
	}
}

func copyUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *user.User) error {
	if u.TenantID == "" {
		u.TenantID = types.GetTenantID(ctx)
	}
	return s.InMemoryStore.CreateUnless(ctx, u.ID, u, func(stored *user.User) bool {
		return stored.TenantID == u.TenantID &&
			notDeleted(stored.Status) &&
			strings.EqualFold(stored.Email, u.Email)
	})
}

func (s *InMemoryUserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inTenant(ctx, u.TenantID) || !notDeleted(u.Status) {
		return nil, notFound("user", id)
	}
	return u, nil
}

func (s *InMemoryUserStore) Update(ctx context.Context, u *user.User) error {
	if _, err := s.GetByID(ctx, u.ID); err != nil {
		return err
	}
	return s.InMemoryStore.Update(ctx, u.ID, u)
}

func (s *InMemoryUserStore) CountLicensed(ctx context.Context) (int, error) {
	return s.InMemoryStore.Count(ctx, licensedUserFilter), nil
}

func (s *InMemoryUserStore) ListLicensed(ctx context.Context) ([]*user.User, error) {
	return s.InMemoryStore.List(ctx, licensedUserFilter, func(a, b *user.User) bool {
		return a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID)
	}), nil
}

func licensedUserFilter(ctx context.Context, u *user.User) bool {
	return inTenant(ctx, u.TenantID) && u.IsLicensed && u.Status == types.StatusPublished
}
