package testutil

import (
	"context"
	"sort"
	"sync"

	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
)

// FilterFunc is a generic filter function type
type FilterFunc[T any] func(ctx context.Context, item T) bool

// SortFunc is a generic sort function type
type SortFunc[T any] func(i, j T) bool

// Snapshotter is a store whose contents can be saved and put back. The mock
// postgres client snapshots every registered store when a transaction begins.
type Snapshotter interface {
	Snapshot() (restore func())
}

// InMemoryStore implements a generic in-memory store. Items are copied on the
// way in and out so callers never share state with the store.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	clone func(T) T
}

// NewInMemoryStore creates a new InMemoryStore
func NewInMemoryStore[T any](clone func(T) T) *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
		clone: clone,
	}
}

func (s *InMemoryStore[T]) Create(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithHintf("%s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}

	s.items[id] = s.clone(item)
	return nil
}

func (s *InMemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item, exists := s.items[id]; exists {
		return s.clone(item), nil
	}

	var zero T
	return zero, ierr.NewError("item not found").
		WithHintf("%s not found", id).
		Mark(ierr.ErrNotFound)
}

// List returns copies of the items matching filterFn, sorted by sortFn
func (s *InMemoryStore[T]) List(ctx context.Context, filterFn FilterFunc[T], sortFn SortFunc[T]) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item) {
			result = append(result, s.clone(item))
		}
	}

	if sortFn != nil {
		sort.Slice(result, func(i, j int) bool {
			return sortFn(result[i], result[j])
		})
	}
	return result
}

func (s *InMemoryStore[T]) Count(ctx context.Context, filterFn FilterFunc[T]) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		if filterFn == nil || filterFn(ctx, item) {
			count++
		}
	}
	return count
}

func (s *InMemoryStore[T]) Update(_ context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			WithHintf("%s not found", id).
			Mark(ierr.ErrNotFound)
	}

	s.items[id] = s.clone(item)
	return nil
}

// CreateUnless inserts item unless conflict reports a clash with a stored
// item. The check and the insert happen under one lock.
func (s *InMemoryStore[T]) CreateUnless(_ context.Context, id string, item T, conflict func(stored T) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithHintf("%s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}
	for _, stored := range s.items {
		if conflict(stored) {
			return ierr.NewError("unique constraint violated").
				WithHint("A record with the same key already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	s.items[id] = s.clone(item)
	return nil
}

// Snapshot saves the current contents. Stored items are never mutated in
// place, so copying the map is enough.
func (s *InMemoryStore[T]) Snapshot() func() {
	s.mu.RLock()
	saved := make(map[string]T, len(s.items))
	for k, v := range s.items {
		saved[k] = v
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		s.items = saved
		s.mu.Unlock()
	}
}

// Clear removes all items from the store
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}

// inTenant reports whether an item of itemTenantID is visible to ctx
func inTenant(ctx context.Context, itemTenantID string) bool {
	return itemTenantID == types.GetTenantID(ctx)
}

func notDeleted(status types.Status) bool {
	return status != types.StatusDeleted
}

func notFound(entity, id string) error {
	return ierr.NewError(entity+" not found").
		WithHintf("%s %s not found", entity, id).
		Mark(ierr.ErrNotFound)
}
