package testutil

import (
	"context"
	"sync"

	"github.com/kontorapp/kontor/internal/domain/tenant"
	"github.com/kontorapp/kontor/internal/domain/user"
)

// CallLog records repository calls in the order they happen
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

// Calls returns a copy of the recorded calls
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// RecordingTenantRepository logs row locks taken on tenants
type RecordingTenantRepository struct {
	tenant.Repository
	Log *CallLog
}

func (r *RecordingTenantRepository) GetForUpdate(ctx context.Context, id string) (*tenant.Tenant, error) {
	r.Log.add("tenant.GetForUpdate")
	return r.Repository.GetForUpdate(ctx, id)
}

// RecordingUserRepository logs user inserts
type RecordingUserRepository struct {
	user.Repository
	Log *CallLog
}

func (r *RecordingUserRepository) Create(ctx context.Context, u *user.User) error {
	r.Log.add("user.Create")
	return r.Repository.Create(ctx, u)
}
