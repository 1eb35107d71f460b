package tenant

import "context"

// Repository defines the interface for tenant persistence
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	// GetForUpdate reads the tenant and locks its row until the surrounding
	// transaction ends. Seat-limit checks that precede a licensing write use it.
	GetForUpdate(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
}
