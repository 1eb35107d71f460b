package user

import "context"

// Repository defines the interface for user persistence. Every call is scoped
// to the tenant carried in ctx.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	// CountLicensed returns the number of active users flagged as licensed
	CountLicensed(ctx context.Context) (int, error)
	ListLicensed(ctx context.Context) ([]*User, error)
}
