package user

import (
	"github.com/kontorapp/kontor/internal/types"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// User is an employee of a tenant. IsLicensed marks the user as occupying a seat.
type User struct {
	ID         string `db:"id" json:"id"`
	Email      string `db:"email" json:"email"`
	Name       string `db:"name" json:"name"`
	Role       Role   `db:"role" json:"role"`
	IsLicensed bool   `db:"is_licensed" json:"is_licensed"`
	types.BaseModel
}

// IsActive reports whether the user counts towards tenant queries
func (u *User) IsActive() bool {
	return u != nil && u.Status == types.StatusPublished
}
