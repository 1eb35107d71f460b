package dto

import (
	"context"
	"strings"
	"time"

	"github.com/kontorapp/kontor/internal/domain/user"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/kontorapp/kontor/internal/validator"
)

// CreateEmployeeRequest creates a user in the tenant. Licensed employees
// occupy a seat and are rejected when the tenant's seat limit is reached.
type CreateEmployeeRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Name     string    `json:"name" validate:"required,max=255"`
	Role     user.Role `json:"role,omitempty" validate:"omitempty,oneof=admin employee"`
	Licensed bool      `json:"licensed"`
}

func (r *CreateEmployeeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToUser converts the request to an unlicensed user; licensing is applied by the ledger
func (r *CreateEmployeeRequest) ToUser(ctx context.Context, now time.Time) *user.User {
	role := r.Role
	if role == "" {
		role = user.RoleEmployee
	}
	return &user.User{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER),
		Email:     strings.ToLower(strings.TrimSpace(r.Email)),
		Name:      r.Name,
		Role:      role,
		BaseModel: types.GetBaseModelAt(ctx, now),
	}
}

type ToggleLicenseRequest struct {
	IsLicensed *bool `json:"is_licensed" validate:"required"`
}

func (r *ToggleLicenseRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type EmployeeResponse struct {
	*user.User
}

func NewEmployeeResponse(u *user.User) *EmployeeResponse {
	if u == nil {
		return nil
	}
	return &EmployeeResponse{User: u}
}
