package tenant

import (
	"time"

	"github.com/kontorapp/kontor/internal/types"
)

// Tenant represents an accounting firm using the back office.
// EmployeeLimit is the seat policy; nil means the plan default applies.
type Tenant struct {
	ID            string       `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	OrgNumber     *string      `db:"org_number" json:"org_number,omitempty"`
	Plan          string       `db:"plan" json:"plan"`
	EmployeeLimit *int         `db:"employee_limit" json:"employee_limit,omitempty"`
	Status        types.Status `db:"status" json:"status"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
	CreatedBy     string       `db:"created_by" json:"created_by"`
	UpdatedBy     string       `db:"updated_by" json:"updated_by"`
}

// SeatLimit returns the tenant's employee limit, or defaultLimit when none is set
func (t *Tenant) SeatLimit(defaultLimit int) int {
	if t == nil || t.EmployeeLimit == nil || *t.EmployeeLimit <= 0 {
		return defaultLimit
	}
	return *t.EmployeeLimit
}
