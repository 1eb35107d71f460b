package license

import (
	"context"

	"github.com/kontorapp/kontor/internal/types"
)

// Record says whether a user counted as a licensed seat in a billing period.
// One record exists per (tenant, user, period); closed periods are never rewritten.
type Record struct {
	ID            string `db:"id" json:"id"`
	UserID        string `db:"user_id" json:"user_id"`
	BillingPeriod string `db:"billing_period" json:"billing_period"`
	IsLicensed    bool   `db:"is_licensed" json:"is_licensed"`
	types.BaseModel
}

// Repository defines the interface for licensed employee records
type Repository interface {
	// Upsert inserts the record or updates IsLicensed of the existing
	// (tenant, user, period) record. The stored record is returned.
	Upsert(ctx context.Context, record *Record) (*Record, error)
	Get(ctx context.Context, userID, period string) (*Record, error)
	ListByPeriod(ctx context.Context, period string) ([]*Record, error)
}
