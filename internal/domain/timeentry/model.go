package timeentry

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/types"
	"github.com/shopspring/decimal"
)

// TimeEntry is registered work on a client, optionally against a task
type TimeEntry struct {
	ID          string    `db:"id" json:"id"`
	TaskID      *string   `db:"task_id" json:"task_id,omitempty"`
	ClientID    string    `db:"client_id" json:"client_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	WorkDate    time.Time `db:"work_date" json:"work_date"`
	Minutes     int       `db:"minutes" json:"minutes"`
	Description string    `db:"description" json:"description"`
	types.BaseModel
}

// Hours returns the registered time in hours rounded to two decimals
func (e *TimeEntry) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(e.Minutes)).Div(decimal.NewFromInt(60)).Round(2)
}

type Repository interface {
	Create(ctx context.Context, entry *TimeEntry) error
	ListByTask(ctx context.Context, taskID string) ([]*TimeEntry, error)
}
