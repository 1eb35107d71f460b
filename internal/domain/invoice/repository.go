package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for invoice persistence, scoped to the tenant in ctx
type Repository interface {
	Get(ctx context.Context, id string) (*Invoice, error)
	// GetByPeriod returns the invoice covering exactly [start, end] or ErrNotFound
	GetByPeriod(ctx context.Context, start, end time.Time) (*Invoice, error)
	// CreateIfAbsent inserts inv unless an invoice for the same tenant and period
	// exists, and returns whichever invoice is stored.
	CreateIfAbsent(ctx context.Context, inv *Invoice) (*Invoice, error)
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
}

// LineRepository defines the interface for invoice line persistence
type LineRepository interface {
	// Create inserts the line. A second MAIN_LICENSE line on an invoice, or a
	// second USER_LICENSE line for the same user and period, yields ErrAlreadyExists.
	Create(ctx context.Context, line *Line) error
	Update(ctx context.Context, line *Line) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Line, error)
}
