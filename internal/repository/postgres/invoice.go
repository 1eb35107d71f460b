package postgres

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/domain/invoice"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/logger"
	"github.com/kontorapp/kontor/internal/postgres"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/shopspring/decimal"
)

const (
	invoiceColumns     = `id, tenant_id, invoice_number, billing_period, period_start, period_end, currency, total_amount, invoice_status, status, created_at, updated_at, created_by, updated_by`
	invoiceLineColumns = `id, tenant_id, invoice_id, line_type, description, quantity, unit_price, amount, metadata, status, created_at, updated_at, created_by, updated_by`
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND tenant_id = $2`

	var inv invoice.Invoice
	if err := r.db.GetContext(ctx, &inv, query, id, types.GetTenantID(ctx)); err != nil {
		return nil, postgres.WrapError(err, "invoice")
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByPeriod(ctx context.Context, start, end time.Time) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND period_start = $2 AND period_end = $3`

	var inv invoice.Invoice
	if err := r.db.GetContext(ctx, &inv, query, types.GetTenantID(ctx), start, end); err != nil {
		return nil, postgres.WrapError(err, "invoice")
	}
	return &inv, nil
}

func (r *invoiceRepository) CreateIfAbsent(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	query := `
	INSERT INTO invoices (` + invoiceColumns + `)
	VALUES (:id, :tenant_id, :invoice_number, :billing_period, :period_start, :period_end, :currency, :total_amount, :invoice_status, :status, :created_at, :updated_at, :created_by, :updated_by)
	ON CONFLICT ON CONSTRAINT uq_invoices_tenant_period DO NOTHING
	`

	res, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return nil, postgres.WrapError(err, "invoice")
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return inv, nil
	}

	r.logger.Debugw("draft invoice already present", "tenant_id", inv.TenantID, "period", inv.BillingPeriod)
	return r.GetByPeriod(ctx, inv.PeriodStart, inv.PeriodEnd)
}

func (r *invoiceRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	query := `UPDATE invoices SET total_amount = $1, updated_at = $2, updated_by = $3 WHERE id = $4 AND tenant_id = $5`

	res, err := r.db.ExecContext(ctx, query, total, time.Now().UTC(), types.GetUserID(ctx), id, types.GetTenantID(ctx))
	if err != nil {
		return postgres.WrapError(err, "invoice")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("invoice not found").
			WithHintf("invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

type invoiceLineRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceLineRepository(db *postgres.DB, logger *logger.Logger) invoice.LineRepository {
	return &invoiceLineRepository{db: db, logger: logger}
}

func (r *invoiceLineRepository) Create(ctx context.Context, l *invoice.Line) error {
	// the partial unique indexes on main and user lines reject duplicates
	query := `
	INSERT INTO invoice_lines (` + invoiceLineColumns + `)
	VALUES (:id, :tenant_id, :invoice_id, :line_type, :description, :quantity, :unit_price, :amount, :metadata, :status, :created_at, :updated_at, :created_by, :updated_by)
	ON CONFLICT DO NOTHING
	`

	res, err := r.db.NamedExecContext(ctx, query, l)
	if err != nil {
		return postgres.WrapError(err, "invoice line")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("invoice line already exists").
			WithHintf("a %s line already exists on invoice %s", l.LineType, l.InvoiceID).
			WithReportableDetails(map[string]any{"metadata": l.Metadata}).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (r *invoiceLineRepository) Update(ctx context.Context, l *invoice.Line) error {
	query := `
	UPDATE invoice_lines
	SET description = :description, quantity = :quantity, unit_price = :unit_price, amount = :amount,
		metadata = :metadata, updated_at = :updated_at, updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id
	`

	res, err := r.db.NamedExecContext(ctx, query, l)
	if err != nil {
		return postgres.WrapError(err, "invoice line")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("invoice line not found").
			WithHintf("invoice line %s not found", l.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceLineRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.Line, error) {
	query := `
	SELECT ` + invoiceLineColumns + ` FROM invoice_lines
	WHERE tenant_id = $1 AND invoice_id = $2 AND status = 'published'
	ORDER BY created_at, id
	`

	var lines []*invoice.Line
	if err := r.db.SelectContext(ctx, &lines, query, types.GetTenantID(ctx), invoiceID); err != nil {
		return nil, postgres.WrapError(err, "invoice line")
	}
	return lines, nil
}
