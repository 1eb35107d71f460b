package invoice

import (
	"time"

	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Invoice is the draft license invoice of a tenant for one billing period.
// TotalAmount is derived from the lines and is only written by a recalculation.
type Invoice struct {
	ID            string              `db:"id" json:"id"`
	InvoiceNumber string              `db:"invoice_number" json:"invoice_number"`
	BillingPeriod string              `db:"billing_period" json:"billing_period"`
	PeriodStart   time.Time           `db:"period_start" json:"period_start"`
	PeriodEnd     time.Time           `db:"period_end" json:"period_end"`
	Currency      string              `db:"currency" json:"currency"`
	TotalAmount   decimal.Decimal     `db:"total_amount" json:"total_amount"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	types.BaseModel
}

// Line is one priced item on an invoice
type Line struct {
	ID          string                `db:"id" json:"id"`
	InvoiceID   string                `db:"invoice_id" json:"invoice_id"`
	LineType    types.InvoiceLineType `db:"line_type" json:"line_type"`
	Description string                `db:"description" json:"description"`
	Quantity    decimal.Decimal       `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal       `db:"unit_price" json:"unit_price"`
	Amount      decimal.Decimal       `db:"amount" json:"amount"`
	Metadata    types.Metadata        `db:"metadata" json:"metadata,omitempty"`
	types.BaseModel
}

// IsUserLine reports whether l is the USER_LICENSE line of userID for period
func (l *Line) IsUserLine(userID, period string) bool {
	return l.LineType == types.InvoiceLineTypeUserLicense &&
		l.Metadata[types.InvoiceLineMetadataUserID] == userID &&
		l.Metadata[types.InvoiceLineMetadataPeriod] == period
}

// SumLines returns the sum of the line amounts
func SumLines(lines []*Line) decimal.Decimal {
	return lo.Reduce(lines, func(acc decimal.Decimal, l *Line, _ int) decimal.Decimal {
		return acc.Add(l.Amount)
	}, decimal.Zero)
}

// LinesOfType filters lines by type
func LinesOfType(lines []*Line, t types.InvoiceLineType) []*Line {
	return lo.Filter(lines, func(l *Line, _ int) bool { return l.LineType == t })
}
