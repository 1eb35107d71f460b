package testutil

import (
	"context"
	"time"

	"github.com/kontorapp/kontor/internal/domain/invoice"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore(func(inv *invoice.Invoice) *invoice.Invoice {
			c := *inv
			return &c
		}),
	}
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inTenant(ctx, inv.TenantID) {
		return nil, notFound("invoice", id)
	}
	return inv, nil
}

func (s *InMemoryInvoiceStore) GetByPeriod(ctx context.Context, start, end time.Time) (*invoice.Invoice, error) {
	items := s.InMemoryStore.List(ctx, func(ctx context.Context, inv *invoice.Invoice) bool {
		return inTenant(ctx, inv.TenantID) && inv.PeriodStart.Equal(start) && inv.PeriodEnd.Equal(end)
	}, nil)
	if len(items) == 0 {
		return nil, notFound("invoice", start.Format("2006-01"))
	}
	return items[0], nil
}

func (s *InMemoryInvoiceStore) CreateIfAbsent(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	if inv.TenantID == "" {
		inv.TenantID = types.GetTenantID(ctx)
	}

	err := s.InMemoryStore.CreateUnless(ctx, inv.ID, inv, func(stored *invoice.Invoice) bool {
		return stored.TenantID == inv.TenantID &&
			stored.PeriodStart.Equal(inv.PeriodStart) &&
			stored.PeriodEnd.Equal(inv.PeriodEnd)
	})
	if err != nil && !ierr.IsAlreadyExists(err) {
		return nil, err
	}
	return s.GetByPeriod(ctx, inv.PeriodStart, inv.PeriodEnd)
}

func (s *InMemoryInvoiceStore) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	inv.TotalAmount = total
	inv.UpdatedBy = types.GetUserID(ctx)
	return s.InMemoryStore.Update(ctx, id, inv)
}

// InMemoryInvoiceLineStore implements invoice.LineRepository
type InMemoryInvoiceLineStore struct {
	*InMemoryStore[*invoice.Line]
}

func NewInMemoryInvoiceLineStore() *InMemoryInvoiceLineStore {
	return &InMemoryInvoiceLineStore{
		InMemoryStore: NewInMemoryStore(func(l *invoice.Line) *invoice.Line {
			c := *l
			c.Metadata = lo.Assign(l.Metadata)
			return &c
		}),
	}
}

// Create enforces one MAIN_LICENSE line per invoice and one USER_LICENSE
// line per user and period
func (s *InMemoryInvoiceLineStore) Create(ctx context.Context, l *invoice.Line) error {
	if l.TenantID == "" {
		l.TenantID = types.GetTenantID(ctx)
	}
	return s.InMemoryStore.CreateUnless(ctx, l.ID, l, func(stored *invoice.Line) bool {
		if stored.InvoiceID != l.InvoiceID || stored.Status != types.StatusPublished {
			return false
		}
		switch l.LineType {
		case types.InvoiceLineTypeMainLicense:
			return stored.LineType == types.InvoiceLineTypeMainLicense
		case types.InvoiceLineTypeUserLicense:
			return stored.IsUserLine(l.Metadata[types.InvoiceLineMetadataUserID], l.Metadata[types.InvoiceLineMetadataPeriod])
		}
		return false
	})
}

func (s *InMemoryInvoiceLineStore) Update(ctx context.Context, l *invoice.Line) error {
	stored, err := s.InMemoryStore.Get(ctx, l.ID)
	if err != nil {
		return err
	}
	if !inTenant(ctx, stored.TenantID) {
		return notFound("invoice line", l.ID)
	}
	return s.InMemoryStore.Update(ctx, l.ID, l)
}

func (s *InMemoryInvoiceLineStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*invoice.Line, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, l *invoice.Line) bool {
		return inTenant(ctx, l.TenantID) && l.InvoiceID == invoiceID && l.Status == types.StatusPublished
	}, func(a, b *invoice.Line) bool {
		return a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID)
	}), nil
}
