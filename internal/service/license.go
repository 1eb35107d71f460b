package service

import (
	"context"
	"fmt"

	"github.com/kontorapp/kontor/internal/api/dto"
	"github.com/kontorapp/kontor/internal/cache"
	"github.com/kontorapp/kontor/internal/domain/invoice"
	"github.com/kontorapp/kontor/internal/domain/license"
	"github.com/kontorapp/kontor/internal/domain/tenant"
	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/kontorapp/kontor/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// LicenseService is the per-seat license ledger. Every operation is scoped to
// one tenant. Writes keep three things consistent: the licensed flag on the
// user, the licensed employee record of the period and the period's draft
// invoice lines.
type LicenseService interface {
	SeatLedger

	// GetSeatUsage returns the number of active licensed users of the tenant
	GetSeatUsage(ctx context.Context, tenantID string) (int, error)
	// CanAddUser reports whether the seat usage is below the tenant's employee limit.
	// It is read-only; licensing writes re-check under a row lock.
	CanAddUser(ctx context.Context, tenantID string) (bool, error)

	GetOrCreateDraftInvoice(ctx context.Context, tenantID, period string) (*invoice.Invoice, error)
	EnsureMainLicenseLine(ctx context.Context, tenantID, invoiceID, period string) (*invoice.Line, error)
	UpsertUserLicenseLine(ctx context.Context, tenantID, invoiceID, userID, period string, price decimal.Decimal) (*invoice.Line, error)
	RecalculateInvoiceTotal(ctx context.Context, tenantID, invoiceID string) (decimal.Decimal, error)

	// ProcessNewEmployeeLicense licenses the user for the current period. The
	// flag, the period record, the invoice and both lines commit together.
	ProcessNewEmployeeLicense(ctx context.Context, tenantID, userID string) error
	ToggleEmployeeLicense(ctx context.Context, tenantID, userID string, isLicensed bool) error

	GetSubscriptionSummary(ctx context.Context, tenantID, period string) (*dto.SubscriptionSummaryResponse, error)
	// RollOverPeriod opens period for the tenant and bills every currently licensed user in it
	RollOverPeriod(ctx context.Context, tenantID, period string) error
}

type licenseService struct {
	ServiceParams
}

func NewLicenseService(params ServiceParams) LicenseService {
	return &licenseService{ServiceParams: params}
}

func (s *licenseService) GetSeatUsage(ctx context.Context, tenantID string) (int, error) {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return s.UserRepo.CountLicensed(ctx)
}

func (s *licenseService) CanAddUser(ctx context.Context, tenantID string) (bool, error) {
	usage, err := s.GetSeatUsageDetails(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return usage.CanAddUser(), nil
}

func (s *licenseService) GetSeatUsageDetails(ctx context.Context, tenantID string) (SeatUsage, error) {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return SeatUsage{}, err
	}

	limit, err := s.seatLimit(ctx, tenantID)
	if err != nil {
		return SeatUsage{}, err
	}

	used, err := s.UserRepo.CountLicensed(ctx)
	if err != nil {
		return SeatUsage{}, err
	}

	return SeatUsage{CurrentSeats: used, SeatLimit: limit}, nil
}

// seatLimit reads the tenant's seat policy through the cache. The policy is
// changed by plan upgrades only, so a short TTL is enough.
func (s *licenseService) seatLimit(ctx context.Context, tenantID string) (int, error) {
	key := cache.GenerateKey(cache.PrefixSeatPolicy, tenantID)
	if s.Cache != nil {
		if v, ok := s.Cache.Get(ctx, key); ok {
			if limit, ok := v.(int); ok {
				return limit, nil
			}
		}
	}

	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	limit := t.SeatLimit(s.Pricing.DefaultEmployeeLimit)
	if s.Cache != nil {
		s.Cache.Set(ctx, key, limit, 0)
	}
	return limit, nil
}

// lockSeats takes the tenant row lock and returns the uncached seat position.
// Must run inside a transaction.
func (s *licenseService) lockSeats(ctx context.Context, tenantID string) (*tenant.Tenant, SeatUsage, error) {
	t, err := s.TenantRepo.GetForUpdate(ctx, tenantID)
	if err != nil {
		return nil, SeatUsage{}, err
	}

	used, err := s.UserRepo.CountLicensed(ctx)
	if err != nil {
		return nil, SeatUsage{}, err
	}

	return t, SeatUsage{CurrentSeats: used, SeatLimit: t.SeatLimit(s.Pricing.DefaultEmployeeLimit)}, nil
}

func (s *licenseService) GetOrCreateDraftInvoice(ctx context.Context, tenantID, period string) (*invoice.Invoice, error) {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	start, end, err := types.BillingPeriodDates(period)
	if err != nil {
		return nil, err
	}

	existing, err := s.InvoiceRepo.GetByPeriod(ctx, start, end)
	if err == nil {
		return existing, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: types.GenerateInvoiceNumber(tenantID, period),
		BillingPeriod: period,
		PeriodStart:   start,
		PeriodEnd:     end,
		Currency:      s.Pricing.Currency,
		TotalAmount:   decimal.Zero,
		InvoiceStatus: types.InvoiceStatusDraft,
		BaseModel:     types.GetBaseModelAt(ctx, s.now()),
	}

	stored, err := s.InvoiceRepo.CreateIfAbsent(ctx, inv)
	if err != nil {
		return nil, err
	}

	if stored.ID == inv.ID {
		s.Logger.Infow("created draft invoice",
			"tenant_id", tenantID,
			"invoice_id", stored.ID,
			"invoice_number", stored.InvoiceNumber,
			"period", period,
		)
	}
	return stored, nil
}

func (s *licenseService) EnsureMainLicenseLine(ctx context.Context, tenantID, invoiceID, period string) (*invoice.Line, error) {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var line *invoice.Line
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		lines, err := s.InvoiceLineRepo.ListByInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}

		mains := invoice.LinesOfType(lines, types.InvoiceLineTypeMainLicense)
		switch len(mains) {
		case 0:
		case 1:
			line = mains[0]
			return nil
		default:
			return ierr.NewError("invoice has more than one main license line").
				WithReportableDetails(map[string]any{"invoice_id": invoiceID, "lines": len(mains)}).
				Mark(ierr.ErrSystem)
		}

		line = &invoice.Line{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:   invoiceID,
			LineType:    types.InvoiceLineTypeMainLicense,
			Description: fmt.Sprintf("Hovedlisens %s", period),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   s.Pricing.BasePrice,
			Amount:      s.Pricing.BasePrice,
			Metadata:    types.Metadata{types.InvoiceLineMetadataPeriod: period},
			BaseModel:   types.GetBaseModelAt(ctx, s.now()),
		}
		if err := s.InvoiceLineRepo.Create(ctx, line); err != nil {
			return err
		}

		_, err = s.recalculate(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *licenseService) UpsertUserLicenseLine(ctx context.Context, tenantID, invoiceID, userID, period string, price decimal.Decimal) (*invoice.Line, error) {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, ierr.NewError("negative seat price").
			WithHint("Seat price cannot be negative").
			Mark(ierr.ErrValidation)
	}

	var line *invoice.Line
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		lines, err := s.InvoiceLineRepo.ListByInvoice(ctx, invoiceID)
		if err != nil {
			return err
		}

		matches := lo.Filter(lines, func(l *invoice.Line, _ int) bool { return l.IsUserLine(userID, period) })
		if len(matches) > 1 {
			return ierr.NewError("duplicate user license lines").
				WithReportableDetails(map[string]any{"invoice_id": invoiceID, "user_id": userID, "period": period}).
				Mark(ierr.ErrSystem)
		}

		description := fmt.Sprintf("Brukerlisens %s", period)
		if len(matches) == 1 {
			line = matches[0]
			line.Description = description
			line.Quantity = decimal.NewFromInt(1)
			line.UnitPrice = price
			line.Amount = price
			line.UpdatedAt = s.now()
			line.UpdatedBy = types.GetUserID(ctx)
			if err := s.InvoiceLineRepo.Update(ctx, line); err != nil {
				return err
			}
		} else {
			line = &invoice.Line{
				ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
				InvoiceID:   invoiceID,
				LineType:    types.InvoiceLineTypeUserLicense,
				Description: description,
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   price,
				Amount:      price,
				Metadata: types.Metadata{
					types.InvoiceLineMetadataUserID: userID,
					types.InvoiceLineMetadataPeriod: period,
				},
				BaseModel: types.GetBaseModelAt(ctx, s.now()),
			}
			if err := s.InvoiceLineRepo.Create(ctx, line); err != nil {
				return err
			}
		}

		_, err = s.recalculate(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *licenseService) RecalculateInvoiceTotal(ctx context.Context, tenantID, invoiceID string) (decimal.Decimal, error) {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.recalculate(ctx, invoiceID)
}

func (s *licenseService) recalculate(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	lines, err := s.InvoiceLineRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}

	total := invoice.SumLines(lines)
	if err := s.InvoiceRepo.UpdateTotal(ctx, invoiceID, total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (s *licenseService) ProcessNewEmployeeLicense(ctx context.Context, tenantID, userID string) error {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	period := types.CurrentBillingPeriod(s.now())

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		_, usage, err := s.lockSeats(ctx, tenantID)
		if err != nil {
			return err
		}

		u, err := s.UserRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		// an already licensed user keeps the seat it holds
		if !u.IsLicensed {
			if !usage.CanAddUser() {
				return NewSeatLimitExceededError(usage)
			}
			u.IsLicensed = true
			u.UpdatedAt = s.now()
			u.UpdatedBy = types.GetUserID(ctx)
			if err := s.UserRepo.Update(ctx, u); err != nil {
				return err
			}
		}

		return s.billUser(ctx, tenantID, userID, period)
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("licensed employee",
		"tenant_id", tenantID,
		"user_id", userID,
		"period", period,
	)
	return nil
}

// billUser writes the period record and the invoice lines of one licensed user
func (s *licenseService) billUser(ctx context.Context, tenantID, userID, period string) error {
	if err := s.upsertRecord(ctx, userID, period, true); err != nil {
		return err
	}

	inv, err := s.GetOrCreateDraftInvoice(ctx, tenantID, period)
	if err != nil {
		return err
	}

	if _, err := s.EnsureMainLicenseLine(ctx, tenantID, inv.ID, period); err != nil {
		return err
	}

	_, err = s.UpsertUserLicenseLine(ctx, tenantID, inv.ID, userID, period, s.Pricing.SeatPrice)
	return err
}

func (s *licenseService) upsertRecord(ctx context.Context, userID, period string, licensed bool) error {
	_, err := s.LicenseRepo.Upsert(ctx, &license.Record{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LICENSED_EMPLOYEE),
		UserID:        userID,
		BillingPeriod: period,
		IsLicensed:    licensed,
		BaseModel:     types.GetBaseModelAt(ctx, s.now()),
	})
	return err
}

func (s *licenseService) ToggleEmployeeLicense(ctx context.Context, tenantID, userID string, isLicensed bool) error {
	if isLicensed {
		return s.ProcessNewEmployeeLicense(ctx, tenantID, userID)
	}

	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	period := types.CurrentBillingPeriod(s.now())

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.TenantRepo.GetForUpdate(ctx, tenantID); err != nil {
			return err
		}

		u, err := s.UserRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if u.IsLicensed {
			u.IsLicensed = false
			u.UpdatedAt = s.now()
			u.UpdatedBy = types.GetUserID(ctx)
			if err := s.UserRepo.Update(ctx, u); err != nil {
				return err
			}
		}

		// invoice lines already written for the period stay as billed
		return s.upsertRecord(ctx, userID, period, false)
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("unlicensed employee",
		"tenant_id", tenantID,
		"user_id", userID,
		"period", period,
	)
	return nil
}

func (s *licenseService) GetSubscriptionSummary(ctx context.Context, tenantID, period string) (*dto.SubscriptionSummaryResponse, error) {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if period == "" {
		period = types.CurrentBillingPeriod(s.now())
	}
	start, end, err := types.BillingPeriodDates(period)
	if err != nil {
		return nil, err
	}

	t, err := s.TenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	seats, err := s.UserRepo.CountLicensed(ctx)
	if err != nil {
		return nil, err
	}

	summary := &dto.SubscriptionSummaryResponse{
		Period:        period,
		Plan:          t.Plan,
		SeatUsage:     seats,
		EmployeeLimit: t.SeatLimit(s.Pricing.DefaultEmployeeLimit),
		Currency:      s.Pricing.Currency,
	}

	inv, err := s.InvoiceRepo.GetByPeriod(ctx, start, end)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	if inv == nil {
		// no ledger for the period yet, project from the live seat count
		userAmount := s.Pricing.SeatPrice.Mul(decimal.NewFromInt(int64(seats)))
		summary.Status = types.SubscriptionSummaryStatusEstimated
		summary.MainLicense = dto.MainLicenseSummary{
			Description: fmt.Sprintf("Hovedlisens %s", period),
			Amount:      s.Pricing.BasePrice,
		}
		summary.UserLicenses = dto.UserLicensesSummary{
			UnitPrice: s.Pricing.SeatPrice,
			Quantity:  seats,
			Amount:    userAmount,
		}
		summary.Total = dto.SubscriptionTotal{Amount: s.Pricing.BasePrice.Add(userAmount)}
		return summary, nil
	}

	lines, err := s.InvoiceLineRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, err
	}

	mains := invoice.LinesOfType(lines, types.InvoiceLineTypeMainLicense)
	users := invoice.LinesOfType(lines, types.InvoiceLineTypeUserLicense)

	summary.Status = string(inv.InvoiceStatus)
	summary.Currency = inv.Currency
	summary.InvoiceID = lo.ToPtr(inv.ID)
	summary.MainLicense = dto.MainLicenseSummary{Amount: invoice.SumLines(mains)}
	if len(mains) > 0 {
		summary.MainLicense.Description = mains[0].Description
	}

	unitPrice := s.Pricing.SeatPrice
	if len(users) > 0 {
		unitPrice = users[0].UnitPrice
	}
	quantity := lo.Reduce(users, func(acc decimal.Decimal, l *invoice.Line, _ int) decimal.Decimal {
		return acc.Add(l.Quantity)
	}, decimal.Zero)
	summary.UserLicenses = dto.UserLicensesSummary{
		UnitPrice: unitPrice,
		Quantity:  int(quantity.IntPart()),
		Amount:    invoice.SumLines(users),
	}
	summary.Total = dto.SubscriptionTotal{Amount: inv.TotalAmount}

	return summary, nil
}

func (s *licenseService) RollOverPeriod(ctx context.Context, tenantID, period string) error {
	ctx, err := scopeTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if _, err := types.ParseBillingPeriod(period); err != nil {
		return err
	}

	var billed int
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.TenantRepo.GetForUpdate(ctx, tenantID); err != nil {
			return err
		}

		inv, err := s.GetOrCreateDraftInvoice(ctx, tenantID, period)
		if err != nil {
			return err
		}
		if _, err := s.EnsureMainLicenseLine(ctx, tenantID, inv.ID, period); err != nil {
			return err
		}

		users, err := s.UserRepo.ListLicensed(ctx)
		if err != nil {
			return err
		}

		for _, u := range users {
			if err := s.upsertRecord(ctx, u.ID, period, true); err != nil {
				return err
			}
			if _, err := s.UpsertUserLicenseLine(ctx, tenantID, inv.ID, u.ID, period, s.Pricing.SeatPrice); err != nil {
				return err
			}
		}
		billed = len(users)
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.Infow("rolled over billing period",
		"tenant_id", tenantID,
		"period", period,
		"licensed_users", billed,
	)
	return nil
}
