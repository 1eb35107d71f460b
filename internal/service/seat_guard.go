package service

import (
	"context"
	"fmt"

	ierr "github.com/kontorapp/kontor/internal/errors"
)

// SeatUsage is the seat position of a tenant
type SeatUsage struct {
	CurrentSeats int `json:"currentSeats"`
	SeatLimit    int `json:"seatLimit"`
}

// CanAddUser reports whether one more licensed user fits
func (u SeatUsage) CanAddUser() bool {
	return u.CurrentSeats < u.SeatLimit
}

// NewSeatLimitExceededError is returned when a tenant has no free seat.
// The details render as {currentSeats, seatLimit} in the HTTP response.
func NewSeatLimitExceededError(usage SeatUsage) error {
	return ierr.NewError(fmt.Sprintf("seat limit exceeded: %d of %d seats in use", usage.CurrentSeats, usage.SeatLimit)).
		WithHintf("All %d licensed seats are in use. Upgrade the plan or unlicense an employee first.", usage.SeatLimit).
		WithReportableDetails(map[string]any{
			"currentSeats": usage.CurrentSeats,
			"seatLimit":    usage.SeatLimit,
		}).
		Mark(ierr.ErrSeatLimitExceeded)
}

// SeatLedger is the part of the license ledger the guard reads
type SeatLedger interface {
	GetSeatUsageDetails(ctx context.Context, tenantID string) (SeatUsage, error)
}

// SeatGuard is the request-time gate in front of every flow that adds a
// licensed employee. It only reads: the licensing write re-checks the seat
// count under the tenant row lock, so a passing Check is advisory.
type SeatGuard interface {
	Check(ctx context.Context, tenantID string) error
}

type seatGuard struct {
	ledger SeatLedger
}

func NewSeatGuard(ledger SeatLedger) SeatGuard {
	return &seatGuard{ledger: ledger}
}

func (g *seatGuard) Check(ctx context.Context, tenantID string) error {
	usage, err := g.ledger.GetSeatUsageDetails(ctx, tenantID)
	if err != nil {
		return err
	}
	if !usage.CanAddUser() {
		return NewSeatLimitExceededError(usage)
	}
	return nil
}
