package service

import (
	"context"
	"testing"

	ierr "github.com/kontorapp/kontor/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSeatLedger struct {
	usage SeatUsage
	err   error
}

func (l fixedSeatLedger) GetSeatUsageDetails(context.Context, string) (SeatUsage, error) {
	return l.usage, l.err
}

func TestSeatGuard(t *testing.T) {
	tests := []struct {
		name    string
		usage   SeatUsage
		wantErr bool
	}{
		{"free seat", SeatUsage{CurrentSeats: 4, SeatLimit: 5}, false},
		{"at limit", SeatUsage{CurrentSeats: 5, SeatLimit: 5}, true},
		{"over limit after downgrade", SeatUsage{CurrentSeats: 7, SeatLimit: 5}, true},
		{"zero limit", SeatUsage{CurrentSeats: 0, SeatLimit: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSeatGuard(fixedSeatLedger{usage: tt.usage}).Check(context.Background(), "tenant_1")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, ierr.IsSeatLimitExceeded(err))
			details := ierr.ReportableDetails(err)
			assert.EqualValues(t, tt.usage.CurrentSeats, details["currentSeats"])
			assert.EqualValues(t, tt.usage.SeatLimit, details["seatLimit"])
		})
	}
}

func TestSeatGuardPropagatesLedgerErrors(t *testing.T) {
	ledgerErr := ierr.NewError("tenant not found").Mark(ierr.ErrNotFound)
	err := NewSeatGuard(fixedSeatLedger{err: ledgerErr}).Check(context.Background(), "tenant_1")
	assert.True(t, ierr.IsNotFound(err))
}
