package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBillingPeriod(t *testing.T) {
	oslo := time.FixedZone("CET", 3600)
	// 00:30 on 1 June in Oslo is still May in UTC
	assert.Equal(t, "2024-05", CurrentBillingPeriod(time.Date(2024, time.June, 1, 0, 30, 0, 0, oslo)))
	assert.Equal(t, "2024-06", CurrentBillingPeriod(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)))
}

func TestBillingPeriodDates(t *testing.T) {
	tests := []struct {
		period string
		start  time.Time
		end    time.Time
	}{
		{"2024-02", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.UTC)},
		{"2023-02", time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, time.February, 28, 23, 59, 59, 999000000, time.UTC)},
		{"2024-12", time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.December, 31, 23, 59, 59, 999000000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			start, end, err := BillingPeriodDates(tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestBillingPeriod_Invalid(t *testing.T) {
	for _, p := range []string{"", "2024-13", "2024-6", "24-06", "2024/06", "2024-06-01"} {
		_, _, err := BillingPeriodDates(p)
		assert.Error(t, err, p)
		_, err = NextBillingPeriod(p)
		assert.Error(t, err, p)
	}
}

func TestNextBillingPeriod(t *testing.T) {
	next, err := NextBillingPeriod("2024-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-07", next)

	next, err = NextBillingPeriod("2024-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-01", next)
}

func TestNormalizeBillingPeriod(t *testing.T) {
	now := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-01", NormalizeBillingPeriod("2023-01", now))
	assert.Equal(t, "2024-06", NormalizeBillingPeriod("june", now))
	assert.Equal(t, "2024-06", NormalizeBillingPeriod("", now))
}

func TestGenerateInvoiceNumber(t *testing.T) {
	a := GenerateInvoiceNumber("tenant_01HV8ZB3Q4YVYJ6T1N3A0B8K2C", "2024-06")
	b := GenerateInvoiceNumber("tenant_01HV8ZB3Q4YVYJ6T1N3A0B8K2C", "2024-06")
	assert.Equal(t, a, b)
	assert.Equal(t, "INV-202406-3A0B8K2C", a)
	assert.NotEqual(t, a, GenerateInvoiceNumber("tenant_01HV8ZB3Q4YVYJ6T1N3A0B8K2C", "2024-07"))
	assert.Equal(t, "INV-202401-TENANT", GenerateInvoiceNumber("", "2024-01"))
}

func TestTaskStatus(t *testing.T) {
	for in, want := range map[string]TaskStatus{
		"ikke_startet": TaskStatusPending,
		"Pågår":        TaskStatusInProgress,
		"ferdig":       TaskStatusCompleted,
		"completed":    TaskStatusCompleted,
	} {
		got, err := ParseTaskStatus(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseTaskStatus("blocked")
	assert.Error(t, err)

	assert.True(t, TaskStatusPending.CanTransitionTo(TaskStatusCompleted))
	assert.True(t, TaskStatusInProgress.CanTransitionTo(TaskStatusInProgress))
	assert.False(t, TaskStatusCompleted.CanTransitionTo(TaskStatusPending))
	assert.Equal(t, "pågår", TaskStatusInProgress.Norwegian())
}
