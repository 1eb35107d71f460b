package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	ierr "github.com/kontorapp/kontor/internal/errors"
)

// BillingPeriodLayout is the time layout of a billing period identifier ("YYYY-MM")
const BillingPeriodLayout = "2006-01"

var billingPeriodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// CurrentBillingPeriod returns the calendar month containing now, in UTC
func CurrentBillingPeriod(now time.Time) string {
	return now.UTC().Format(BillingPeriodLayout)
}

// ParseBillingPeriod returns the first instant of the period
func ParseBillingPeriod(period string) (time.Time, error) {
	if !billingPeriodPattern.MatchString(period) {
		return time.Time{}, ierr.NewError("invalid billing period").
			WithHintf("billing period %q must be formatted as YYYY-MM", period).
			WithReportableDetails(map[string]any{"period": period}).
			Mark(ierr.ErrValidation)
	}
	start, err := time.ParseInLocation(BillingPeriodLayout, period, time.UTC)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("billing period %q must be formatted as YYYY-MM", period).
			Mark(ierr.ErrValidation)
	}
	return start, nil
}

// BillingPeriodDates returns the calendar month boundaries of the period.
// end is inclusive, at 23:59:59.999 on the last day of the month.
func BillingPeriodDates(period string) (start, end time.Time, err error) {
	start, err = ParseBillingPeriod(period)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end = start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end, nil
}

// NextBillingPeriod returns the period following the given one, rolling December over into January
func NextBillingPeriod(period string) (string, error) {
	start, err := ParseBillingPeriod(period)
	if err != nil {
		return "", err
	}
	return start.AddDate(0, 1, 0).Format(BillingPeriodLayout), nil
}

// NormalizeBillingPeriod returns period when it is well formed and the current
// period otherwise. Used where a bad query parameter should not fail a read.
func NormalizeBillingPeriod(period string, now time.Time) string {
	period = strings.TrimSpace(period)
	if billingPeriodPattern.MatchString(period) {
		return period
	}
	return CurrentBillingPeriod(now)
}

// GenerateInvoiceNumber builds the human readable invoice number of a tenant's
// period invoice, e.g. INV-202406-4F2A91C0. It is deterministic: the
// (tenant, period) pair is already unique for invoices.
func GenerateInvoiceNumber(tenantID, period string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(tenantID) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	suffix := b.String()
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	if suffix == "" {
		suffix = "TENANT"
	}
	return fmt.Sprintf("INV-%s-%s", strings.ReplaceAll(period, "-", ""), suffix)
}
