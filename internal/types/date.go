package types

import (
	"time"
)

// NextOccurrence returns the next due date of a recurring task after from.
//   - daily, weekly: +1 / +7 calendar days
//   - monthly, bi-monthly, quarterly: +1 / +2 / +3 calendar months, clamped to the
//     last day of the target month (Jan 31 + 1 month is Feb 28 or 29, never March)
//   - yearly: +1 year, Feb 29 clamps to Feb 28
//   - once and anything unrecognised: +1 month, the same fallback as NormalizeFrequency
//
// The result is always strictly after from.
func NextOccurrence(from time.Time, f Frequency) time.Time {
	return NextAnchoredOccurrence(from, f, from.Day())
}

// NextAnchoredOccurrence is NextOccurrence for schedules pinned to a day of
// month. Month based steps land on anchorDay, or on the last day of the target
// month when it is shorter, so Jan 31 steps to Feb 29 and then back to Mar 31.
// An anchorDay outside 1-31 falls back to the day of from.
func NextAnchoredOccurrence(from time.Time, f Frequency, anchorDay int) time.Time {
	if anchorDay < 1 || anchorDay > 31 {
		anchorDay = from.Day()
	}

	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsOnDay(from, 1, anchorDay)
	case FrequencyBiMonthly:
		return addMonthsOnDay(from, 2, anchorDay)
	case FrequencyQuarterly:
		return addMonthsOnDay(from, 3, anchorDay)
	case FrequencyYearly:
		return addMonthsOnDay(from, 12, anchorDay)
	case FrequencyOnce:
		return addMonthsOnDay(from, 1, anchorDay)
	default:
		return addMonthsOnDay(from, 1, anchorDay)
	}
}

// AddClampedMonths adds months to t keeping the day of month when the target
// month has it, and using the target month's last day otherwise.
// Unlike time.AddDate it never overflows into the following month.
func AddClampedMonths(t time.Time, months int) time.Time {
	return addMonthsOnDay(t, months, t.Day())
}

func addMonthsOnDay(t time.Time, months, day int) time.Time {
	y, m, _ := t.Date()
	h, min, sec := t.Clock()

	total := int(m) - 1 + months
	newY := y + total/12
	newM := total % 12
	if newM < 0 {
		newM += 12
		newY--
	}
	month := time.Month(newM + 1)

	// day 0 of the following month is the last day of this one
	lastDay := time.Date(newY, month+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(newY, month, day, h, min, sec, t.Nanosecond(), t.Location())
}

// SameCalendarDate reports whether a and b fall on the same UTC calendar day
func SameCalendarDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight UTC of its calendar date
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
