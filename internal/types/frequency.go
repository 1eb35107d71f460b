package types

import (
	"database/sql/driver"
	"strings"

	ierr "github.com/kontorapp/kontor/internal/errors"
)

// Frequency is the canonical recurrence of a recurring task template
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBiMonthly Frequency = "bi-monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyOnce      Frequency = "once"

	// FrequencyFallback is used for any input that cannot be recognised.
	// Falling back to monthly keeps a bad template generating work instead of stalling the tick.
	FrequencyFallback = FrequencyMonthly
)

// AllFrequencies lists every canonical frequency. Tests iterate it to keep the
// switch statements over Frequency exhaustive.
var AllFrequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyBiMonthly,
	FrequencyQuarterly,
	FrequencyYearly,
	FrequencyOnce,
}

// frequencyAliases is matched in order against the normalized input, so longer
// and more specific aliases ("tomånedlig") must come before the ones they contain ("månedlig").
var frequencyAliases = []struct {
	alias     string
	frequency Frequency
}{
	{"bi-monthly", FrequencyBiMonthly},
	{"bimonthly", FrequencyBiMonthly},
	{"bi monthly", FrequencyBiMonthly},
	{"tomånedlig", FrequencyBiMonthly},
	{"annenhver måned", FrequencyBiMonthly},
	{"hver andre måned", FrequencyBiMonthly},
	{"quarterly", FrequencyQuarterly},
	{"kvartalsvis", FrequencyQuarterly},
	{"kvartal", FrequencyQuarterly},
	{"monthly", FrequencyMonthly},
	{"månedlig", FrequencyMonthly},
	{"maanedlig", FrequencyMonthly},
	{"weekly", FrequencyWeekly},
	{"ukentlig", FrequencyWeekly},
	{"daily", FrequencyDaily},
	{"daglig", FrequencyDaily},
	{"yearly", FrequencyYearly},
	{"annually", FrequencyYearly},
	{"annual", FrequencyYearly},
	{"årlig", FrequencyYearly},
	{"aarlig", FrequencyYearly},
	{"once", FrequencyOnce},
	{"one-time", FrequencyOnce},
	{"engangs", FrequencyOnce},
	{"en gang", FrequencyOnce},
}

// ParseFrequency maps free-text input (English or Norwegian, any case or
// spacing) to a canonical Frequency. ok is false when nothing matched and the
// fallback was returned.
func ParseFrequency(input string) (f Frequency, ok bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(input), " "))
	if normalized == "" {
		return FrequencyFallback, false
	}

	for _, a := range frequencyAliases {
		if strings.Contains(normalized, a.alias) {
			return a.frequency, true
		}
	}
	return FrequencyFallback, false
}

// NormalizeFrequency is ParseFrequency without the match flag. It never fails.
func NormalizeFrequency(input string) Frequency {
	f, _ := ParseFrequency(input)
	return f
}

func (f Frequency) String() string {
	return string(f)
}

// IsCanonical reports whether f is one of AllFrequencies
func (f Frequency) IsCanonical() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyBiMonthly,
		FrequencyQuarterly, FrequencyYearly, FrequencyOnce:
		return true
	}
	return false
}

// FrequencyDBEnum is the representation of a Frequency in the task_frequency column
type FrequencyDBEnum string

const (
	FrequencyDBDaily     FrequencyDBEnum = "DAILY"
	FrequencyDBWeekly    FrequencyDBEnum = "WEEKLY"
	FrequencyDBMonthly   FrequencyDBEnum = "MONTHLY"
	FrequencyDBBiMonthly FrequencyDBEnum = "BIMONTHLY"
	FrequencyDBQuarterly FrequencyDBEnum = "QUARTERLY"
	FrequencyDBYearly    FrequencyDBEnum = "YEARLY"
	FrequencyDBOnce      FrequencyDBEnum = "ONCE"
)

// ToDBEnum maps a Frequency to its column value. Non-canonical input is
// normalized first, so the result is always a valid enum value.
func (f Frequency) ToDBEnum() FrequencyDBEnum {
	if !f.IsCanonical() {
		f = NormalizeFrequency(string(f))
	}

	switch f {
	case FrequencyDaily:
		return FrequencyDBDaily
	case FrequencyWeekly:
		return FrequencyDBWeekly
	case FrequencyBiMonthly:
		return FrequencyDBBiMonthly
	case FrequencyQuarterly:
		return FrequencyDBQuarterly
	case FrequencyYearly:
		return FrequencyDBYearly
	case FrequencyOnce:
		return FrequencyDBOnce
	default:
		return FrequencyDBMonthly
	}
}

// FrequencyFromDBEnum is the inverse of ToDBEnum
func FrequencyFromDBEnum(e FrequencyDBEnum) (Frequency, error) {
	switch e {
	case FrequencyDBDaily:
		return FrequencyDaily, nil
	case FrequencyDBWeekly:
		return FrequencyWeekly, nil
	case FrequencyDBMonthly:
		return FrequencyMonthly, nil
	case FrequencyDBBiMonthly:
		return FrequencyBiMonthly, nil
	case FrequencyDBQuarterly:
		return FrequencyQuarterly, nil
	case FrequencyDBYearly:
		return FrequencyYearly, nil
	case FrequencyDBOnce:
		return FrequencyOnce, nil
	}
	return "", ierr.NewError("unknown frequency enum").
		WithHintf("unknown frequency value %q", string(e)).
		Mark(ierr.ErrValidation)
}

// Scan implements sql.Scanner so templates can read the enum column directly
func (f *Frequency) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*f = ""
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return ierr.NewError("unsupported frequency column type").Mark(ierr.ErrDatabase)
	}

	parsed, err := FrequencyFromDBEnum(FrequencyDBEnum(raw))
	if err != nil {
		// legacy free-text rows
		parsed = NormalizeFrequency(raw)
	}
	*f = parsed
	return nil
}

// Value implements driver.Valuer, persisting the enum form
func (f Frequency) Value() (driver.Value, error) {
	return string(f.ToDBEnum()), nil
}
