package hotel

import (
	"fmt"
	"time"
)

// DateLayout is the on-disk and wire format of every date in the system.
const DateLayout = "2006-01-02"

// =============================================================================
// DATE - Calendar day (this IS a nightly-booking system, no time of day)
// =============================================================================

// Date is a calendar day, always held as UTC midnight.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date { return NewDate(t.Year(), t.Month(), t.Day()) }

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals in tests and scenarios.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format(DateLayout) }

// MarshalText writes the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the signed number of days from -> to.
func DaysBetween(from, to Date) int { return int(to.Time.Sub(from.Time).Hours() / 24) }

// =============================================================================
// STAY - The booked interval of a reservation
// =============================================================================

// Stay is the interval [CheckIn, CheckOut] of a reservation.
//
// Two different readings of the interval are used:
//   - Overlaps treats both endpoints as booked, so a check-out on the same
//     day as another check-in is a conflict.
//   - Occupies treats the check-out day as vacant (the room is free that night).
type Stay struct {
	CheckIn  Date
	CheckOut Date
}

// Overlaps reports whether two stays conflict: ci <= o.co && co >= o.ci.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.BeforeOrEqual(other.CheckOut) && s.CheckOut.AfterOrEqual(other.CheckIn)
}

// Occupies reports whether the room is taken on the night of d: ci <= d < co.
func (s Stay) Occupies(d Date) bool {
	return s.CheckIn.BeforeOrEqual(d) && d.Before(s.CheckOut)
}

// Nights returns the number of billable nights, never negative.
func (s Stay) Nights() int {
	n := DaysBetween(s.CheckIn, s.CheckOut)
	if n < 0 {
		return 0
	}
	return n
}

// Within reports whether the stay passes an optional [from, to] filter:
// co >= from and ci <= to.
func (s Stay) Within(from, to *Date) bool {
	if from != nil && s.CheckOut.Before(*from) {
		return false
	}
	if to != nil && s.CheckIn.After(*to) {
		return false
	}
	return true
}

func (s Stay) String() string {
	return "[" + s.CheckIn.String() + ", " + s.CheckOut.String() + "]"
}
