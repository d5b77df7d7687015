package shared

import (
	"fmt"
	"time"
)

// Clock supplies the business "today". All due-date and accrual arithmetic is
// date-only in the business timezone so that server-local day boundaries never
// shift a payment into the wrong day.
type Clock interface {
	Today() time.Time
}

// BusinessClock resolves today in a fixed business timezone, truncated to the
// date.
type BusinessClock struct {
	loc *time.Location
}

// NewBusinessClock creates a clock for the given IANA timezone name.
func NewBusinessClock(timezone string) (*BusinessClock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", timezone, err)
	}
	return &BusinessClock{loc: loc}, nil
}

// Today returns the current business date at midnight UTC.
func (c *BusinessClock) Today() time.Time {
	now := time.Now().In(c.loc)
	return DateOnly(now)
}

// FixedClock always reports the same date. Used in tests and for as-of reads.
type FixedClock struct {
	Date time.Time
}

// Today returns the fixed date.
func (c FixedClock) Today() time.Time {
	return DateOnly(c.Date)
}

// DateOnly strips the time-of-day component, keeping year/month/day in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b, negative when b
// precedes a. Both arguments are normalized to dates first.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// MonthsBetween returns the whole number of calendar months elapsed from a to
// b. A partial month does not count: Jan 15 to Feb 14 is zero months, Jan 15
// to Feb 15 is one.
func MonthsBetween(a, b time.Time) int {
	a, b = DateOnly(a), DateOnly(b)
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
