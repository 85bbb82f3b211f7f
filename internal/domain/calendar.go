package domain

import "time"

// DateRange is an inclusive range of calendar dates. Times are compared at
// day granularity in UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the date part of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	d := DateOf(t)

	return !d.Before(DateOf(r.Start)) && !d.After(DateOf(r.End))
}

// Calendar is a set of date ranges marked non-business. Days outside every
// range are business days.
type Calendar struct {
	nonBusiness []DateRange
}

// NewCalendar builds a calendar from non-business date ranges.
func NewCalendar(nonBusiness []DateRange) *Calendar {
	return &Calendar{nonBusiness: nonBusiness}
}

// IsBusinessDay reports whether t falls on a business day.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	if c == nil {
		return true
	}

	for _, r := range c.nonBusiness {
		if r.Contains(t) {
			return false
		}
	}

	return true
}

// NextBusinessDay shifts t forward to the first business day on or after it.
func (c *Calendar) NextBusinessDay(t time.Time) time.Time {
	for !c.IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}

	return t
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameUTCDay reports whether a and b fall on the same UTC calendar date.
func SameUTCDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// SameUTCMonth reports whether a and b fall in the same UTC calendar month.
func SameUTCMonth(a, b time.Time) bool {
	ay, am, _ := a.UTC().Date()
	by, bm, _ := b.UTC().Date()

	return ay == by && am == bm
}
