package domain

import "time"

// Frequency of a recurring schedule.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyAnnually  Frequency = "ANNUALLY"
)

func (f Frequency) valid() bool {
	switch f {
	case FrequencyDaily, FrequencyMonthly, FrequencyQuarterly, FrequencyAnnually:
		return true
	}

	return false
}

// months returns the month step of the frequency, 0 for daily.
func (f Frequency) months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyAnnually:
		return 12
	}

	return 0
}

// ApplicationSchedule describes when accrued interest is applied.
type ApplicationSchedule struct {
	Frequency  Frequency
	DayOfMonth int
	Hour       int
	Minute     int
	Second     int
}

// Next computes the first occurrence strictly after t. The configured day
// of month is clamped to the last valid day of the target month, and an
// occurrence landing on a non-business day shifts forward to the next
// business day.
func (s ApplicationSchedule) Next(after time.Time, cal *Calendar) time.Time {
	after = after.UTC()

	if s.Frequency == FrequencyDaily {
		next := time.Date(after.Year(), after.Month(), after.Day(), s.Hour, s.Minute, s.Second, 0, time.UTC)
		if !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}

		return s.shift(next, cal)
	}

	step := s.Frequency.months()

	// Walk month by month from the current month until the clamped
	// occurrence lands after t.
	candidate := s.occurrenceIn(after.Year(), after.Month())
	for !candidate.After(after) {
		candidate = candidate.AddDate(0, step, 0)
		candidate = s.occurrenceIn(candidate.Year(), candidate.Month())
	}

	return s.shift(candidate, cal)
}

// occurrenceIn places the configured day of month inside a given month,
// clamped to the month's last day.
func (s ApplicationSchedule) occurrenceIn(year int, month time.Month) time.Time {
	day := s.DayOfMonth
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}

	return time.Date(year, month, day, s.Hour, s.Minute, s.Second, 0, time.UTC)
}

func (s ApplicationSchedule) shift(t time.Time, cal *Calendar) time.Time {
	shifted := cal.NextBusinessDay(DateOf(t))

	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(), s.Hour, s.Minute, s.Second, 0, time.UTC)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
