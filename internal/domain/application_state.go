package domain

import "time"

// ScheduleStatus is the state of an account's application schedule.
type ScheduleStatus string

const (
	ScheduleWaiting   ScheduleStatus = "WAITING"
	ScheduleDue       ScheduleStatus = "DUE"
	ScheduleApplied   ScheduleStatus = "APPLIED"
	ScheduleCompleted ScheduleStatus = "COMPLETED"
)

// ApplicationState tracks when interest is next applied on an account.
// Transitions: WAITING -> DUE on schedule fire, DUE -> APPLIED on
// application, APPLIED -> WAITING on reschedule. COMPLETED is terminal and
// set instead of firing when the account is deactivated.
type ApplicationState struct {
	AccountID     string
	Status        ScheduleStatus
	NextAt        time.Time
	LastAppliedAt *time.Time
	UpdatedAt     time.Time
}

// MarkDue transitions WAITING -> DUE when the schedule fires.
func (s *ApplicationState) MarkDue(now time.Time) error {
	if s.Status == ScheduleCompleted {
		return ErrScheduleComplete
	}
	if s.Status != ScheduleWaiting {
		return NewConfigurationError("schedule for %s is %s, cannot mark due", s.AccountID, s.Status)
	}

	s.Status = ScheduleDue
	s.UpdatedAt = now

	return nil
}

// MarkApplied transitions DUE -> APPLIED after a successful application.
func (s *ApplicationState) MarkApplied(now time.Time) error {
	if s.Status != ScheduleDue {
		return NewConfigurationError("schedule for %s is %s, cannot apply", s.AccountID, s.Status)
	}

	s.Status = ScheduleApplied
	s.LastAppliedAt = &now
	s.UpdatedAt = now

	return nil
}

// Reschedule computes the occurrence after from and returns to WAITING.
// Parameter changes take effect here, never retroactively: a change whose
// computed occurrence lies in the past is rejected.
func (s *ApplicationState) Reschedule(schedule ApplicationSchedule, from, now time.Time, cal *Calendar) error {
	if s.Status == ScheduleCompleted {
		return ErrScheduleComplete
	}

	next := schedule.Next(from, cal)
	if next.Before(now) {
		return ErrScheduleInPast
	}

	s.Status = ScheduleWaiting
	s.NextAt = next
	s.UpdatedAt = now

	return nil
}

// Complete marks the schedule finished instead of firing, e.g. on account
// closure before a due date.
func (s *ApplicationState) Complete(now time.Time) {
	s.Status = ScheduleCompleted
	s.UpdatedAt = now
}
