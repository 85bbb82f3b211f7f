package domain

import "time"

// Account is the deposit-account state the engine needs to gate its
// computations. Ledger balances live separately as Balances snapshots.
type Account struct {
	ID           string
	ProductID    string
	Denomination string
	OpenedAt     time.Time
	ReopenedAt   *time.Time // set on time-deposit renewal/rollover
	ClosedAt     *time.Time
	Flags        []TierFlag
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsClosed reports whether the account was closed at or before t.
func (a *Account) IsClosed(t time.Time) bool {
	return a.ClosedAt != nil && !t.Before(*a.ClosedAt)
}

// TermStart returns the start of the current term: the reopen time after a
// renewal, otherwise the opening time.
func (a *Account) TermStart() time.Time {
	if a.ReopenedAt != nil {
		return *a.ReopenedAt
	}

	return a.OpenedAt
}

// InWindow reports whether t falls within d days of the current term start.
// A non-positive d means no window.
func (a *Account) InWindow(t time.Time, d int) bool {
	if d <= 0 {
		return false
	}

	end := a.TermStart().AddDate(0, 0, d)

	return !t.Before(a.TermStart()) && t.Before(end)
}
