package domain

import "time"

// TierFlag is a customer attribute with an activation window. Accounts carry
// zero or more flags; the active one with the highest configured priority
// selects the tier.
type TierFlag struct {
	Name        string
	ActivatedAt time.Time
	ExpiresAt   time.Time // zero value means no expiry
}

// ActiveAt reports whether the flag's window covers t.
func (f TierFlag) ActiveAt(t time.Time) bool {
	if t.Before(f.ActivatedAt) {
		return false
	}
	if !f.ExpiresAt.IsZero() && !t.Before(f.ExpiresAt) {
		return false
	}

	return true
}

// TierPolicy resolves an account's tier from its flags.
type TierPolicy struct {
	// Priority lists tier names highest-priority first.
	Priority []string
	// Default applies when no prioritized flag is active.
	Default string
}

// Resolve returns the first tier in priority order with an active flag at t,
// falling back to the default tier.
func (p TierPolicy) Resolve(flags []TierFlag, at time.Time) string {
	for _, name := range p.Priority {
		for _, f := range flags {
			if f.Name == name && f.ActiveAt(at) {
				return name
			}
		}
	}

	return p.Default
}
