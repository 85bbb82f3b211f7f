package domain

import (
	"errors"
	"fmt"
)

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountClosed   = errors.New("account is closed")

	// Posting errors
	ErrBatchNotFound  = errors.New("posting batch not found")
	ErrDuplicateBatch = errors.New("client transaction id already committed")

	// Schedule errors
	ErrScheduleNotFound = errors.New("application schedule not found")

	// Product configuration errors
	ErrProductNotFound  = errors.New("product configuration not found")
	ErrConfiguration    = errors.New("invalid product configuration")
	ErrScheduleInPast   = errors.New("schedule change would compute an occurrence in the past")
	ErrScheduleComplete = errors.New("schedule is already completed")
)

// NewConfigurationError wraps ErrConfiguration with a formatted detail.
// Configuration faults are operator errors and always fail loudly.
func NewConfigurationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
