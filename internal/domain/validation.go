package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors
var (
	ErrInvalidDenomination        = errors.New("invalid denomination code")
	ErrInvalidClientTransactionID = errors.New("invalid client transaction ID")
	ErrDetailsTooLarge            = errors.New("instruction details exceed size limit")
)

// Validation constants
const (
	MaxClientTransactionIDLength = 255
	MaxDetailsSize               = 10240 // 10KB
)

// Valid denomination codes (ISO 4217)
var validDenominations = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// ValidateDenomination validates a denomination code.
func ValidateDenomination(denomination string) error {
	if !validDenominations[denomination] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidDenomination, denomination)
	}

	return nil
}

// ValidateClientTransactionID validates a caller-supplied transaction ID.
func ValidateClientTransactionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidClientTransactionID)
	}

	if len(id) > MaxClientTransactionIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidClientTransactionID, MaxClientTransactionIDLength)
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == ':', r == '.':
		default:
			return fmt.Errorf("%w: contains forbidden character %q", ErrInvalidClientTransactionID, r)
		}
	}

	return nil
}

// ValidateDetails validates instruction detail size.
func ValidateDetails(details map[string]string) error {
	if details == nil {
		return nil
	}

	size := 0
	for k, v := range details {
		size += len(k)
		size += len(v)
	}

	if size > MaxDetailsSize {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrDetailsTooLarge, size, MaxDetailsSize)
	}

	return nil
}

// ClampPagination normalizes pagination parameters to safe bounds.
func ClampPagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
