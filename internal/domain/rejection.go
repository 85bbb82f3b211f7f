package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RejectionKind classifies a validator veto.
type RejectionKind string

const (
	RejectionWrongDenomination         RejectionKind = "WRONG_DENOMINATION"
	RejectionAgainstTermsAndConditions RejectionKind = "AGAINST_TERMS_AND_CONDITIONS"
	RejectionInsufficientFunds         RejectionKind = "INSUFFICIENT_FUNDS"
	RejectionCustom                    RejectionKind = "CUSTOM"
)

// Rejection is a typed, user-facing veto of an entire posting batch.
// Reasons carry the literal amounts involved so callers can assert on them.
type Rejection struct {
	Kind   RejectionKind
	Reason string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}

// RejectWrongDenomination builds a denomination mismatch rejection.
func RejectWrongDenomination(got string, accepted []string) *Rejection {
	return &Rejection{
		Kind:   RejectionWrongDenomination,
		Reason: fmt.Sprintf("postings must be in one of %v, got %s", accepted, got),
	}
}

// RejectPolicy builds a generic limit/policy violation rejection.
func RejectPolicy(format string, args ...any) *Rejection {
	return &Rejection{
		Kind:   RejectionAgainstTermsAndConditions,
		Reason: fmt.Sprintf(format, args...),
	}
}

// RejectInsufficientFunds is used when fees exceed the withdrawal amount.
func RejectInsufficientFunds(fee, withdrawal decimal.Decimal, denomination string) *Rejection {
	return &Rejection{
		Kind: RejectionInsufficientFunds,
		Reason: fmt.Sprintf(
			"the fees of %s %s are not covered by the withdrawal amount of %s %s",
			fee, denomination, withdrawal, denomination,
		),
	}
}

// RejectCustom is used for malformed batch shapes.
func RejectCustom(format string, args ...any) *Rejection {
	return &Rejection{
		Kind:   RejectionCustom,
		Reason: fmt.Sprintf(format, args...),
	}
}
