package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FlatFee charges a fixed amount on every matching transaction.
type FlatFee struct {
	Amount decimal.Decimal
}

// ThresholdFee charges once the cumulative same-batch amount for a payment
// type crosses Threshold. It carries no state across batches.
type ThresholdFee struct {
	Threshold decimal.Decimal
	Amount    decimal.Decimal
}

// MonthlyLimitFee charges for each withdrawal beyond Limit occurrences of a
// payment type within a calendar month. Limit zero means every occurrence
// is beyond the limit.
type MonthlyLimitFee struct {
	Limit  int
	Amount decimal.Decimal
}

// EarlyWithdrawalFee is charged on withdrawals counting against the
// fee-free allowance: a flat component plus either a percentage of the
// chargeable amount or, when InterestDays is positive, that many days of
// interest on the pre-withdrawal balance instead of the percentage.
type EarlyWithdrawalFee struct {
	Flat         decimal.Decimal
	Percentage   decimal.Decimal
	InterestDays int
}

// FeeSchedule is the parse-once, typed form of a product's fee
// configuration. Absent map keys mean the rule does not apply to that
// payment type.
type FeeSchedule struct {
	Flat            map[string]FlatFee
	Threshold       map[string]ThresholdFee
	MonthlyLimit    map[string]MonthlyLimitFee
	EarlyWithdrawal EarlyWithdrawalFee
}

// Raw wire forms. Empty strings mean the field was not supplied.
type (
	RawFlatFee struct {
		Amount string `json:"amount"`
	}

	RawThresholdFee struct {
		Threshold string `json:"threshold"`
		Amount    string `json:"amount"`
	}

	RawMonthlyLimitFee struct {
		Limit  string `json:"limit"`
		Amount string `json:"amount"`
	}

	RawEarlyWithdrawalFee struct {
		Flat         string `json:"flat"`
		Percentage   string `json:"percentage"`
		InterestDays string `json:"interest_days"`
	}

	RawFeeSchedule struct {
		Flat            map[string]RawFlatFee         `json:"flat"`
		Threshold       map[string]RawThresholdFee    `json:"threshold"`
		MonthlyLimit    map[string]RawMonthlyLimitFee `json:"monthly_limit"`
		EarlyWithdrawal RawEarlyWithdrawalFee         `json:"early_withdrawal"`
	}
)

// ParseFeeSchedule converts raw fee configuration into its typed form.
// Fee and limit fields are optional configuration: an entry missing a
// required numeric field, or with a non-positive fee amount, is silently
// dropped rather than erroring. A limit or threshold of exactly zero is
// kept and means "always exceeded"; a negative one drops the entry.
func ParseFeeSchedule(raw RawFeeSchedule) *FeeSchedule {
	s := &FeeSchedule{
		Flat:         make(map[string]FlatFee),
		Threshold:    make(map[string]ThresholdFee),
		MonthlyLimit: make(map[string]MonthlyLimitFee),
	}

	for pt, rf := range raw.Flat {
		amount, ok := parsePositive(rf.Amount)
		if !ok {
			continue
		}

		s.Flat[pt] = FlatFee{Amount: amount}
	}

	for pt, rf := range raw.Threshold {
		amount, ok := parsePositive(rf.Amount)
		if !ok {
			continue
		}

		threshold, ok := parseNonNegative(rf.Threshold)
		if !ok {
			continue
		}

		s.Threshold[pt] = ThresholdFee{Threshold: threshold, Amount: amount}
	}

	for pt, rf := range raw.MonthlyLimit {
		amount, ok := parsePositive(rf.Amount)
		if !ok {
			continue
		}

		limit, err := strconv.Atoi(rf.Limit)
		if err != nil || limit < 0 {
			continue
		}

		s.MonthlyLimit[pt] = MonthlyLimitFee{Limit: limit, Amount: amount}
	}

	s.EarlyWithdrawal = parseEarlyWithdrawalFee(raw.EarlyWithdrawal)

	return s
}

func parseEarlyWithdrawalFee(raw RawEarlyWithdrawalFee) EarlyWithdrawalFee {
	fee := EarlyWithdrawalFee{}

	if flat, ok := parsePositive(raw.Flat); ok {
		fee.Flat = flat
	}

	if pct, ok := parsePositive(raw.Percentage); ok {
		fee.Percentage = pct
	}

	if days, err := strconv.Atoi(raw.InterestDays); err == nil && days > 0 {
		fee.InterestDays = days
	}

	return fee
}

func parsePositive(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}

	return d, true
}

func parseNonNegative(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}

	return d, true
}
