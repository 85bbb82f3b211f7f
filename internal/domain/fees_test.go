package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseFeeSchedule_Leniency(t *testing.T) {
	raw := RawFeeSchedule{
		Flat: map[string]RawFlatFee{
			"ATM_ARBM":  {Amount: "1.50"},
			"NO_AMOUNT": {},
			"ZERO_FEE":  {Amount: "0"},
			"NEGATIVE":  {Amount: "-2"},
			"GARBAGE":   {Amount: "abc"},
		},
	}

	s := ParseFeeSchedule(raw)

	if len(s.Flat) != 1 {
		t.Fatalf("expected exactly one surviving flat fee entry, got %d", len(s.Flat))
	}

	fee, ok := s.Flat["ATM_ARBM"]
	if !ok {
		t.Fatal("expected ATM_ARBM entry to survive")
	}
	if !fee.Amount.Equal(decimal.NewFromFloat(1.50)) {
		t.Errorf("flat fee = %s, want 1.5", fee.Amount)
	}
}

func TestParseFeeSchedule_ZeroLimitAsymmetry(t *testing.T) {
	raw := RawFeeSchedule{
		MonthlyLimit: map[string]RawMonthlyLimitFee{
			// A zero limit is kept: the fee fires on every occurrence.
			"ATM_ARBM": {Limit: "0", Amount: "5"},
			// A zero fee disables the entry entirely.
			"BRANCH": {Limit: "3", Amount: "0"},
			// A missing limit disables the entry.
			"ONLINE": {Amount: "5"},
		},
	}

	s := ParseFeeSchedule(raw)

	entry, ok := s.MonthlyLimit["ATM_ARBM"]
	if !ok {
		t.Fatal("zero limit entry must be kept")
	}
	if entry.Limit != 0 {
		t.Errorf("limit = %d, want 0", entry.Limit)
	}

	if _, ok := s.MonthlyLimit["BRANCH"]; ok {
		t.Error("zero fee entry must be dropped")
	}
	if _, ok := s.MonthlyLimit["ONLINE"]; ok {
		t.Error("entry missing its limit must be dropped")
	}
}

func TestParseFeeSchedule_Threshold(t *testing.T) {
	raw := RawFeeSchedule{
		Threshold: map[string]RawThresholdFee{
			"WIRE":     {Threshold: "1000", Amount: "12.50"},
			"ZERO_THR": {Threshold: "0", Amount: "1"}, // zero threshold: always crossed
			"NEG_THR":  {Threshold: "-1", Amount: "1"},
			"NO_FEE":   {Threshold: "1000"},
		},
	}

	s := ParseFeeSchedule(raw)

	if _, ok := s.Threshold["WIRE"]; !ok {
		t.Error("expected WIRE entry")
	}
	if _, ok := s.Threshold["ZERO_THR"]; !ok {
		t.Error("zero threshold entry must be kept")
	}
	if _, ok := s.Threshold["NEG_THR"]; ok {
		t.Error("negative threshold entry must be dropped")
	}
	if _, ok := s.Threshold["NO_FEE"]; ok {
		t.Error("entry missing its fee must be dropped")
	}
}

func TestParseEarlyWithdrawalFee(t *testing.T) {
	fee := parseEarlyWithdrawalFee(RawEarlyWithdrawalFee{
		Flat:         "10",
		Percentage:   "0.01",
		InterestDays: "90",
	})

	if !fee.Flat.Equal(decimal.NewFromInt(10)) {
		t.Errorf("flat = %s, want 10", fee.Flat)
	}
	if !fee.Percentage.Equal(decimal.NewFromFloat(0.01)) {
		t.Errorf("percentage = %s, want 0.01", fee.Percentage)
	}
	if fee.InterestDays != 90 {
		t.Errorf("interest days = %d, want 90", fee.InterestDays)
	}

	// Invalid components degrade to disabled, not errors.
	fee = parseEarlyWithdrawalFee(RawEarlyWithdrawalFee{Flat: "x", Percentage: "-1", InterestDays: "0"})
	if !fee.Flat.IsZero() || !fee.Percentage.IsZero() || fee.InterestDays != 0 {
		t.Errorf("expected fully disabled fee, got %+v", fee)
	}
}
