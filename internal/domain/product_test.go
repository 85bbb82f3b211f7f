package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validRawProduct() RawProductConfig {
	return RawProductConfig{
		ID:           "savings-v1",
		Denomination: "USD",
		Rates: []RawTimedRateTable{
			{Curves: map[string][]RawRateBand{"STANDARD": {{Minimum: "0", Rate: "0.149"}}}},
		},
		TierDefault:       "STANDARD",
		InternalAccountID: "internal-1",
	}
}

func TestParseProductConfig_Defaults(t *testing.T) {
	cfg, err := ParseProductConfig(validRawProduct())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Accrual.DaysInYear != 365 {
		t.Errorf("days in year = %d, want 365", cfg.Accrual.DaysInYear)
	}
	if cfg.Accrual.Precision != 5 {
		t.Errorf("accrual precision = %d, want 5", cfg.Accrual.Precision)
	}
	if cfg.Application.Precision != 2 {
		t.Errorf("application precision = %d, want 2", cfg.Application.Precision)
	}
	if cfg.Application.Schedule.Frequency != FrequencyMonthly {
		t.Errorf("frequency = %s, want monthly", cfg.Application.Schedule.Frequency)
	}
	if !cfg.Accepts("USD") {
		t.Error("product must accept its own denomination by default")
	}
	if cfg.Accepts("GBP") {
		t.Error("product must not accept unlisted denominations")
	}
}

func TestParseProductConfig_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawProductConfig)
	}{
		{name: "missing id", mutate: func(r *RawProductConfig) { r.ID = "" }},
		{name: "missing denomination", mutate: func(r *RawProductConfig) { r.Denomination = "" }},
		{name: "missing rates", mutate: func(r *RawProductConfig) { r.Rates = nil }},
		{name: "missing internal account", mutate: func(r *RawProductConfig) { r.InternalAccountID = "" }},
		{name: "bad frequency", mutate: func(r *RawProductConfig) { r.ApplicationFrequency = "WEEKLY" }},
		{name: "application day out of range", mutate: func(r *RawProductConfig) { r.ApplicationDay = 32 }},
		{name: "empty tier curve", mutate: func(r *RawProductConfig) {
			r.Rates[0].Curves["STANDARD"] = nil
		}},
		{name: "bad limit", mutate: func(r *RawProductConfig) {
			r.Limits.MaximumBalance = "lots"
		}},
		{name: "bad fee free percentage", mutate: func(r *RawProductConfig) {
			r.FeeFreePercentage = "-0.1"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRawProduct()
			tt.mutate(&raw)

			_, err := ParseProductConfig(raw)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestParseProductConfig_Limits(t *testing.T) {
	raw := validRawProduct()
	raw.Limits = RawLimitsConfig{
		MaximumBalance:          "20000",
		MinimumInitialDeposit:   "50",
		MaximumWithdrawalByType: map[string]string{"ATM_ARBM": "500"},
	}

	cfg, err := ParseProductConfig(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Limits.MaximumBalance == nil || !cfg.Limits.MaximumBalance.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("maximum balance = %v, want 20000", cfg.Limits.MaximumBalance)
	}
	if cfg.Limits.MaximumSingleDeposit != nil {
		t.Error("unconfigured limit must stay nil")
	}
	if got, ok := cfg.Limits.MaximumWithdrawalByType["ATM_ARBM"]; !ok || !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("per-type cap = %v, want 500", got)
	}
}
