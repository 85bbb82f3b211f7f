package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitsConfig carries the one-off and daily-aggregate transaction limits.
// Nil fields mean the limit is not configured and never vetoes.
type LimitsConfig struct {
	MaximumBalance               *decimal.Decimal
	MinimumSingleDeposit         *decimal.Decimal
	MaximumSingleDeposit         *decimal.Decimal
	MinimumInitialDeposit        *decimal.Decimal
	MaximumSingleWithdrawal      *decimal.Decimal
	MinimumBalanceByTier         map[string]decimal.Decimal
	MaximumWithdrawalByType      map[string]decimal.Decimal
	MaximumDailyDeposit          *decimal.Decimal
	MaximumDailyWithdrawal       *decimal.Decimal
	MaximumDailyWithdrawalByType map[string]decimal.Decimal
}

// TermConfig gates deposits and fee exemptions on time-deposit products.
// Zero day counts disable the corresponding window.
type TermConfig struct {
	TermMonths        int
	DepositPeriodDays int
	CoolingOffDays    int
	GraceDays         int
	SingleDeposit     bool
}

// MaturesAt returns the end of the term counted from start. The second
// return is false when the product carries no fixed term.
func (t TermConfig) MaturesAt(start time.Time) (time.Time, bool) {
	if t.TermMonths <= 0 {
		return time.Time{}, false
	}

	return start.AddDate(0, t.TermMonths, 0), true
}

// AccrualConfig parameterizes the daily accrual calculator.
type AccrualConfig struct {
	DaysInYear        int
	Precision         int32
	Receivable        bool
	InternalAccountID string
	Hour              int
	Minute            int
	Second            int
}

// AccrualAddress returns the address accrued amounts are parked at.
func (c AccrualConfig) AccrualAddress() Address {
	if c.Receivable {
		return AddressAccruedReceivable
	}

	return AddressAccruedPayable
}

// ApplicationConfig parameterizes the periodic application engine.
type ApplicationConfig struct {
	Precision    int32
	Schedule     ApplicationSchedule
	TrackApplied bool
}

// ProductConfig is the full, validated configuration of one deposit
// product. Construct with ParseProductConfig; components receive it
// explicitly, never through ambient state.
type ProductConfig struct {
	ID                    string
	Denomination          string
	AcceptedDenominations []string
	TimeDeposit           bool
	Tiers                 TierPolicy
	Rates                 RateSchedule
	Limits                LimitsConfig
	Fees                  *FeeSchedule
	Accrual               AccrualConfig
	Application           ApplicationConfig
	Term                  TermConfig
	FeeFreePercentage     decimal.Decimal
}

// Accepts reports whether the product accepts a denomination.
func (p *ProductConfig) Accepts(denomination string) bool {
	for _, d := range p.AcceptedDenominations {
		if d == denomination {
			return true
		}
	}

	return false
}

// Raw wire forms of the product configuration.
type (
	RawLimitsConfig struct {
		MaximumBalance               string            `json:"maximum_balance"`
		MinimumSingleDeposit         string            `json:"minimum_single_deposit"`
		MaximumSingleDeposit         string            `json:"maximum_single_deposit"`
		MinimumInitialDeposit        string            `json:"minimum_initial_deposit"`
		MaximumSingleWithdrawal      string            `json:"maximum_single_withdrawal"`
		MinimumBalanceByTier         map[string]string `json:"minimum_balance_by_tier"`
		MaximumWithdrawalByType      map[string]string `json:"maximum_withdrawal_by_type"`
		MaximumDailyDeposit          string            `json:"maximum_daily_deposit"`
		MaximumDailyWithdrawal       string            `json:"maximum_daily_withdrawal"`
		MaximumDailyWithdrawalByType map[string]string `json:"maximum_daily_withdrawal_by_type"`
	}

	RawTimedRateTable struct {
		From   string                   `json:"from"`
		To     string                   `json:"to"`
		Curves map[string][]RawRateBand `json:"curves"`
	}

	RawProductConfig struct {
		ID                    string              `json:"id"`
		Denomination          string              `json:"denomination"`
		AcceptedDenominations []string            `json:"accepted_denominations"`
		TimeDeposit           bool                `json:"time_deposit"`
		TierPriority          []string            `json:"tier_priority"`
		TierDefault           string              `json:"tier_default"`
		Rates                 []RawTimedRateTable `json:"rates"`
		Limits                RawLimitsConfig     `json:"limits"`
		Fees                  RawFeeSchedule      `json:"fees"`
		DaysInYear            int                 `json:"days_in_year"`
		AccrualPrecision      int32               `json:"accrual_precision"`
		Receivable            bool                `json:"receivable"`
		InternalAccountID     string              `json:"internal_account_id"`
		AccrualHour           int                 `json:"accrual_hour"`
		AccrualMinute         int                 `json:"accrual_minute"`
		AccrualSecond         int                 `json:"accrual_second"`
		ApplicationPrecision  int32               `json:"application_precision"`
		ApplicationFrequency  string              `json:"application_frequency"`
		ApplicationDay        int                 `json:"application_day"`
		TrackApplied          bool                `json:"track_applied"`
		TermMonths            int                 `json:"term_months"`
		DepositPeriodDays     int                 `json:"deposit_period_days"`
		CoolingOffDays        int                 `json:"cooling_off_days"`
		GraceDays             int                 `json:"grace_days"`
		SingleDeposit         bool                `json:"single_deposit"`
		FeeFreePercentage     string              `json:"fee_free_percentage"`
	}
)

// ParseProductConfig validates a raw product configuration once, up front.
// Required paths (denomination, rate tables, frequency) fail loudly;
// optional limit and fee fields follow the fee-schedule leniency rules.
func ParseProductConfig(raw RawProductConfig) (*ProductConfig, error) {
	if raw.ID == "" {
		return nil, NewConfigurationError("product id is required")
	}
	if raw.Denomination == "" {
		return nil, NewConfigurationError("product %q: denomination is required", raw.ID)
	}
	if err := ValidateDenomination(raw.Denomination); err != nil {
		return nil, NewConfigurationError("product %q: %v", raw.ID, err)
	}
	for _, d := range raw.AcceptedDenominations {
		if err := ValidateDenomination(d); err != nil {
			return nil, NewConfigurationError("product %q: %v", raw.ID, err)
		}
	}
	if len(raw.Rates) == 0 {
		return nil, NewConfigurationError("product %q: at least one rate table is required", raw.ID)
	}

	rates := make(RateSchedule, 0, len(raw.Rates))
	for i, rt := range raw.Rates {
		table, err := ParseRateTable(rt.Curves)
		if err != nil {
			return nil, err
		}

		timed := TimedRateTable{Table: table}
		if rt.From != "" {
			from, err := time.Parse(time.RFC3339, rt.From)
			if err != nil {
				return nil, NewConfigurationError("product %q: rate table %d: bad from %q", raw.ID, i, rt.From)
			}
			timed.From = from
		}
		if rt.To != "" {
			to, err := time.Parse(time.RFC3339, rt.To)
			if err != nil {
				return nil, NewConfigurationError("product %q: rate table %d: bad to %q", raw.ID, i, rt.To)
			}
			timed.To = to
		}

		rates = append(rates, timed)
	}

	limits, err := parseLimits(raw.ID, raw.Limits)
	if err != nil {
		return nil, err
	}

	frequency := Frequency(raw.ApplicationFrequency)
	if raw.ApplicationFrequency == "" {
		frequency = FrequencyMonthly
	}
	if !frequency.valid() {
		return nil, NewConfigurationError("product %q: bad application frequency %q", raw.ID, raw.ApplicationFrequency)
	}

	applicationDay := raw.ApplicationDay
	if applicationDay < 1 {
		applicationDay = 1
	}
	if applicationDay > 31 {
		return nil, NewConfigurationError("product %q: application day %d out of range", raw.ID, raw.ApplicationDay)
	}

	cfg := &ProductConfig{
		ID:                    raw.ID,
		Denomination:          raw.Denomination,
		AcceptedDenominations: raw.AcceptedDenominations,
		TimeDeposit:           raw.TimeDeposit,
		Tiers: TierPolicy{
			Priority: raw.TierPriority,
			Default:  raw.TierDefault,
		},
		Rates:  rates,
		Limits: limits,
		Fees:   ParseFeeSchedule(raw.Fees),
		Accrual: AccrualConfig{
			DaysInYear:        raw.DaysInYear,
			Precision:         raw.AccrualPrecision,
			Receivable:        raw.Receivable,
			InternalAccountID: raw.InternalAccountID,
			Hour:              raw.AccrualHour,
			Minute:            raw.AccrualMinute,
			Second:            raw.AccrualSecond,
		},
		Application: ApplicationConfig{
			Precision: raw.ApplicationPrecision,
			Schedule: ApplicationSchedule{
				Frequency:  frequency,
				DayOfMonth: applicationDay,
			},
			TrackApplied: raw.TrackApplied,
		},
		Term: TermConfig{
			TermMonths:        raw.TermMonths,
			DepositPeriodDays: raw.DepositPeriodDays,
			CoolingOffDays:    raw.CoolingOffDays,
			GraceDays:         raw.GraceDays,
			SingleDeposit:     raw.SingleDeposit,
		},
	}

	if len(cfg.AcceptedDenominations) == 0 {
		cfg.AcceptedDenominations = []string{cfg.Denomination}
	}
	if cfg.Accrual.DaysInYear == 0 {
		cfg.Accrual.DaysInYear = 365
	}
	if cfg.Accrual.Precision == 0 {
		cfg.Accrual.Precision = 5
	}
	if cfg.Accrual.InternalAccountID == "" {
		return nil, NewConfigurationError("product %q: internal account id is required", raw.ID)
	}
	if cfg.Application.Precision == 0 {
		cfg.Application.Precision = FeePrecision
	}

	if raw.FeeFreePercentage != "" {
		pct, ok := parseNonNegative(raw.FeeFreePercentage)
		if !ok {
			return nil, NewConfigurationError("product %q: bad fee free percentage %q", raw.ID, raw.FeeFreePercentage)
		}
		cfg.FeeFreePercentage = pct
	}

	return cfg, nil
}

func parseLimits(productID string, raw RawLimitsConfig) (LimitsConfig, error) {
	limits := LimitsConfig{}

	scalars := []struct {
		name  string
		value string
		dst   **decimal.Decimal
	}{
		{"maximum_balance", raw.MaximumBalance, &limits.MaximumBalance},
		{"minimum_single_deposit", raw.MinimumSingleDeposit, &limits.MinimumSingleDeposit},
		{"maximum_single_deposit", raw.MaximumSingleDeposit, &limits.MaximumSingleDeposit},
		{"minimum_initial_deposit", raw.MinimumInitialDeposit, &limits.MinimumInitialDeposit},
		{"maximum_single_withdrawal", raw.MaximumSingleWithdrawal, &limits.MaximumSingleWithdrawal},
		{"maximum_daily_deposit", raw.MaximumDailyDeposit, &limits.MaximumDailyDeposit},
		{"maximum_daily_withdrawal", raw.MaximumDailyWithdrawal, &limits.MaximumDailyWithdrawal},
	}

	for _, s := range scalars {
		if s.value == "" {
			continue
		}

		d, err := decimal.NewFromString(s.value)
		if err != nil {
			return limits, NewConfigurationError("product %q: bad %s %q", productID, s.name, s.value)
		}

		v := d
		*s.dst = &v
	}

	var err error
	if limits.MinimumBalanceByTier, err = parseDecimalMap(productID, "minimum_balance_by_tier", raw.MinimumBalanceByTier); err != nil {
		return limits, err
	}
	if limits.MaximumWithdrawalByType, err = parseDecimalMap(productID, "maximum_withdrawal_by_type", raw.MaximumWithdrawalByType); err != nil {
		return limits, err
	}
	if limits.MaximumDailyWithdrawalByType, err = parseDecimalMap(productID, "maximum_daily_withdrawal_by_type", raw.MaximumDailyWithdrawalByType); err != nil {
		return limits, err
	}

	return limits, nil
}

func parseDecimalMap(productID, name string, raw map[string]string) (map[string]decimal.Decimal, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make(map[string]decimal.Decimal, len(raw))
	for k, v := range raw {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, NewConfigurationError("product %q: bad %s entry %q=%q", productID, name, k, v)
		}

		out[k] = d
	}

	return out, nil
}
