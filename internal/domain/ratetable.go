package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RateBand is one row of a tier's rate curve: the per-annum rate applying
// from Minimum upwards.
type RateBand struct {
	Minimum decimal.Decimal
	Rate    decimal.Decimal
}

// RateCurve is a tier's bands sorted ascending by minimum balance.
type RateCurve []RateBand

// RateTable maps tier names to rate curves. Tier keys match case-sensitively.
// Build one with ParseRateTable; a zero-value table resolves nothing.
type RateTable struct {
	curves map[string]RateCurve
}

// RawRateBand is the unvalidated wire form of a rate band.
type RawRateBand struct {
	Minimum string `json:"minimum"`
	Rate    string `json:"rate"`
}

// ParseRateTable validates raw tier curves once, up front. A tier with no
// bands, or a band with an unparseable number, is a configuration error.
func ParseRateTable(raw map[string][]RawRateBand) (*RateTable, error) {
	curves := make(map[string]RateCurve, len(raw))

	for tier, bands := range raw {
		if len(bands) == 0 {
			return nil, NewConfigurationError("tier %q has no rate bands", tier)
		}

		curve := make(RateCurve, 0, len(bands))
		for _, b := range bands {
			min, err := decimal.NewFromString(b.Minimum)
			if err != nil {
				return nil, NewConfigurationError("tier %q: bad minimum %q", tier, b.Minimum)
			}

			rate, err := decimal.NewFromString(b.Rate)
			if err != nil {
				return nil, NewConfigurationError("tier %q: bad rate %q", tier, b.Rate)
			}

			curve = append(curve, RateBand{Minimum: min, Rate: rate})
		}

		sort.Slice(curve, func(i, j int) bool {
			return curve[i].Minimum.LessThan(curve[j].Minimum)
		})

		for i := 1; i < len(curve); i++ {
			if curve[i].Minimum.Equal(curve[i-1].Minimum) {
				return nil, NewConfigurationError("tier %q: duplicate minimum %s", tier, curve[i].Minimum)
			}
		}

		curves[tier] = curve
	}

	return &RateTable{curves: curves}, nil
}

// Resolve returns the rate of the greatest band minimum less than or equal
// to balance. A balance below the lowest band resolves to zero. An unknown
// or empty tier is a configuration error.
func (t *RateTable) Resolve(tier string, balance decimal.Decimal) (decimal.Decimal, error) {
	curve, ok := t.curves[tier]
	if !ok || len(curve) == 0 {
		return decimal.Zero, NewConfigurationError("no rate bands for tier %q", tier)
	}

	rate := decimal.Zero
	for _, band := range curve {
		if band.Minimum.GreaterThan(balance) {
			break
		}
		rate = band.Rate
	}

	return rate, nil
}

// TimedRateTable bounds a rate table to a validity window. A zero From is
// open-ended in the past, a zero To open-ended in the future.
type TimedRateTable struct {
	From  time.Time
	To    time.Time
	Table *RateTable
}

// RateSchedule is an ordered list of date-bounded rate tables.
type RateSchedule []TimedRateTable

// TableAt returns the first table whose validity window covers t.
func (s RateSchedule) TableAt(at time.Time) (*RateTable, error) {
	for _, tt := range s {
		if !tt.From.IsZero() && at.Before(tt.From) {
			continue
		}
		if !tt.To.IsZero() && !at.Before(tt.To) {
			continue
		}

		return tt.Table, nil
	}

	return nil, NewConfigurationError("no rate table valid at %s", at.Format(time.RFC3339))
}
