package domain

import "github.com/shopspring/decimal"

// FeePrecision is the decimal precision of fee and application amounts.
const FeePrecision int32 = 2

// DailyAccrual computes one day's accrued interest on an end-of-day
// balance: balance * rate / daysInYear, rounded to precision. Non-positive
// balances accrue nothing. Pure function of its inputs, safe to replay.
func DailyAccrual(balance, annualRate decimal.Decimal, daysInYear int, precision int32) decimal.Decimal {
	if !balance.IsPositive() || daysInYear <= 0 {
		return decimal.Zero
	}

	return balance.Mul(annualRate).Div(decimal.NewFromInt(int64(daysInYear))).Round(precision)
}

// ProRataForfeiture computes the accrued interest forfeited by a
// withdrawal: withdrawal / balanceBefore * accrued, rounded to precision.
// Exact only for flat (non-compounding) daily interest.
func ProRataForfeiture(withdrawal, balanceBefore, accrued decimal.Decimal, precision int32) decimal.Decimal {
	if !withdrawal.IsPositive() || !balanceBefore.IsPositive() || !accrued.IsPositive() {
		return decimal.Zero
	}

	forfeited := withdrawal.Div(balanceBefore).Mul(accrued).Round(precision)
	if forfeited.GreaterThan(accrued) {
		return accrued
	}

	return forfeited
}

// RoundFee rounds a monetary fee amount half-even at the fee precision.
func RoundFee(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(FeePrecision)
}
