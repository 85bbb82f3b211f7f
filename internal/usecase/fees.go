package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
)

// Fee type labels carried on charge records and notification payloads.
const (
	FeeTypeFlat            = "flat"
	FeeTypeThreshold       = "threshold"
	FeeTypeMonthlyLimit    = "monthly_limit"
	FeeTypeEarlyWithdrawal = "early_withdrawal"
)

// BalanceAdjustment corrects the customer deposit amount used for fee-free
// limit calculations. The returned delta is added to the raw balance sum.
type BalanceAdjustment func(balances domain.Balances, denomination string) decimal.Decimal

// SubtractAppliedInterest removes lifetime applied interest from the
// customer deposit amount, so rolled-over interest does not inflate the
// principal the fee-free allowance is computed from.
func SubtractAppliedInterest(balances domain.Balances, denomination string) decimal.Decimal {
	return balances.AppliedInterest(denomination).Neg()
}

// FeeCalculator prices withdrawals against a product's fee schedule. It is
// stateless: every answer is a pure function of the evaluation context.
type FeeCalculator struct {
	cfg         *domain.ProductConfig
	adjustments []BalanceAdjustment
}

// NewFeeCalculator builds a calculator for one product. Without explicit
// adjustments the applied-interest correction is installed.
func NewFeeCalculator(cfg *domain.ProductConfig, adjustments ...BalanceAdjustment) *FeeCalculator {
	if len(adjustments) == 0 {
		adjustments = []BalanceAdjustment{SubtractAppliedInterest}
	}

	return &FeeCalculator{cfg: cfg, adjustments: adjustments}
}

// CustomerDepositAmount is the principal the fee-free allowance is computed
// from: available balance plus the early-withdrawals tracker, corrected by
// the configured balance adjustments.
func (c *FeeCalculator) CustomerDepositAmount(balances domain.Balances) decimal.Decimal {
	denom := c.cfg.Denomination
	amount := balances.Available(denom).Add(balances.EarlyWithdrawals(denom))

	for _, adjust := range c.adjustments {
		amount = amount.Add(adjust(balances, denom))
	}

	return amount
}

// FeeFreeLimit is the cumulative withdrawal amount the customer may take
// without incurring early-withdrawal fees.
func (c *FeeCalculator) FeeFreeLimit(balances domain.Balances) decimal.Decimal {
	return c.cfg.FeeFreePercentage.Mul(c.CustomerDepositAmount(balances))
}

// ChargeableAmount is the slice of a withdrawal that falls outside the
// remaining fee-free allowance, clamped to [0, withdrawal].
func (c *FeeCalculator) ChargeableAmount(balances domain.Balances, withdrawal decimal.Decimal) decimal.Decimal {
	if !withdrawal.IsPositive() {
		return decimal.Zero
	}

	used := balances.EarlyWithdrawals(c.cfg.Denomination)
	over := used.Add(withdrawal).Sub(c.FeeFreeLimit(balances))

	switch {
	case !over.IsPositive():
		return decimal.Zero
	case over.GreaterThan(withdrawal):
		return withdrawal
	default:
		return over
	}
}

// EarlyWithdrawalFee prices the chargeable slice of a withdrawal: the flat
// component plus either the percentage of the chargeable amount or, when
// interest days are configured, that many days of interest on the
// pre-withdrawal balance. A fully fee-free withdrawal costs nothing.
func (c *FeeCalculator) EarlyWithdrawalFee(ev *Evaluation) (decimal.Decimal, error) {
	fee := c.cfg.Fees.EarlyWithdrawal
	chargeable := c.ChargeableAmount(ev.Balances, ev.WithdrawalAmount())
	if !chargeable.IsPositive() {
		return decimal.Zero, nil
	}

	total := fee.Flat

	if fee.InterestDays > 0 {
		daily, err := c.dailyInterest(ev)
		if err != nil {
			return decimal.Zero, err
		}

		total = total.Add(domain.RoundFee(daily.Mul(decimal.NewFromInt(int64(fee.InterestDays)))))
	} else if fee.Percentage.IsPositive() {
		total = total.Add(domain.RoundFee(fee.Percentage.Mul(chargeable)))
	}

	return total, nil
}

func (c *FeeCalculator) dailyInterest(ev *Evaluation) (decimal.Decimal, error) {
	table, err := c.cfg.Rates.TableAt(ev.Now)
	if err != nil {
		return decimal.Zero, err
	}

	balance := ev.AvailableBalance()
	rate, err := table.Resolve(ev.Tier, balance)
	if err != nil {
		return decimal.Zero, err
	}

	return domain.DailyAccrual(balance, rate, c.cfg.Accrual.DaysInYear, c.cfg.Accrual.Precision), nil
}

// FeeSufficiencyValidator rejects a withdrawal whose prospective fees
// exceed its own amount. Deposits and fee-exempt-window withdrawals pass
// unconditionally.
type FeeSufficiencyValidator struct {
	Fees *FeeCalculator
}

func (v *FeeSufficiencyValidator) Name() string { return "fee_sufficiency" }

func (v *FeeSufficiencyValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if !ev.IsWithdrawal() || ev.InFeeExemptWindow() {
		return nil, nil
	}

	fee, err := v.Fees.EarlyWithdrawalFee(ev)
	if err != nil {
		return nil, err
	}

	withdrawal := ev.WithdrawalAmount()
	if fee.GreaterThan(withdrawal) {
		return domain.RejectInsufficientFunds(fee, withdrawal, ev.Config.Denomination), nil
	}

	return nil, nil
}

// Charge is one priced fee line of an accepted batch.
type Charge struct {
	FeeType     string
	PaymentType string
	Amount      decimal.Decimal
}

// FeeAssessment is the outcome of the post-acceptance fee pass: the
// individual charges plus the balancing postings that settle them against
// the product's internal account.
type FeeAssessment struct {
	Charges  []Charge
	Postings []domain.Posting
}

// Total sums all charges.
func (a *FeeAssessment) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range a.Charges {
		total = total.Add(c.Amount)
	}

	return total
}

// AssessFees prices an already-accepted withdrawal batch: flat fee for the
// payment type, threshold fee once the batch amount crosses its threshold,
// monthly-limit fee for occurrences beyond the free allowance, and the
// early-withdrawal fee on the chargeable slice. Deposits incur no fees, and
// grace or cooling-off windows suppress the early-withdrawal fee only.
func (c *FeeCalculator) AssessFees(ev *Evaluation) (*FeeAssessment, error) {
	assessment := &FeeAssessment{}
	if !ev.IsWithdrawal() {
		return assessment, nil
	}

	paymentType := ev.Batch.PaymentType()
	amount := ev.WithdrawalAmount()

	if flat, ok := c.cfg.Fees.Flat[paymentType]; ok {
		c.charge(ev, assessment, Charge{FeeTypeFlat, paymentType, flat.Amount})
	}

	if threshold, ok := c.cfg.Fees.Threshold[paymentType]; ok {
		if amount.GreaterThan(threshold.Threshold) {
			c.charge(ev, assessment, Charge{FeeTypeThreshold, paymentType, threshold.Amount})
		}
	}

	if monthly, ok := c.cfg.Fees.MonthlyLimit[paymentType]; ok {
		if c.monthOccurrence(ev, paymentType) > monthly.Limit {
			c.charge(ev, assessment, Charge{FeeTypeMonthlyLimit, paymentType, monthly.Amount})
		}
	}

	if !ev.InFeeExemptWindow() {
		fee, err := c.EarlyWithdrawalFee(ev)
		if err != nil {
			return nil, err
		}

		if fee.IsPositive() {
			c.charge(ev, assessment, Charge{FeeTypeEarlyWithdrawal, paymentType, fee})
		}
	}

	return assessment, nil
}

// monthOccurrence counts which same-payment-type withdrawal of the current
// UTC calendar month this batch is, replaying the committed month-to-date
// history. The current batch itself counts, so the result is 1-based.
func (c *FeeCalculator) monthOccurrence(ev *Evaluation, paymentType string) int {
	occurrence := 1
	for _, batch := range ev.MonthToDate {
		if batch.PaymentType() != paymentType {
			continue
		}

		if batch.NetMovement(ev.Account.ID, c.cfg.Denomination).IsNegative() {
			occurrence++
		}
	}

	return occurrence
}

func (c *FeeCalculator) charge(ev *Evaluation, assessment *FeeAssessment, ch Charge) {
	if !ch.Amount.IsPositive() {
		return
	}

	assessment.Charges = append(assessment.Charges, ch)
	assessment.Postings = append(assessment.Postings,
		domain.Posting{
			AccountID:    ev.Account.ID,
			Address:      domain.AddressDefault,
			Denomination: c.cfg.Denomination,
			Phase:        domain.PhaseCommitted,
			Amount:       ch.Amount.Neg(),
		},
		domain.Posting{
			AccountID:    c.cfg.Accrual.InternalAccountID,
			Address:      domain.AddressDefault,
			Denomination: c.cfg.Denomination,
			Phase:        domain.PhaseCommitted,
			Amount:       ch.Amount,
		},
	)
}
