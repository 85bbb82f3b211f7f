package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
)

// Daily aggregate validators sum committed same-UTC-day movements plus the
// current batch. Deposits and withdrawals aggregate independently: a
// withdrawal never offsets an already-counted deposit limit.

// dailyTotals returns the day's committed (deposits, withdrawals) for the
// account, withdrawals as a positive magnitude. An optional payment type
// restricts the aggregation.
func dailyTotals(ev *Evaluation, paymentType string) (decimal.Decimal, decimal.Decimal) {
	deposits := decimal.Zero
	withdrawals := decimal.Zero

	for _, batch := range ev.SameDay {
		if paymentType != "" && batch.PaymentType() != paymentType {
			continue
		}

		net := batch.NetMovement(ev.Account.ID, ev.Config.Denomination)
		switch {
		case net.IsPositive():
			deposits = deposits.Add(net)
		case net.IsNegative():
			withdrawals = withdrawals.Add(net.Neg())
		}
	}

	return deposits, withdrawals
}

// MaximumDailyDepositValidator caps the calendar day's deposit total.
type MaximumDailyDepositValidator struct {
	Limit *decimal.Decimal
}

func (v *MaximumDailyDepositValidator) Name() string { return "maximum_daily_deposit" }

func (v *MaximumDailyDepositValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if v.Limit == nil || !ev.IsDeposit() {
		return nil, nil
	}

	deposits, _ := dailyTotals(ev, "")
	total := deposits.Add(ev.Net())

	if total.GreaterThan(*v.Limit) {
		return domain.RejectPolicy(
			"deposit of %s %s would exceed the daily deposit limit of %s %s",
			ev.Net(), ev.Config.Denomination, v.Limit, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}

// MaximumDailyWithdrawalValidator caps the calendar day's withdrawal total.
type MaximumDailyWithdrawalValidator struct {
	Limit *decimal.Decimal
}

func (v *MaximumDailyWithdrawalValidator) Name() string { return "maximum_daily_withdrawal" }

func (v *MaximumDailyWithdrawalValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if v.Limit == nil || !ev.IsWithdrawal() {
		return nil, nil
	}

	_, withdrawals := dailyTotals(ev, "")
	total := withdrawals.Add(ev.WithdrawalAmount())

	if total.GreaterThan(*v.Limit) {
		return domain.RejectPolicy(
			"withdrawal of %s %s would exceed the daily withdrawal limit of %s %s",
			ev.WithdrawalAmount(), ev.Config.Denomination, v.Limit, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}

// MaximumDailyWithdrawalByTypeValidator caps the day's withdrawal total per
// payment type.
type MaximumDailyWithdrawalByTypeValidator struct {
	Caps map[string]decimal.Decimal
}

func (v *MaximumDailyWithdrawalByTypeValidator) Name() string {
	return "maximum_daily_withdrawal_by_type"
}

func (v *MaximumDailyWithdrawalByTypeValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if !ev.IsWithdrawal() {
		return nil, nil
	}

	paymentType := ev.Batch.PaymentType()
	limit, ok := v.Caps[paymentType]
	if !ok {
		return nil, nil
	}

	_, withdrawals := dailyTotals(ev, paymentType)
	total := withdrawals.Add(ev.WithdrawalAmount())

	if total.GreaterThan(limit) {
		return domain.RejectPolicy(
			"withdrawal of %s %s would exceed the daily %s withdrawal limit of %s %s",
			ev.WithdrawalAmount(), ev.Config.Denomination, paymentType, limit, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}
