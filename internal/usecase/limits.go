package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
)

// DenominationValidator rejects postings outside the accepted set.
type DenominationValidator struct {
	Accepted []string
}

func (v *DenominationValidator) Name() string { return "denomination" }

func (v *DenominationValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	for _, p := range ev.Batch.Postings {
		accepted := false
		for _, d := range v.Accepted {
			if p.Denomination == d {
				accepted = true
				break
			}
		}

		if !accepted {
			return domain.RejectWrongDenomination(p.Denomination, v.Accepted), nil
		}
	}

	return nil, nil
}

// SingleMovementValidator rejects batches carrying more than one movement on
// the customer's available balance. The engine prices and gates exactly one
// customer movement per instruction.
type SingleMovementValidator struct{}

func (v *SingleMovementValidator) Name() string { return "single_movement" }

func (v *SingleMovementValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	movements := ev.Batch.CustomerMovements(ev.Account.ID, ev.Config.Denomination)
	if len(movements) > 1 {
		return domain.RejectCustom("expected a single hard settlement, got %d", len(movements)), nil
	}

	return nil, nil
}

// MaximumBalanceValidator rejects deposits that would push the balance over
// the configured maximum.
type MaximumBalanceValidator struct {
	Limit *decimal.Decimal
}

func (v *MaximumBalanceValidator) Name() string { return "maximum_balance" }

func (v *MaximumBalanceValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if v.Limit == nil || !ev.IsDeposit() {
		return nil, nil
	}

	if ev.ProjectedBalance().GreaterThan(*v.Limit) {
		return domain.RejectPolicy(
			"posting of %s %s would exceed the maximum balance limit of %s %s",
			ev.Net(), ev.Config.Denomination, v.Limit, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}

// MinimumSingleDepositValidator rejects deposits below the configured floor.
type MinimumSingleDepositValidator struct {
	Minimum *decimal.Decimal
}

func (v *MinimumSingleDepositValidator) Name() string { return "minimum_single_deposit" }

func (v *MinimumSingleDepositValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if v.Minimum == nil || !ev.IsDeposit() {
		return nil, nil
	}

	if ev.Net().LessThan(*v.Minimum) {
		return domain.RejectPolicy(
			"deposit of %s %s is less than the minimum deposit amount of %s %s",
			ev.Net(), ev.Config.Denomination, v.Minimum, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}

// MaximumSingleDepositValidator rejects deposits above the configured cap.
type MaximumSingleDepositValidator struct {
	Maximum *decimal.Decimal
}

func (v *MaximumSingleDepositValidator) Name() string { return "maximum_single_deposit" }

func (v *MaximumSingleDepositValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if v.Maximum == nil || !ev.IsDeposit() {
		return nil, nil
	}

	if ev.Net().GreaterThan(*v.Maximum) {
		return domain.RejectPolicy(
			"deposit of %s %s is more than the maximum deposit amount of %s %s",
			ev.Net(), ev.Config.Denomination, v.Maximum, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}

// MinimumInitialDepositValidator applies only to the opening deposit: the
// first credit while the balance is still zero.
type MinimumInitialDepositValidator struct {
	Minimum *decimal.Decimal
}

func (v *MinimumInitialDepositValidator) Name() string { return "minimum_initial_deposit" }

func (v *MinimumInitialDepositValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if v.Minimum == nil || !ev.IsDeposit() || !ev.AvailableBalance().IsZero() {
		return nil, nil
	}

	if ev.Net().LessThan(*v.Minimum) {
		return domain.RejectPolicy(
			"initial deposit of %s %s is less than the minimum initial deposit of %s %s",
			ev.Net(), ev.Config.Denomination, v.Minimum, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}

// MaximumSingleWithdrawalValidator rejects withdrawals above the configured cap.
type MaximumSingleWithdrawalValidator struct {
	Maximum *decimal.Decimal
}

func (v *MaximumSingleWithdrawalValidator) Name() string { return "maximum_single_withdrawal" }

func (v *MaximumSingleWithdrawalValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if v.Maximum == nil || !ev.IsWithdrawal() {
		return nil, nil
	}

	if ev.WithdrawalAmount().GreaterThan(*v.Maximum) {
		return domain.RejectPolicy(
			"withdrawal of %s %s is more than the maximum withdrawal amount of %s %s",
			ev.WithdrawalAmount(), ev.Config.Denomination, v.Maximum, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}

// MinimumBalanceByTierValidator rejects withdrawals that would take the
// balance under the account tier's configured floor.
type MinimumBalanceByTierValidator struct {
	Floors map[string]decimal.Decimal
}

func (v *MinimumBalanceByTierValidator) Name() string { return "minimum_balance_by_tier" }

func (v *MinimumBalanceByTierValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	floor, ok := v.Floors[ev.Tier]
	if !ok || !ev.IsWithdrawal() {
		return nil, nil
	}

	if ev.ProjectedBalance().LessThan(floor) {
		return domain.RejectPolicy(
			"withdrawal of %s %s would breach the minimum balance of %s %s for tier %s",
			ev.WithdrawalAmount(), ev.Config.Denomination, floor, ev.Config.Denomination, ev.Tier,
		), nil
	}

	return nil, nil
}

// MaximumWithdrawalByTypeValidator caps single withdrawals per payment type.
// A payment type absent from the configuration is uncapped here.
type MaximumWithdrawalByTypeValidator struct {
	Caps map[string]decimal.Decimal
}

func (v *MaximumWithdrawalByTypeValidator) Name() string { return "maximum_withdrawal_by_type" }

func (v *MaximumWithdrawalByTypeValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if !ev.IsWithdrawal() {
		return nil, nil
	}

	limit, ok := v.Caps[ev.Batch.PaymentType()]
	if !ok {
		return nil, nil
	}

	if ev.WithdrawalAmount().GreaterThan(limit) {
		return domain.RejectPolicy(
			"withdrawal of %s %s is more than the maximum %s withdrawal of %s %s",
			ev.WithdrawalAmount(), ev.Config.Denomination, ev.Batch.PaymentType(), limit, ev.Config.Denomination,
		), nil
	}

	return nil, nil
}
