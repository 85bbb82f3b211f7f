package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
)

// Evaluation is the read-only context one batch is validated against. It is
// assembled once, before the chain runs; validators are pure functions of it.
type Evaluation struct {
	Account     *domain.Account
	Config      *domain.ProductConfig
	Batch       *domain.PostingBatch
	Balances    domain.Balances // as of the batch's value date
	SameDay     []*domain.PostingBatch
	MonthToDate []*domain.PostingBatch
	Tier        string
	Calendar    *domain.Calendar
	Now         time.Time
}

// Net returns the batch's signed net effect on the customer's available
// balance in the product denomination.
func (ev *Evaluation) Net() decimal.Decimal {
	return ev.Batch.NetMovement(ev.Account.ID, ev.Config.Denomination)
}

// IsDeposit reports whether the batch nets to a credit.
func (ev *Evaluation) IsDeposit() bool {
	return ev.Net().IsPositive()
}

// IsWithdrawal reports whether the batch nets to a debit.
func (ev *Evaluation) IsWithdrawal() bool {
	return ev.Net().IsNegative()
}

// WithdrawalAmount returns the positive magnitude of a withdrawal, zero for
// deposits.
func (ev *Evaluation) WithdrawalAmount() decimal.Decimal {
	net := ev.Net()
	if net.IsNegative() {
		return net.Neg()
	}

	return decimal.Zero
}

// AvailableBalance is the customer's balance before the batch.
func (ev *Evaluation) AvailableBalance() decimal.Decimal {
	return ev.Balances.Available(ev.Config.Denomination)
}

// ProjectedBalance is the customer's balance after the batch would commit.
func (ev *Evaluation) ProjectedBalance() decimal.Decimal {
	return ev.AvailableBalance().Add(ev.Net())
}

// InFeeExemptWindow reports whether the batch falls inside the product's
// cooling-off or grace window, during which withdrawals are fee-exempt and
// the early-withdrawals tracker is left alone.
func (ev *Evaluation) InFeeExemptWindow() bool {
	return ev.Account.InWindow(ev.Now, ev.Config.Term.CoolingOffDays) ||
		ev.Account.InWindow(ev.Now, ev.Config.Term.GraceDays)
}

// InDepositPeriod reports whether the batch falls inside the product's
// deposit period after the term start.
func (ev *Evaluation) InDepositPeriod() bool {
	return ev.Account.InWindow(ev.Now, ev.Config.Term.DepositPeriodDays)
}

// Validator vetoes a batch or lets it pass. Implementations must be
// side-effect-free: same Evaluation, same answer, nothing mutated. A
// non-nil error is an operator problem (broken configuration), never a
// user-facing veto.
type Validator interface {
	Name() string
	Validate(ev *Evaluation) (*domain.Rejection, error)
}

// Chain evaluates validators in a fixed order; the first veto wins, so the
// surfaced rejection is deterministic for a given batch.
type Chain struct {
	validators []Validator
}

// NewChain assembles the documented validation order for a product.
func NewChain(cfg *domain.ProductConfig) *Chain {
	validators := []Validator{
		&DenominationValidator{Accepted: cfg.AcceptedDenominations},
		&SingleMovementValidator{},
		&MaximumBalanceValidator{Limit: cfg.Limits.MaximumBalance},
		&MinimumSingleDepositValidator{Minimum: cfg.Limits.MinimumSingleDeposit},
		&MaximumSingleDepositValidator{Maximum: cfg.Limits.MaximumSingleDeposit},
		&MinimumInitialDepositValidator{Minimum: cfg.Limits.MinimumInitialDeposit},
		&MaximumSingleWithdrawalValidator{Maximum: cfg.Limits.MaximumSingleWithdrawal},
		&MinimumBalanceByTierValidator{Floors: cfg.Limits.MinimumBalanceByTier},
		&MaximumWithdrawalByTypeValidator{Caps: cfg.Limits.MaximumWithdrawalByType},
		&MaximumDailyDepositValidator{Limit: cfg.Limits.MaximumDailyDeposit},
		&MaximumDailyWithdrawalValidator{Limit: cfg.Limits.MaximumDailyWithdrawal},
		&MaximumDailyWithdrawalByTypeValidator{Caps: cfg.Limits.MaximumDailyWithdrawalByType},
	}

	if cfg.TimeDeposit {
		validators = append(validators, &DepositWindowValidator{Term: cfg.Term})
	}

	validators = append(validators, &FeeSufficiencyValidator{Fees: NewFeeCalculator(cfg)})

	return &Chain{validators: validators}
}

// Validate runs the chain. A force-override batch skips every validator.
func (c *Chain) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if ev.Batch.ForceOverride() {
		return nil, nil
	}

	for _, v := range c.validators {
		rejection, err := v.Validate(ev)
		if err != nil {
			return nil, err
		}
		if rejection != nil {
			return rejection, nil
		}
	}

	return nil, nil
}
