package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
)

// WithdrawalTracker maintains the early-withdrawals tracking balance and
// computes the partial-interest forfeiture triggered by a withdrawal. Like
// the validators it is pure: callers commit the returned postings.
type WithdrawalTracker struct {
	cfg *domain.ProductConfig
}

// NewWithdrawalTracker builds a tracker for one product.
func NewWithdrawalTracker(cfg *domain.ProductConfig) *WithdrawalTracker {
	return &WithdrawalTracker{cfg: cfg}
}

// TrackerResult carries the side effects of one accepted withdrawal.
type TrackerResult struct {
	// TrackerIncrement is the amount added to the early-withdrawals
	// tracker, zero inside a grace or cooling-off window.
	TrackerIncrement decimal.Decimal
	// Forfeited is the accrued interest lost to the withdrawal.
	Forfeited decimal.Decimal
	// FullyWithdrawn is set once, on the batch that takes the available
	// balance from positive to zero outside any grace, cooling-off or
	// deposit window.
	FullyWithdrawn bool
	Postings       []domain.Posting
}

// OnWithdrawal computes tracker and forfeiture postings for an accepted
// batch. Deposits produce an empty result. The tracker increment is
// skipped inside grace and cooling-off windows; forfeiture is not, it
// applies to every withdrawal that leaves unapplied interest behind.
func (t *WithdrawalTracker) OnWithdrawal(ev *Evaluation) TrackerResult {
	result := TrackerResult{
		TrackerIncrement: decimal.Zero,
		Forfeited:        decimal.Zero,
	}
	if !ev.IsWithdrawal() {
		return result
	}

	denom := t.cfg.Denomination
	withdrawal := ev.WithdrawalAmount()
	balanceBefore := ev.AvailableBalance()

	if !ev.InFeeExemptWindow() {
		result.TrackerIncrement = withdrawal
		result.Postings = append(result.Postings,
			domain.Posting{
				AccountID:    ev.Account.ID,
				Address:      domain.AddressEarlyWithdrawalsTracker,
				Denomination: denom,
				Phase:        domain.PhaseCommitted,
				Amount:       withdrawal,
			},
			domain.Posting{
				AccountID:    ev.Account.ID,
				Address:      domain.AddressInternalContra,
				Denomination: denom,
				Phase:        domain.PhaseCommitted,
				Amount:       withdrawal.Neg(),
			},
		)
	}

	accrued := ev.Balances.Committed(t.cfg.Accrual.AccrualAddress(), denom)
	forfeited := domain.ProRataForfeiture(withdrawal, balanceBefore, accrued, t.cfg.Accrual.Precision)
	if forfeited.IsPositive() {
		result.Forfeited = forfeited
		result.Postings = append(result.Postings,
			domain.Posting{
				AccountID:    ev.Account.ID,
				Address:      t.cfg.Accrual.AccrualAddress(),
				Denomination: denom,
				Phase:        domain.PhaseCommitted,
				Amount:       forfeited.Neg(),
			},
			domain.Posting{
				AccountID:    t.cfg.Accrual.InternalAccountID,
				Address:      domain.AddressDefault,
				Denomination: denom,
				Phase:        domain.PhaseCommitted,
				Amount:       forfeited,
			},
		)
	}

	if balanceBefore.IsPositive() && ev.ProjectedBalance().IsZero() &&
		!ev.InFeeExemptWindow() && !ev.InDepositPeriod() {
		result.FullyWithdrawn = true
	}

	return result
}

// ResetPostings zeroes the tracker balances at account closure. Only
// nonzero trackers produce postings.
func (t *WithdrawalTracker) ResetPostings(accountID string, balances domain.Balances) []domain.Posting {
	denom := t.cfg.Denomination
	var postings []domain.Posting

	reset := func(addr domain.Address, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}

		postings = append(postings,
			domain.Posting{
				AccountID:    accountID,
				Address:      addr,
				Denomination: denom,
				Phase:        domain.PhaseCommitted,
				Amount:       amount.Neg(),
			},
			domain.Posting{
				AccountID:    accountID,
				Address:      domain.AddressInternalContra,
				Denomination: denom,
				Phase:        domain.PhaseCommitted,
				Amount:       amount,
			},
		)
	}

	reset(domain.AddressEarlyWithdrawalsTracker, balances.EarlyWithdrawals(denom))
	reset(domain.AddressAppliedInterestTracker, balances.AppliedInterest(denom))

	return postings
}
