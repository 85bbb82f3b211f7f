package usecase

import "github.com/iho/depositcore/internal/domain"

// DepositWindowValidator gates time-deposit funding. Deposits are only
// accepted within the deposit period after the term start (or freely inside
// a cooling-off or grace window), and a single-deposit product takes exactly
// one funding deposit.
type DepositWindowValidator struct {
	Term domain.TermConfig
}

func (v *DepositWindowValidator) Name() string { return "deposit_window" }

func (v *DepositWindowValidator) Validate(ev *Evaluation) (*domain.Rejection, error) {
	if !ev.IsDeposit() {
		return nil, nil
	}

	// Cooling-off and grace windows allow free adjustment of the deposit.
	if ev.InFeeExemptWindow() {
		return nil, nil
	}

	if v.Term.DepositPeriodDays > 0 && !ev.Account.InWindow(ev.Now, v.Term.DepositPeriodDays) {
		return domain.RejectPolicy(
			"deposit of %s %s is outside the %d day deposit period",
			ev.Net(), ev.Config.Denomination, v.Term.DepositPeriodDays,
		), nil
	}

	if v.Term.SingleDeposit && ev.AvailableBalance().IsPositive() {
		return domain.RejectPolicy(
			"the product only allows a single deposit and the account is already funded",
		), nil
	}

	return nil, nil
}
