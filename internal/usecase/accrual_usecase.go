package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
)

// AccrualUseCase runs the daily interest accrual against end-of-day
// balances. Runs are replayable: the same account and day always produce
// the same amounts and the same client transaction ID, so a rerun is a
// no-op at the persistence layer.
type AccrualUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	productRepo ProductRepository
	postingRepo PostingRepository
	idGen       IDGenerator
}

// NewAccrualUseCase creates a new AccrualUseCase.
func NewAccrualUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	postingRepo PostingRepository,
	idGen IDGenerator,
) *AccrualUseCase {
	return &AccrualUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		productRepo: productRepo,
		postingRepo: postingRepo,
		idGen:       idGen,
	}
}

// AccrualResult describes one day's accrual for one account.
type AccrualResult struct {
	AccountID string
	Day       time.Time
	Tier      string
	Rate      decimal.Decimal
	Balance   decimal.Decimal
	Accrued   decimal.Decimal
	Batch     *domain.PostingBatch
}

// RunDailyAccrual accrues one day of interest for an account. The balance
// snapshot is the end of the previous UTC day, so intraday movements on
// asOf's own day never change what that day earns.
func (uc *AccrualUseCase) RunDailyAccrual(ctx context.Context, accountID string, asOf time.Time) (*AccrualResult, error) {
	asOf = asOf.UTC()
	day := domain.DateOf(asOf)

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsClosed(asOf) {
		return nil, domain.ErrAccountClosed
	}

	cfg, err := uc.productRepo.GetByID(ctx, account.ProductID)
	if err != nil {
		return nil, err
	}

	// End of the previous day: everything value-dated strictly before day.
	balances, err := uc.postingRepo.BalancesBefore(ctx, accountID, day)
	if err != nil {
		return nil, err
	}
	balance := balances.Available(cfg.Denomination)

	table, err := cfg.Rates.TableAt(asOf)
	if err != nil {
		return nil, err
	}

	tier := cfg.Tiers.Resolve(account.Flags, asOf)
	rate, err := table.Resolve(tier, balance)
	if err != nil {
		return nil, err
	}

	result := &AccrualResult{
		AccountID: accountID,
		Day:       day,
		Tier:      tier,
		Rate:      rate,
		Balance:   balance,
		Accrued:   domain.DailyAccrual(balance, rate, cfg.Accrual.DaysInYear, cfg.Accrual.Precision),
	}
	if result.Accrued.IsZero() {
		return result, nil
	}

	batch := &domain.PostingBatch{
		ID:                  uc.idGen.Generate(),
		ClientTransactionID: fmt.Sprintf("accrual:%s:%s", accountID, day.Format("2006-01-02")),
		ValueDate:           day,
		InsertedAt:          asOf,
		Postings: []domain.Posting{
			{
				AccountID:    accountID,
				Address:      cfg.Accrual.AccrualAddress(),
				Denomination: cfg.Denomination,
				Phase:        domain.PhaseCommitted,
				Amount:       result.Accrued,
			},
			{
				AccountID:    cfg.Accrual.InternalAccountID,
				Address:      domain.AddressDefault,
				Denomination: cfg.Denomination,
				Phase:        domain.PhaseCommitted,
				Amount:       result.Accrued.Neg(),
			},
		},
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.postingRepo.AppendBatch(ctx, tx, batch); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	result.Batch = batch

	return result, nil
}
