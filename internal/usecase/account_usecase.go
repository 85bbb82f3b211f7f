package usecase

import (
	"context"
	"time"

	"github.com/iho/depositcore/internal/domain"
)

// AccountUseCase handles deposit account lifecycle: opening, balance
// queries, and closure with tracker and accrual cleanup.
type AccountUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	productRepo  ProductRepository
	postingRepo  PostingRepository
	scheduleRepo ScheduleRepository
	calendarRepo CalendarRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	postingRepo PostingRepository,
	scheduleRepo ScheduleRepository,
	calendarRepo CalendarRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		productRepo:  productRepo,
		postingRepo:  postingRepo,
		scheduleRepo: scheduleRepo,
		calendarRepo: calendarRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	ProductID string
	Flags     []domain.TierFlag
}

// OpenAccount creates an account on a product and seeds its application
// schedule with the first occurrence after opening.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	now := time.Now().UTC()

	cfg, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	cal, err := uc.calendarRepo.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uc.idGen.Generate(),
		ProductID:    cfg.ID,
		Denomination: cfg.Denomination,
		OpenedAt:     now,
		Flags:        input.Flags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	state := &domain.ApplicationState{
		AccountID: account.ID,
		Status:    domain.ScheduleWaiting,
		NextAt:    cfg.Application.Schedule.Next(now, cal),
		UpdatedAt: now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.scheduleRepo.Save(ctx, tx, state); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount returns an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetBalances reconstructs an account's balances as of a point in time.
func (uc *AccountUseCase) GetBalances(ctx context.Context, accountID string, at time.Time) (domain.Balances, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	return uc.postingRepo.BalancesAt(ctx, accountID, at.UTC())
}

// CloseAccount deactivates an account: it zeroes the tracker balances with
// reset postings, returns any unapplied accrued interest to the product's
// internal account, completes the application schedule, and emits a
// closure notification. All of it commits in one transaction.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, accountID string) error {
	now := time.Now().UTC()

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.IsClosed(now) {
		return domain.ErrAccountClosed
	}

	cfg, err := uc.productRepo.GetByID(ctx, account.ProductID)
	if err != nil {
		return err
	}

	balances, err := uc.postingRepo.BalancesAt(ctx, accountID, now)
	if err != nil {
		return err
	}

	state, err := uc.scheduleRepo.Get(ctx, accountID)
	if err != nil {
		return err
	}

	postings := NewWithdrawalTracker(cfg).ResetPostings(accountID, balances)
	postings = append(postings, uc.accrualReturnPostings(accountID, cfg, balances)...)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(postings) > 0 {
		batch := &domain.PostingBatch{
			ID:                  uc.idGen.Generate(),
			ClientTransactionID: "closure:" + accountID,
			ValueDate:           now,
			InsertedAt:          now,
			Postings:            postings,
		}
		if err := uc.postingRepo.AppendBatch(ctx, tx, batch); err != nil {
			return err
		}
	}

	state.Complete(now)
	if err := uc.scheduleRepo.Save(ctx, tx, state); err != nil {
		return err
	}

	if err := uc.accountRepo.Close(ctx, tx, accountID, now); err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   accountID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountClosed,
		Payload: map[string]any{
			"account_id":   accountID,
			"denomination": cfg.Denomination,
			"closed_at":    now.Format(time.RFC3339),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// accrualReturnPostings hands unapplied accrued interest back to the
// product's internal account at closure.
func (uc *AccountUseCase) accrualReturnPostings(
	accountID string,
	cfg *domain.ProductConfig,
	balances domain.Balances,
) []domain.Posting {
	accrued := balances.Committed(cfg.Accrual.AccrualAddress(), cfg.Denomination)
	if accrued.IsZero() {
		return nil
	}

	return []domain.Posting{
		{
			AccountID:    accountID,
			Address:      cfg.Accrual.AccrualAddress(),
			Denomination: cfg.Denomination,
			Phase:        domain.PhaseCommitted,
			Amount:       accrued.Neg(),
		},
		{
			AccountID:    cfg.Accrual.InternalAccountID,
			Address:      domain.AddressDefault,
			Denomination: cfg.Denomination,
			Phase:        domain.PhaseCommitted,
			Amount:       accrued,
		},
	}
}
