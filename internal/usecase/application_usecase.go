package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
)

// ApplicationUseCase moves accrued interest into the customer's available
// balance on the product's schedule and maintains the per-account schedule
// state machine.
type ApplicationUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	productRepo  ProductRepository
	postingRepo  PostingRepository
	scheduleRepo ScheduleRepository
	calendarRepo CalendarRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
}

// NewApplicationUseCase creates a new ApplicationUseCase.
func NewApplicationUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	postingRepo PostingRepository,
	scheduleRepo ScheduleRepository,
	calendarRepo CalendarRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *ApplicationUseCase {
	return &ApplicationUseCase{
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

// ApplicationResult describes one application run for one account.
type ApplicationResult struct {
	AccountID string
	Accrued   decimal.Decimal
	Applied   decimal.Decimal
	Residual  decimal.Decimal
	NextAt    time.Time
	Batch     *domain.PostingBatch
}

// RunApplication executes one due application: it rounds the accrual
// address's balance to application precision, moves the rounded amount to
// the available balance, and sweeps the rounding residual to the product's
// internal account, so the accrual address reads exactly zero afterwards.
// The lifetime-applied tracker is advanced for products that keep one. The
// schedule must be DUE; callers drive WAITING schedules through MarkDue
// first. A time deposit past its term end completes the schedule instead of
// rescheduling and emits a maturity notification.
func (uc *ApplicationUseCase) RunApplication(ctx context.Context, accountID string, now time.Time) (*ApplicationResult, error) {
	now = now.UTC()

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsClosed(now) {
		return nil, domain.ErrAccountClosed
	}

	cfg, err := uc.productRepo.GetByID(ctx, account.ProductID)
	if err != nil {
		return nil, err
	}

	state, err := uc.scheduleRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	balances, err := uc.postingRepo.BalancesAt(ctx, accountID, now)
	if err != nil {
		return nil, err
	}

	cal, err := uc.calendarRepo.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	accrued := balances.Committed(cfg.Accrual.AccrualAddress(), cfg.Denomination)
	applied := accrued.RoundBank(cfg.Application.Precision)
	result := &ApplicationResult{
		AccountID: accountID,
		Accrued:   accrued,
		Applied:   applied,
		Residual:  accrued.Sub(applied),
	}

	if err := state.MarkApplied(now); err != nil {
		return nil, err
	}

	maturesAt, hasTerm := cfg.Term.MaturesAt(account.TermStart())
	matured := cfg.TimeDeposit && hasTerm && !now.Before(maturesAt)
	if matured {
		state.Complete(now)
	} else if err := state.Reschedule(cfg.Application.Schedule, now, now, cal); err != nil {
		return nil, err
	}
	result.NextAt = state.NextAt

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if !accrued.IsZero() {
		batch := uc.applicationBatch(accountID, cfg, accrued, applied, now)
		if err := uc.postingRepo.AppendBatch(ctx, tx, batch); err != nil {
			return nil, err
		}
		result.Batch = batch
	}

	if !applied.IsZero() {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeInterestApplied,
			Payload: map[string]any{
				"account_id":   accountID,
				"amount":       applied.String(),
				"residual":     result.Residual.String(),
				"denomination": cfg.Denomination,
				"applied_at":   now.Format(time.RFC3339),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if matured {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeAccountMatured,
			Payload: map[string]any{
				"account_id":   accountID,
				"denomination": cfg.Denomination,
				"matured_at":   maturesAt.Format(time.RFC3339),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := uc.scheduleRepo.Save(ctx, tx, state); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// applicationBatch zeroes the accrual address: the rounded amount goes to
// the customer's available balance, the residual to the product's internal
// account.
func (uc *ApplicationUseCase) applicationBatch(
	accountID string,
	cfg *domain.ProductConfig,
	accrued, applied decimal.Decimal,
	now time.Time,
) *domain.PostingBatch {
	residual := accrued.Sub(applied)
	postings := []domain.Posting{
		{
			AccountID:    accountID,
			Address:      cfg.Accrual.AccrualAddress(),
			Denomination: cfg.Denomination,
			Phase:        domain.PhaseCommitted,
			Amount:       accrued.Neg(),
		},
	}

	if !applied.IsZero() {
		postings = append(postings, domain.Posting{
			AccountID:    accountID,
			Address:      domain.AddressDefault,
			Denomination: cfg.Denomination,
			Phase:        domain.PhaseCommitted,
			Amount:       applied,
		})
	}

	if !residual.IsZero() {
		postings = append(postings, domain.Posting{
			AccountID:    cfg.Accrual.InternalAccountID,
			Address:      domain.AddressDefault,
			Denomination: cfg.Denomination,
			Phase:        domain.PhaseCommitted,
			Amount:       residual,
		})
	}

	if cfg.Application.TrackApplied && !applied.IsZero() {
		postings = append(postings,
			domain.Posting{
				AccountID:    accountID,
				Address:      domain.AddressAppliedInterestTracker,
				Denomination: cfg.Denomination,
				Phase:        domain.PhaseCommitted,
				Amount:       applied,
			},
			domain.Posting{
				AccountID:    accountID,
				Address:      domain.AddressInternalContra,
				Denomination: cfg.Denomination,
				Phase:        domain.PhaseCommitted,
				Amount:       applied.Neg(),
			},
		)
	}

	return &domain.PostingBatch{
		ID:                  uc.idGen.Generate(),
		ClientTransactionID: fmt.Sprintf("application:%s:%s", accountID, now.Format("2006-01-02")),
		ValueDate:           now,
		InsertedAt:          now,
		Postings:            postings,
	}
}

// MarkDue fires the schedule for an account whose next occurrence has
// arrived. It is a no-op error for schedules that are not WAITING.
func (uc *ApplicationUseCase) MarkDue(ctx context.Context, accountID string, now time.Time) (*domain.ApplicationState, error) {
	now = now.UTC()

	state, err := uc.scheduleRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if state.NextAt.After(now) {
		return state, nil
	}
	if err := state.MarkDue(now); err != nil {
		return nil, err
	}

	return state, uc.saveState(ctx, state)
}

// ChangeSchedule applies new schedule parameters from the given effective
// time. Changes never fire retroactively: if the first occurrence of the
// new parameters is already past, the change is rejected.
func (uc *ApplicationUseCase) ChangeSchedule(
	ctx context.Context,
	accountID string,
	schedule domain.ApplicationSchedule,
	effectiveFrom time.Time,
) (*domain.ApplicationState, error) {
	now := time.Now().UTC()

	cal, err := uc.calendarRepo.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	state, err := uc.scheduleRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := state.Reschedule(schedule, effectiveFrom.UTC(), now, cal); err != nil {
		return nil, err
	}

	return state, uc.saveState(ctx, state)
}

func (uc *ApplicationUseCase) saveState(ctx context.Context, state *domain.ApplicationState) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.scheduleRepo.Save(ctx, tx, state); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
