package usecase

import (
	"context"
	"time"

	"github.com/iho/depositcore/internal/domain"
)

// PostingUseCase handles posting batch submission: validation against the
// product's rule chain, atomic commit, and fee/tracker side effects.
type PostingUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	productRepo  ProductRepository
	postingRepo  PostingRepository
	calendarRepo CalendarRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	productRepo ProductRepository,
	postingRepo PostingRepository,
	calendarRepo CalendarRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *PostingUseCase {
	return &PostingUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		productRepo:  productRepo,
		postingRepo:  postingRepo,
		calendarRepo: calendarRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
	}
}

// SubmitBatchInput represents one proposed posting instruction.
type SubmitBatchInput struct {
	AccountID           string
	ClientTransactionID string
	ValueDate           *time.Time
	Details             map[string]string
	Postings            []domain.Posting
}

// SubmitBatchResult is the outcome of a submission. Exactly one of
// Rejection or Batch describes what happened: a rejected batch commits
// nothing, an accepted one commits atomically with its side effects.
type SubmitBatchResult struct {
	Batch      *domain.PostingBatch
	Rejection  *domain.Rejection
	SideBatch  *domain.PostingBatch
	Assessment *FeeAssessment
	Tracker    TrackerResult
}

// Accepted reports whether the batch was committed.
func (r *SubmitBatchResult) Accepted() bool { return r.Rejection == nil }

// SubmitBatch validates and commits one posting batch. Validation sees the
// account's balances as of the batch's value date, so backdated batches
// are judged against the history that was true then. Side-effect postings
// (fees, tracker movements, forfeiture) commit in the same transaction as
// the batch itself.
func (uc *PostingUseCase) SubmitBatch(ctx context.Context, input SubmitBatchInput) (*SubmitBatchResult, error) {
	now := time.Now().UTC()

	valueDate := now
	if input.ValueDate != nil {
		valueDate = input.ValueDate.UTC()
	}

	// 1. Load account and product; closed accounts take no postings.
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if account.IsClosed(valueDate) {
		return nil, domain.ErrAccountClosed
	}

	cfg, err := uc.productRepo.GetByID(ctx, account.ProductID)
	if err != nil {
		return nil, err
	}

	// 2. Shape the batch and check the double-entry invariant up front.
	batch := &domain.PostingBatch{
		ID:                  uc.idGen.Generate(),
		ClientTransactionID: input.ClientTransactionID,
		ValueDate:           valueDate,
		InsertedAt:          now,
		Details:             input.Details,
		Postings:            input.Postings,
	}
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	// 3. Assemble the evaluation context as of the value date.
	ev, err := uc.buildEvaluation(ctx, account, cfg, batch, valueDate)
	if err != nil {
		return nil, err
	}

	// 4. Run the rule chain; the first veto rejects the whole batch.
	rejection, err := NewChain(cfg).Validate(ev)
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		return &SubmitBatchResult{Batch: batch, Rejection: rejection}, nil
	}

	// 5. Price fees and tracker side effects for the accepted batch.
	assessment, err := NewFeeCalculator(cfg).AssessFees(ev)
	if err != nil {
		return nil, err
	}
	tracker := NewWithdrawalTracker(cfg).OnWithdrawal(ev)

	// 6. Commit batch, side effects, and notifications atomically.
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.postingRepo.AppendBatch(ctx, tx, batch); err != nil {
		return nil, err
	}

	result := &SubmitBatchResult{
		Batch:      batch,
		Assessment: assessment,
		Tracker:    tracker,
	}

	side := append(assessment.Postings, tracker.Postings...)
	if len(side) > 0 {
		result.SideBatch = &domain.PostingBatch{
			ID:                  uc.idGen.Generate(),
			ClientTransactionID: input.ClientTransactionID + ":effects",
			ValueDate:           valueDate,
			InsertedAt:          now,
			Details:             map[string]string{"origin_batch": batch.ID},
			Postings:            side,
		}
		if err := uc.postingRepo.AppendBatch(ctx, tx, result.SideBatch); err != nil {
			return nil, err
		}
	}

	if err := uc.createEvents(ctx, tx, account.ID, cfg, result, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// GetBatch retrieves a committed batch by ID.
func (uc *PostingUseCase) GetBatch(ctx context.Context, batchID string) (*domain.PostingBatch, error) {
	return uc.postingRepo.GetBatch(ctx, batchID)
}

func (uc *PostingUseCase) buildEvaluation(
	ctx context.Context,
	account *domain.Account,
	cfg *domain.ProductConfig,
	batch *domain.PostingBatch,
	valueDate time.Time,
) (*Evaluation, error) {
	balances, err := uc.postingRepo.BalancesAt(ctx, account.ID, valueDate)
	if err != nil {
		return nil, err
	}

	sameDay, err := uc.postingRepo.ListSameDay(ctx, account.ID, valueDate)
	if err != nil {
		return nil, err
	}

	monthToDate, err := uc.postingRepo.ListMonthToDate(ctx, account.ID, valueDate)
	if err != nil {
		return nil, err
	}

	cal, err := uc.calendarRepo.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		Account:     account,
		Config:      cfg,
		Batch:       batch,
		Balances:    balances,
		SameDay:     sameDay,
		MonthToDate: monthToDate,
		Tier:        cfg.Tiers.Resolve(account.Flags, valueDate),
		Calendar:    cal,
		Now:         valueDate,
	}, nil
}

func (uc *PostingUseCase) createEvents(
	ctx context.Context,
	tx Transaction,
	accountID string,
	cfg *domain.ProductConfig,
	result *SubmitBatchResult,
	now time.Time,
) error {
	for _, charge := range result.Assessment.Charges {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeFeeCharged,
			Payload: map[string]any{
				"account_id":   accountID,
				"batch_id":     result.Batch.ID,
				"payment_type": charge.PaymentType,
				"fee_type":     charge.FeeType,
				"amount":       charge.Amount.String(),
				"denomination": cfg.Denomination,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	if result.Tracker.Forfeited.IsPositive() {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeInterestForfeited,
			Payload: map[string]any{
				"account_id":   accountID,
				"batch_id":     result.Batch.ID,
				"amount":       result.Tracker.Forfeited.String(),
				"denomination": cfg.Denomination,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	if result.Tracker.FullyWithdrawn {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   accountID,
			AggregateType: domain.AggregateTypeAccount,
			EventType:     domain.EventTypeFullyWithdrawn,
			Payload: map[string]any{
				"account_id":   accountID,
				"batch_id":     result.Batch.ID,
				"denomination": cfg.Denomination,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}

	return nil
}
