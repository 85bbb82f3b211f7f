package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// PostingRepository implements usecase.PostingRepository on top of two
// tables: posting_batches (one row per instruction) and postings (one row
// per movement). All queries are value-date ordered.
type PostingRepository struct {
	pool *pgxpool.Pool
}

// NewPostingRepository creates a new PostingRepository.
func NewPostingRepository(pool *pgxpool.Pool) *PostingRepository {
	return &PostingRepository{pool: pool}
}

// AppendBatch inserts a batch and its postings within the transaction. A
// client transaction ID that was already committed maps to
// domain.ErrDuplicateBatch, which makes replayed runs no-ops.
func (r *PostingRepository) AppendBatch(ctx context.Context, tx usecase.Transaction, batch *domain.PostingBatch) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO posting_batches (id, client_transaction_id, value_date, inserted_at, details)
		VALUES ($1, $2, $3, $4, $5)`,
		batch.ID,
		batch.ClientTransactionID,
		timeToPgTimestamptz(batch.ValueDate),
		timeToPgTimestamptz(batch.InsertedAt),
		batch.Details,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateBatch
		}

		return err
	}

	rows := make([][]any, 0, len(batch.Postings))
	for _, p := range batch.Postings {
		rows = append(rows, []any{
			batch.ID, p.AccountID, string(p.Address), p.Denomination, string(p.Phase), decimalToNumeric(p.Amount),
		})
	}

	_, err = pgxTx.CopyFrom(ctx,
		pgx.Identifier{"postings"},
		[]string{"batch_id", "account_id", "address", "denomination", "phase", "amount"},
		pgx.CopyFromRows(rows),
	)

	return err
}

// GetBatch retrieves a committed batch with its postings.
func (r *PostingRepository) GetBatch(ctx context.Context, batchID string) (*domain.PostingBatch, error) {
	batch := &domain.PostingBatch{}

	var valueDate, insertedAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_transaction_id, value_date, inserted_at, details
		FROM posting_batches
		WHERE id = $1`,
		batchID,
	).Scan(&batch.ID, &batch.ClientTransactionID, &valueDate, &insertedAt, &batch.Details)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}

		return nil, err
	}
	batch.ValueDate = valueDate.Time
	batch.InsertedAt = insertedAt.Time

	rows, err := r.pool.Query(ctx, `
		SELECT account_id, address, denomination, phase, amount
		FROM postings
		WHERE batch_id = $1
		ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Posting
		var amount pgtype.Numeric
		if err := rows.Scan(&p.AccountID, &p.Address, &p.Denomination, &p.Phase, &amount); err != nil {
			return nil, err
		}
		p.Amount = numericToDecimal(amount)
		batch.Postings = append(batch.Postings, p)
	}

	return batch, rows.Err()
}

// BalancesAt reconstructs the account's balances as of a value date by
// summing every posting committed with a value date at or before it,
// regardless of when it was inserted.
func (r *PostingRepository) BalancesAt(ctx context.Context, accountID string, at time.Time) (domain.Balances, error) {
	return r.sumBalances(ctx, accountID, "<=", at)
}

// BalancesBefore sums postings value-dated strictly before the cutoff. A
// batch dated exactly midnight of an accrual day is that day's activity,
// never part of the prior-day snapshot.
func (r *PostingRepository) BalancesBefore(ctx context.Context, accountID string, before time.Time) (domain.Balances, error) {
	return r.sumBalances(ctx, accountID, "<", before)
}

func (r *PostingRepository) sumBalances(ctx context.Context, accountID, cmp string, at time.Time) (domain.Balances, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.address, p.denomination, p.phase, SUM(p.amount)
		FROM postings p
		JOIN posting_batches b ON b.id = p.batch_id
		WHERE p.account_id = $1 AND b.value_date `+cmp+` $2
		GROUP BY p.address, p.denomination, p.phase`,
		accountID, timeToPgTimestamptz(at),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := domain.Balances{}
	for rows.Next() {
		var key domain.BalanceKey
		var sum pgtype.Numeric
		if err := rows.Scan(&key.Address, &key.Denomination, &key.Phase, &sum); err != nil {
			return nil, err
		}
		balances[key] = numericToDecimal(sum)
	}

	return balances, rows.Err()
}

// ListSameDay returns the account's committed batches value-dated on the
// same UTC calendar day as day.
func (r *PostingRepository) ListSameDay(ctx context.Context, accountID string, day time.Time) ([]*domain.PostingBatch, error) {
	start := domain.DateOf(day)

	return r.listBetween(ctx, accountID, start, start.AddDate(0, 0, 1))
}

// ListMonthToDate returns the account's committed batches value-dated in
// the same UTC calendar month as day, up to and including day.
func (r *PostingRepository) ListMonthToDate(ctx context.Context, accountID string, day time.Time) ([]*domain.PostingBatch, error) {
	day = day.UTC()
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)

	return r.listBetween(ctx, accountID, start, day.Add(time.Nanosecond))
}

func (r *PostingRepository) listBetween(ctx context.Context, accountID string, from, to time.Time) ([]*domain.PostingBatch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT b.id, b.client_transaction_id, b.value_date, b.inserted_at, b.details
		FROM posting_batches b
		JOIN postings p ON p.batch_id = b.id
		WHERE p.account_id = $1 AND b.value_date >= $2 AND b.value_date < $3
		ORDER BY b.value_date`,
		accountID, timeToPgTimestamptz(from), timeToPgTimestamptz(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*domain.PostingBatch
	for rows.Next() {
		batch := &domain.PostingBatch{}
		var valueDate, insertedAt pgtype.Timestamptz
		if err := rows.Scan(&batch.ID, &batch.ClientTransactionID, &valueDate, &insertedAt, &batch.Details); err != nil {
			return nil, err
		}
		batch.ValueDate = valueDate.Time
		batch.InsertedAt = insertedAt.Time
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, batch := range batches {
		full, err := r.GetBatch(ctx, batch.ID)
		if err != nil {
			return nil, err
		}
		batch.Postings = full.Postings
	}

	return batches, nil
}
