package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, product_id, denomination, opened_at, reopened_at, closed_at, flags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID,
		account.ProductID,
		account.Denomination,
		timeToPgTimestamptz(account.OpenedAt),
		optionalTimestamptz(account.ReopenedAt),
		optionalTimestamptz(account.ClosedAt),
		account.Flags,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	account := &domain.Account{}

	var openedAt, createdAt, updatedAt pgtype.Timestamptz
	var reopenedAt, closedAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT id, product_id, denomination, opened_at, reopened_at, closed_at, flags, created_at, updated_at
		FROM accounts
		WHERE id = $1`,
		id,
	).Scan(
		&account.ID,
		&account.ProductID,
		&account.Denomination,
		&openedAt,
		&reopenedAt,
		&closedAt,
		&account.Flags,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.OpenedAt = openedAt.Time
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time
	if reopenedAt.Valid {
		t := reopenedAt.Time
		account.ReopenedAt = &t
	}
	if closedAt.Valid {
		t := closedAt.Time
		account.ClosedAt = &t
	}

	return account, nil
}

// Close stamps the account closed within the transaction.
func (r *AccountRepository) Close(ctx context.Context, tx usecase.Transaction, id string, closedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE accounts SET closed_at = $2, updated_at = $2
		WHERE id = $1 AND closed_at IS NULL`,
		id, timeToPgTimestamptz(closedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountClosed
	}

	return nil
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return pgtype.Timestamptz{Time: *t, Valid: true}
}
