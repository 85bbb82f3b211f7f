package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// ScheduleRepository implements usecase.ScheduleRepository. One row per
// account holds the application schedule state machine.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// Get retrieves the schedule state for an account.
func (r *ScheduleRepository) Get(ctx context.Context, accountID string) (*domain.ApplicationState, error) {
	state := &domain.ApplicationState{}

	var nextAt, updatedAt pgtype.Timestamptz
	var lastAppliedAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT account_id, status, next_at, last_applied_at, updated_at
		FROM application_schedules
		WHERE account_id = $1`,
		accountID,
	).Scan(&state.AccountID, &state.Status, &nextAt, &lastAppliedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}

		return nil, err
	}

	state.NextAt = nextAt.Time
	state.UpdatedAt = updatedAt.Time
	if lastAppliedAt.Valid {
		t := lastAppliedAt.Time
		state.LastAppliedAt = &t
	}

	return state, nil
}

// Save upserts the schedule state within the transaction.
func (r *ScheduleRepository) Save(ctx context.Context, tx usecase.Transaction, state *domain.ApplicationState) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO application_schedules (account_id, status, next_at, last_applied_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id) DO UPDATE SET
			status = EXCLUDED.status,
			next_at = EXCLUDED.next_at,
			last_applied_at = EXCLUDED.last_applied_at,
			updated_at = EXCLUDED.updated_at`,
		state.AccountID,
		string(state.Status),
		timeToPgTimestamptz(state.NextAt),
		optionalTimestamptz(state.LastAppliedAt),
		timeToPgTimestamptz(state.UpdatedAt),
	)

	return err
}
