package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/depositcore/internal/domain"
)

// CalendarRepository implements usecase.CalendarRepository by loading
// non-business date ranges (weekends are derived, holidays live here).
type CalendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository creates a new CalendarRepository.
func NewCalendarRepository(pool *pgxpool.Pool) *CalendarRepository {
	return &CalendarRepository{pool: pool}
}

// Calendar loads the full business-day calendar.
func (r *CalendarRepository) Calendar(ctx context.Context) (*domain.Calendar, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_date, end_date
		FROM calendar_closures
		ORDER BY start_date`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranges []domain.DateRange
	for rows.Next() {
		var start, end pgtype.Timestamptz
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		ranges = append(ranges, domain.DateRange{Start: start.Time, End: end.Time})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.NewCalendar(ranges), nil
}
