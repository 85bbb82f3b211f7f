package usecase

import (
	"context"
	"time"

	"github.com/iho/depositcore/internal/domain"
)

// AccountRepository defines data access for deposit accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	Close(ctx context.Context, tx Transaction, id string, closedAt time.Time) error
}

// ProductRepository defines data access for product configurations.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ProductConfig, error)
}

// PostingRepository defines data access for committed posting batches.
// Queries are value-date-ordered: a backdated batch already committed for a
// later processing time but earlier value date is visible at that value date.
type PostingRepository interface {
	AppendBatch(ctx context.Context, tx Transaction, batch *domain.PostingBatch) error
	GetBatch(ctx context.Context, batchID string) (*domain.PostingBatch, error)
	// BalancesAt reconstructs an account's balances as of a value date.
	BalancesAt(ctx context.Context, accountID string, at time.Time) (domain.Balances, error)
	// BalancesBefore reconstructs an account's balances from postings
	// value-dated strictly before the cutoff. Accrual uses this for
	// prior-day snapshots: a batch dated exactly midnight of a day belongs
	// to that day, not the one before.
	BalancesBefore(ctx context.Context, accountID string, before time.Time) (domain.Balances, error)
	// ListSameDay returns committed batches touching the account whose value
	// date falls on the same UTC calendar day as day.
	ListSameDay(ctx context.Context, accountID string, day time.Time) ([]*domain.PostingBatch, error)
	// ListMonthToDate returns committed batches touching the account whose
	// value date falls in the same UTC calendar month as day, up to day.
	ListMonthToDate(ctx context.Context, accountID string, day time.Time) ([]*domain.PostingBatch, error)
}

// ScheduleRepository defines data access for application schedule state.
type ScheduleRepository interface {
	Get(ctx context.Context, accountID string) (*domain.ApplicationState, error)
	Save(ctx context.Context, tx Transaction, state *domain.ApplicationState) error
}

// CalendarRepository supplies the business-day calendar.
type CalendarRepository interface {
	Calendar(ctx context.Context) (*domain.Calendar, error)
}

// OutboxRepository defines data access for notification events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
