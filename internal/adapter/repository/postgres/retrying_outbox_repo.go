package postgres

import (
	"context"
	"time"

	"github.com/iho/depositcore/internal/domain"
	"github.com/iho/depositcore/internal/usecase"
)

// RetryingOutboxRepository wraps an outbox repository with retry on
// transient PostgreSQL failures. The outbox publisher polls outside any
// request transaction, so a deadlock or serialization failure is safe to
// retry without observable side effects.
type RetryingOutboxRepository struct {
	inner   usecase.OutboxRepository
	retrier *Retrier
}

// NewRetryingOutboxRepository creates a retrying wrapper around an outbox
// repository.
func NewRetryingOutboxRepository(inner usecase.OutboxRepository, retrier *Retrier) *RetryingOutboxRepository {
	return &RetryingOutboxRepository{inner: inner, retrier: retrier}
}

// Create writes an event inside the caller's transaction. Retrying inside
// another transaction would replay the whole batch, so Create delegates
// without retry.
func (r *RetryingOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return r.inner.Create(ctx, tx, event)
}

// GetUnpublished retrieves unpublished events, retrying transient errors.
func (r *RetryingOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	var events []*domain.OutboxEvent
	err := r.retrier.Retry(ctx, func() error {
		var opErr error
		events, opErr = r.inner.GetUnpublished(ctx, limit)
		return opErr
	})
	return events, err
}

// MarkPublished marks an event as published, retrying transient errors.
func (r *RetryingOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.retrier.Retry(ctx, func() error {
		return r.inner.MarkPublished(ctx, id, publishedAt)
	})
}

// DeletePublished prunes published events, retrying transient errors.
func (r *RetryingOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.retrier.Retry(ctx, func() error {
		return r.inner.DeletePublished(ctx, before)
	})
}
