package usecase

import (
	"context"
	"time"

	"github.com/iho/gofinance/internal/domain"
)

// GoalRepository loads and saves goal aggregates.
type GoalRepository interface {
	// GetByID returns a hydrated aggregate of a non-deleted goal or domain.ErrGoalNotFound.
	GetByID(ctx context.Context, id string) (*domain.GoalAggregate, error)
	// GetByIDForUpdate is GetByID with the goal row locked for the transaction.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.GoalAggregate, error)
	// FindByTitle returns the user's non-deleted goal with this title, or nil.
	FindByTitle(ctx context.Context, userID, title string) (*domain.GoalAggregate, error)
	// Save upserts the goal row and applies the pending ledger changes.
	Save(ctx context.Context, tx Transaction, aggregate *domain.GoalAggregate) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Goal, error)
}

// BudgetRepository defines data access for budgets.
type BudgetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Budget, error)
	SumSpending(ctx context.Context, userID string, currency domain.Currency, from, to time.Time) (domain.Money, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
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

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Retrier re-runs read-only operations on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet returns the stored value when key exists. Otherwise it
	// stores IdempotencyInFlight under key and reports exists=false.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so the client may retry it.
	Release(ctx context.Context, key string) error
}
