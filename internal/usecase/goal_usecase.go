package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/infrastructure/metrics"
)

// GoalUseCase handles savings goal business logic.
type GoalUseCase struct {
	txManager       TransactionManager
	goalRepo        GoalRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	clock           Clock
	retrier         Retrier
	metrics         *metrics.Metrics
	defaultCurrency domain.Currency
}

// NewGoalUseCase creates a new GoalUseCase. A nil clock falls back to the
// system clock, a nil retrier runs reads once and an empty currency means USD.
func NewGoalUseCase(
	txManager TransactionManager,
	goalRepo GoalRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	metrics *metrics.Metrics,
	defaultCurrency domain.Currency,
) *GoalUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	if retrier == nil {
		retrier = noopRetrier{}
	}
	if defaultCurrency == "" {
		defaultCurrency = domain.CurrencyUSD
	}

	return &GoalUseCase{
		txManager:       txManager,
		goalRepo:        goalRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		clock:           clock,
		retrier:         retrier,
		metrics:         metrics,
		defaultCurrency: defaultCurrency,
	}
}

// CreateGoalInput represents input for creating a goal.
type CreateGoalInput struct {
	UserID        string
	Title         string
	Description   *string
	TargetAmount  *decimal.Decimal
	Currency      string
	DueDate       *time.Time
	InitialAmount *decimal.Decimal
}

// CreateGoal creates a goal with an empty ledger. An initial amount is booked
// as an opening contribution so the balance stays derivable from the ledger.
func (uc *GoalUseCase) CreateGoal(ctx context.Context, input CreateGoalInput) (*domain.GoalAggregate, error) {
	currency := uc.defaultCurrency
	if input.Currency != "" {
		c, err := domain.ParseCurrency(input.Currency)
		if err != nil {
			return nil, uc.fail(err)
		}
		currency = c
	}

	var target *domain.Money
	if input.TargetAmount != nil {
		t := domain.NewMoney(*input.TargetAmount, currency)
		target = &t
	}

	now := uc.clock.Now()

	goal, err := domain.NewGoal(domain.NewGoalParams{
		ID:              uc.idGen.Generate(),
		UserID:          input.UserID,
		Title:           input.Title,
		Description:     input.Description,
		TargetAmount:    target,
		DueDate:         input.DueDate,
		DefaultCurrency: currency,
	}, now)
	if err != nil {
		return nil, uc.fail(err)
	}

	aggregate, err := domain.NewGoalAggregate(goal, nil)
	if err != nil {
		return nil, uc.fail(err)
	}

	events := []*domain.OutboxEvent{
		uc.newEvent(goal.ID, domain.EventTypeGoalCreated, domain.NewGoalChangedEvent(goal, now), now),
	}

	if input.InitialAmount != nil && !input.InitialAmount.IsZero() {
		name := OpeningBalanceName
		entry, err := aggregate.Contribute(domain.MoneyMovement{
			EntryID: uc.idGen.Generate(),
			Amount:  *input.InitialAmount,
			Name:    &name,
		}, now)
		if err != nil {
			return nil, uc.fail(err)
		}
		events = append(events, uc.newEvent(goal.ID, domain.EventTypeGoalContributed, domain.NewGoalMovementEvent(goal, entry, now), now))
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	if err := uc.ensureTitleAvailable(txCtx, goal.UserID, goal.Title, ""); err != nil {
		return nil, uc.fail(err)
	}

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.goalRepo.Save(txCtx, tx, aggregate); err != nil {
		return nil, uc.fail(err)
	}

	if err := uc.writeEvents(txCtx, tx, events); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.GoalsCreated.Inc()
	}

	return aggregate, nil
}

// GetGoal returns a goal owned by userID. A goal owned by someone else is
// reported exactly like a missing one.
func (uc *GoalUseCase) GetGoal(ctx context.Context, userID, goalID string) (*domain.GoalAggregate, error) {
	var aggregate *domain.GoalAggregate

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		aggregate, err = uc.goalRepo.GetByID(ctx, goalID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !ownedBy(aggregate, userID) {
		return nil, domain.ErrGoalNotFound
	}

	return aggregate, nil
}

// ListGoalsInput represents input for listing goals.
type ListGoalsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListGoals lists the user's goals with pagination.
func (uc *GoalUseCase) ListGoals(ctx context.Context, input ListGoalsInput) ([]*domain.Goal, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	var goals []*domain.Goal

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		goals, err = uc.goalRepo.ListByUser(ctx, input.UserID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}

	return goals, nil
}

// ListGoalEntries returns the goal's ledger in creation order.
func (uc *GoalUseCase) ListGoalEntries(ctx context.Context, userID, goalID string) ([]domain.LedgerEntry, error) {
	aggregate, err := uc.GetGoal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	return aggregate.Contributions.Items(), nil
}

// ListGoalEventsInput represents input for a goal's event history.
type ListGoalEventsInput struct {
	UserID string
	GoalID string
	Limit  int
	Offset int
}

// ListGoalEvents returns the domain events recorded for a goal, oldest first.
// Events removed by outbox retention are no longer listed.
func (uc *GoalUseCase) ListGoalEvents(ctx context.Context, input ListGoalEventsInput) ([]*domain.OutboxEvent, error) {
	if _, err := uc.GetGoal(ctx, input.UserID, input.GoalID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	var events []*domain.OutboxEvent
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		events, err = uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeGoal, input.GoalID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

// UpdateGoalInput represents a partial goal update; nil fields stay unchanged.
type UpdateGoalInput struct {
	UserID       string
	GoalID       string
	Title        *string
	Description  *string
	TargetAmount *decimal.Decimal
	Currency     *string
	DueDate      *time.Time
}

// UpdateGoal applies a partial update to the goal's details.
func (uc *GoalUseCase) UpdateGoal(ctx context.Context, input UpdateGoalInput) (*domain.GoalAggregate, error) {
	if input.Currency != nil && input.TargetAmount == nil {
		return nil, fmt.Errorf("%w: currency can only be set together with a target amount", domain.ErrInvalidCurrency)
	}

	aggregate, err := uc.withLockedGoal(ctx, input.UserID, input.GoalID, func(ctx context.Context, agg *domain.GoalAggregate, now time.Time) ([]*domain.OutboxEvent, error) {
		goal := agg.Goal

		if input.Title != nil && strings.TrimSpace(*input.Title) != goal.Title {
			if err := uc.ensureTitleAvailable(ctx, goal.UserID, *input.Title, goal.ID); err != nil {
				return nil, err
			}
		}

		update := domain.GoalDetailsUpdate{
			Title:       input.Title,
			Description: input.Description,
			DueDate:     input.DueDate,
		}

		if input.TargetAmount != nil {
			currency := domain.ResolveGoalCurrency(goal)
			if input.Currency != nil {
				c, err := domain.ParseCurrency(*input.Currency)
				if err != nil {
					return nil, err
				}
				currency = c
			}
			target := domain.NewMoney(*input.TargetAmount, currency)
			update.TargetAmount = &target
		}

		if err := agg.UpdateDetails(update, now); err != nil {
			return nil, err
		}

		return []*domain.OutboxEvent{
			uc.newEvent(goal.ID, domain.EventTypeGoalUpdated, domain.NewGoalChangedEvent(goal, now), now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.GoalsUpdated.Inc()
	}

	return aggregate, nil
}

// DeleteGoal soft-deletes the goal. Its ledger stays in place.
func (uc *GoalUseCase) DeleteGoal(ctx context.Context, userID, goalID string) error {
	_, err := uc.withLockedGoal(ctx, userID, goalID, func(_ context.Context, agg *domain.GoalAggregate, now time.Time) ([]*domain.OutboxEvent, error) {
		agg.Goal.SoftDelete(now)

		return []*domain.OutboxEvent{
			uc.newEvent(agg.Goal.ID, domain.EventTypeGoalDeleted, domain.NewGoalChangedEvent(agg.Goal, now), now),
		}, nil
	})
	if err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.GoalsDeleted.Inc()
	}

	return nil
}

// MoneyMovementInput represents input for a contribution or withdrawal.
type MoneyMovementInput struct {
	UserID                 string
	GoalID                 string
	Amount                 decimal.Decimal
	Name                   *string
	Description            *string
	RecurrenceIntervalDays int
}

// MoneyMovementResult is the state after a successful money movement.
type MoneyMovementResult struct {
	Goal  *domain.Goal
	Entry domain.LedgerEntry
}

// ContributeToGoal adds money to a goal.
func (uc *GoalUseCase) ContributeToGoal(ctx context.Context, input MoneyMovementInput) (*MoneyMovementResult, error) {
	return uc.moveMoney(ctx, input, domain.EntryKindContribution)
}

// WithdrawFromGoal takes money out of a goal.
func (uc *GoalUseCase) WithdrawFromGoal(ctx context.Context, input MoneyMovementInput) (*MoneyMovementResult, error) {
	return uc.moveMoney(ctx, input, domain.EntryKindWithdrawal)
}

func (uc *GoalUseCase) moveMoney(ctx context.Context, input MoneyMovementInput, kind domain.EntryKind) (*MoneyMovementResult, error) {
	start := time.Now()

	var entry domain.LedgerEntry

	aggregate, err := uc.withLockedGoal(ctx, input.UserID, input.GoalID, func(_ context.Context, agg *domain.GoalAggregate, now time.Time) ([]*domain.OutboxEvent, error) {
		movement := domain.MoneyMovement{
			EntryID:                uc.idGen.Generate(),
			Amount:                 input.Amount,
			Name:                   input.Name,
			Description:            input.Description,
			RecurrenceIntervalDays: input.RecurrenceIntervalDays,
		}

		var (
			err       error
			eventType string
		)
		if kind == domain.EntryKindWithdrawal {
			entry, err = agg.Withdraw(movement, now)
			eventType = domain.EventTypeGoalWithdrawn
		} else {
			entry, err = agg.Contribute(movement, now)
			eventType = domain.EventTypeGoalContributed
		}
		if err != nil {
			return nil, err
		}

		return []*domain.OutboxEvent{
			uc.newEvent(agg.Goal.ID, eventType, domain.NewGoalMovementEvent(agg.Goal, entry, now), now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		if kind == domain.EntryKindWithdrawal {
			uc.metrics.Withdrawals.Inc()
		} else {
			uc.metrics.Contributions.Inc()
		}
		amount, _ := entry.Amount.Amount.Float64()
		uc.metrics.MovementAmount.WithLabelValues(string(kind), string(entry.Amount.Currency)).Observe(amount)
		uc.metrics.MovementDuration.Observe(time.Since(start).Seconds())
	}

	return &MoneyMovementResult{Goal: aggregate.Goal, Entry: entry}, nil
}

// CorrectEntryInput represents a correction of an existing goal entry.
type CorrectEntryInput struct {
	UserID      string
	GoalID      string
	EntryID     string
	Amount      *decimal.Decimal
	Name        *string
	Description *string
}

// CorrectGoalEntry amends a contribution or withdrawal and rebalances the goal.
func (uc *GoalUseCase) CorrectGoalEntry(ctx context.Context, input CorrectEntryInput) (*MoneyMovementResult, error) {
	var entry domain.LedgerEntry

	aggregate, err := uc.withLockedGoal(ctx, input.UserID, input.GoalID, func(_ context.Context, agg *domain.GoalAggregate, now time.Time) ([]*domain.OutboxEvent, error) {
		correction := domain.EntryCorrection{
			Name:        input.Name,
			Description: input.Description,
		}
		if input.Amount != nil {
			amount := domain.NewMoney(*input.Amount, domain.ResolveGoalCurrency(agg.Goal))
			correction.Amount = &amount
		}

		var err error
		entry, err = agg.CorrectEntry(input.EntryID, correction, now)
		if err != nil {
			return nil, err
		}

		return []*domain.OutboxEvent{
			uc.newEvent(agg.Goal.ID, domain.EventTypeGoalEntryCorrected, domain.NewGoalMovementEvent(agg.Goal, entry, now), now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntryCorrections.WithLabelValues("correct").Inc()
	}

	return &MoneyMovementResult{Goal: aggregate.Goal, Entry: entry}, nil
}

// RemoveGoalEntry deletes a ledger entry and reverses its effect on the balance.
func (uc *GoalUseCase) RemoveGoalEntry(ctx context.Context, userID, goalID, entryID string) (*domain.Goal, error) {
	aggregate, err := uc.withLockedGoal(ctx, userID, goalID, func(_ context.Context, agg *domain.GoalAggregate, now time.Time) ([]*domain.OutboxEvent, error) {
		entry, err := agg.RemoveEntry(entryID, now)
		if err != nil {
			return nil, err
		}

		return []*domain.OutboxEvent{
			uc.newEvent(agg.Goal.ID, domain.EventTypeGoalEntryRemoved, domain.NewGoalMovementEvent(agg.Goal, entry, now), now),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntryCorrections.WithLabelValues("remove").Inc()
	}

	return aggregate.Goal, nil
}

type goalMutation func(ctx context.Context, agg *domain.GoalAggregate, now time.Time) ([]*domain.OutboxEvent, error)

// withLockedGoal loads the goal under a row lock, applies mutate, and persists
// the aggregate together with the produced events in one transaction. Nothing
// is retried: a failed money movement must be resubmitted by the caller.
func (uc *GoalUseCase) withLockedGoal(ctx context.Context, userID, goalID string, mutate goalMutation) (*domain.GoalAggregate, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	aggregate, err := uc.goalRepo.GetByIDForUpdate(txCtx, tx, goalID)
	if err != nil {
		return nil, uc.fail(err)
	}

	if !ownedBy(aggregate, userID) {
		return nil, uc.fail(domain.ErrGoalNotFound)
	}

	events, err := mutate(txCtx, aggregate, uc.clock.Now())
	if err != nil {
		return nil, uc.fail(err)
	}

	if err := uc.goalRepo.Save(txCtx, tx, aggregate); err != nil {
		return nil, uc.fail(err)
	}

	if err := uc.writeEvents(txCtx, tx, events); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return aggregate, nil
}

// ensureTitleAvailable fails with ErrGoalTitleConflict when another live goal
// of the user already uses title.
func (uc *GoalUseCase) ensureTitleAvailable(ctx context.Context, userID, title, excludeGoalID string) error {
	existing, err := uc.goalRepo.FindByTitle(ctx, userID, strings.TrimSpace(title))
	if err != nil {
		return err
	}

	if existing != nil && existing.Goal.ID != excludeGoalID {
		return domain.ErrGoalTitleConflict
	}

	return nil
}

func (uc *GoalUseCase) writeEvents(ctx context.Context, tx Transaction, events []*domain.OutboxEvent) error {
	for _, event := range events {
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

func (uc *GoalUseCase) newEvent(goalID, eventType string, payload any, now time.Time) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   goalID,
		AggregateType: domain.AggregateTypeGoal,
		EventType:     eventType,
		Payload:       domain.EventPayload(payload),
		CreatedAt:     now,
		Published:     false,
	}
}

// fail records the error class and returns err unchanged.
func (uc *GoalUseCase) fail(err error) error {
	if uc.metrics != nil {
		uc.metrics.GoalErrors.WithLabelValues(errorType(err)).Inc()
	}
	return err
}

func ownedBy(aggregate *domain.GoalAggregate, userID string) bool {
	return aggregate != nil && aggregate.Goal.UserID == userID && !aggregate.Goal.IsDeleted()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrGoalNotFound), errors.Is(err, domain.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrGoalTitleConflict):
		return "conflict"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	default:
		return "internal"
	}
}
