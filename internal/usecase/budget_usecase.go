package usecase

import (
	"context"

	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/infrastructure/metrics"
)

// BudgetUseCase serves budget spending projections.
type BudgetUseCase struct {
	budgetRepo BudgetRepository
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(budgetRepo BudgetRepository, retrier Retrier, metrics *metrics.Metrics) *BudgetUseCase {
	if retrier == nil {
		retrier = noopRetrier{}
	}

	return &BudgetUseCase{
		budgetRepo: budgetRepo,
		retrier:    retrier,
		metrics:    metrics,
	}
}

// BudgetSpendingResult pairs a budget with its spending projection.
type BudgetSpendingResult struct {
	Budget   *domain.Budget
	Spending *domain.BudgetSpending
}

// GetBudgetSpending sums the user's spend entries inside the budget period
// and projects them against the limit.
func (uc *BudgetUseCase) GetBudgetSpending(ctx context.Context, userID, budgetID string) (*BudgetSpendingResult, error) {
	var budget *domain.Budget

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		budget, err = uc.budgetRepo.GetByID(ctx, budgetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}

	var spent domain.Money

	err = uc.retrier.Retry(ctx, func() error {
		var err error
		spent, err = uc.budgetRepo.SumSpending(ctx, userID, budget.Limit.Currency, budget.PeriodStart, budget.PeriodEnd)
		return err
	})
	if err != nil {
		return nil, err
	}

	spending, err := budget.Spending(spent)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		outcome := "within"
		if spending.IsOverBudget {
			outcome = "over"
		}
		uc.metrics.BudgetChecks.WithLabelValues(outcome).Inc()
	}

	return &BudgetSpendingResult{Budget: budget, Spending: spending}, nil
}
