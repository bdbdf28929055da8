package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps spending for a user over a period.
type Budget struct {
	ID          string
	UserID      string
	Name        string
	Limit       Money
	PeriodStart time.Time
	PeriodEnd   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BudgetSpending is the spending projection of a budget.
type BudgetSpending struct {
	Spent        Money
	Remaining    Money
	SpentPercent decimal.Decimal
	IsOverBudget bool
}

// Spending projects spent against the budget limit. Remaining goes negative
// once the budget is exceeded.
func (b *Budget) Spending(spent Money) (*BudgetSpending, error) {
	remaining, err := b.Limit.Subtract(spent)
	if err != nil {
		return nil, err
	}

	percent := decimal.Zero
	if !b.Limit.IsZero() {
		percent = spent.Amount.Div(b.Limit.Amount).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &BudgetSpending{
		Spent:        spent,
		Remaining:    remaining,
		SpentPercent: percent,
		IsOverBudget: remaining.IsNegative(),
	}, nil
}
