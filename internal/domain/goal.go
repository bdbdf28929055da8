package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target owned by a user.
type Goal struct {
	ID            string
	UserID        string
	Title         string
	Description   *string
	TargetAmount  *Money
	CurrentAmount Money
	DueDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

// NewGoalParams holds the data for a new goal.
type NewGoalParams struct {
	ID              string
	UserID          string
	Title           string
	Description     *string
	TargetAmount    *Money
	CurrentAmount   *Money
	DueDate         *time.Time
	DefaultCurrency Currency
}

// NewGoal validates params and creates a goal. The balance starts at zero in
// the target's currency, or DefaultCurrency when there is no target.
func NewGoal(p NewGoalParams, now time.Time) (*Goal, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, ErrInvalidUserID
	}
	if err := ValidateGoalTitle(p.Title); err != nil {
		return nil, err
	}
	if err := ValidateDescription(p.Description); err != nil {
		return nil, err
	}
	if err := ValidateTargetAmount(p.TargetAmount); err != nil {
		return nil, err
	}
	if err := ValidateDueDate(p.DueDate, now); err != nil {
		return nil, err
	}

	currency := p.DefaultCurrency
	if p.TargetAmount != nil {
		currency = p.TargetAmount.Currency
	}
	if !validCurrencies[currency] {
		return nil, fmt.Errorf("%w: %q is not supported", ErrInvalidCurrency, currency)
	}

	current := ZeroMoney(currency)
	if p.CurrentAmount != nil {
		if p.CurrentAmount.Currency != currency {
			return nil, fmt.Errorf("%w: current amount must be in %s", ErrInvalidCurrency, currency)
		}
		if p.CurrentAmount.IsNegative() {
			return nil, fmt.Errorf("%w: current amount cannot be negative", ErrInvalidAmount)
		}
		if !fitsAmountScale(p.CurrentAmount.Amount) {
			return nil, fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MaxAmountScale)
		}
		current = *p.CurrentAmount
	}

	return &Goal{
		ID:            p.ID,
		UserID:        p.UserID,
		Title:         strings.TrimSpace(p.Title),
		Description:   p.Description,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: current,
		DueDate:       p.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GoalDetailsUpdate is a partial update; nil fields are left untouched.
type GoalDetailsUpdate struct {
	Title        *string
	Description  *string
	TargetAmount *Money
	DueDate      *time.Time
}

// UpdateDetails validates every provided field, then applies them together.
func (g *Goal) UpdateDetails(u GoalDetailsUpdate, now time.Time) error {
	if u.Title != nil {
		if err := ValidateGoalTitle(*u.Title); err != nil {
			return err
		}
	}
	if err := ValidateDescription(u.Description); err != nil {
		return err
	}
	if err := ValidateTargetAmount(u.TargetAmount); err != nil {
		return err
	}
	if u.TargetAmount != nil && u.TargetAmount.Currency != g.CurrentAmount.Currency && !g.CurrentAmount.IsZero() {
		return fmt.Errorf("%w: target must be in %s while the goal holds funds", ErrInvalidCurrency, g.CurrentAmount.Currency)
	}
	if err := ValidateDueDate(u.DueDate, now); err != nil {
		return err
	}

	if u.Title != nil {
		g.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		d := *u.Description
		g.Description = &d
	}
	if u.TargetAmount != nil {
		t := *u.TargetAmount
		g.TargetAmount = &t
		if g.CurrentAmount.IsZero() {
			g.CurrentAmount = ZeroMoney(t.Currency)
		}
	}
	if u.DueDate != nil {
		d := *u.DueDate
		g.DueDate = &d
	}

	g.UpdatedAt = now

	return nil
}

// SoftDelete marks the goal deleted.
func (g *Goal) SoftDelete(now time.Time) {
	g.DeletedAt = &now
	g.UpdatedAt = now
}

// IsDeleted reports whether the goal was soft-deleted.
func (g *Goal) IsDeleted() bool {
	return g.DeletedAt != nil
}

// GoalProgress is a read-only projection of a goal against its target.
type GoalProgress struct {
	Percent    decimal.Decimal
	Remaining  Money
	IsAchieved bool
}

// Progress returns nil when the goal has no target.
func (g *Goal) Progress() *GoalProgress {
	if g.TargetAmount == nil || !g.TargetAmount.IsPositive() {
		return nil
	}

	target := *g.TargetAmount
	percent := g.CurrentAmount.Amount.Div(target.Amount).Mul(decimal.NewFromInt(100)).Round(2)

	remaining := target.Amount.Sub(g.CurrentAmount.Amount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &GoalProgress{
		Percent:    percent,
		Remaining:  NewMoney(remaining, target.Currency),
		IsAchieved: g.CurrentAmount.Amount.GreaterThanOrEqual(target.Amount),
	}
}
