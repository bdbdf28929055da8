package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/usecase"
)

// CreateGoalRequest represents a request to create a goal.
// Amounts travel as strings so no precision is lost in JSON.
type CreateGoalRequest struct {
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	TargetAmount  *string    `json:"target_amount,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	InitialAmount *string    `json:"initial_amount,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateGoalRequest) ToUseCaseInput(userID string) (usecase.CreateGoalInput, error) {
	target, err := parseOptionalAmount(r.TargetAmount)
	if err != nil {
		return usecase.CreateGoalInput{}, err
	}

	initial, err := parseOptionalAmount(r.InitialAmount)
	if err != nil {
		return usecase.CreateGoalInput{}, err
	}

	return usecase.CreateGoalInput{
		UserID:        userID,
		Title:         r.Title,
		Description:   r.Description,
		TargetAmount:  target,
		Currency:      r.Currency,
		DueDate:       r.DueDate,
		InitialAmount: initial,
	}, nil
}

// UpdateGoalRequest is a partial update; absent fields are left untouched.
type UpdateGoalRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	TargetAmount *string    `json:"target_amount,omitempty"`
	Currency     *string    `json:"currency,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateGoalRequest) ToUseCaseInput(userID, goalID string) (usecase.UpdateGoalInput, error) {
	target, err := parseOptionalAmount(r.TargetAmount)
	if err != nil {
		return usecase.UpdateGoalInput{}, err
	}

	return usecase.UpdateGoalInput{
		UserID:       userID,
		GoalID:       goalID,
		Title:        r.Title,
		Description:  r.Description,
		TargetAmount: target,
		Currency:     r.Currency,
		DueDate:      r.DueDate,
	}, nil
}

// MoneyMovementRequest is the body of a contribution or withdrawal.
type MoneyMovementRequest struct {
	Amount                 string  `json:"amount"`
	Name                   *string `json:"name,omitempty"`
	Description            *string `json:"description,omitempty"`
	RecurrenceIntervalDays int     `json:"recurrence_interval_days,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *MoneyMovementRequest) ToUseCaseInput(userID, goalID string) (usecase.MoneyMovementInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.MoneyMovementInput{}, err
	}

	return usecase.MoneyMovementInput{
		UserID:                 userID,
		GoalID:                 goalID,
		Amount:                 amount,
		Name:                   r.Name,
		Description:            r.Description,
		RecurrenceIntervalDays: r.RecurrenceIntervalDays,
	}, nil
}

// CorrectEntryRequest corrects an existing ledger entry.
type CorrectEntryRequest struct {
	Amount      *string `json:"amount,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CorrectEntryRequest) ToUseCaseInput(userID, goalID, entryID string) (usecase.CorrectEntryInput, error) {
	amount, err := parseOptionalAmount(r.Amount)
	if err != nil {
		return usecase.CorrectEntryInput{}, err
	}

	return usecase.CorrectEntryInput{
		UserID:      userID,
		GoalID:      goalID,
		EntryID:     entryID,
		Amount:      amount,
		Name:        r.Name,
		Description: r.Description,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a decimal", domain.ErrInvalidAmount, s)
	}
	return d, nil
}

func parseOptionalAmount(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
