package domain

import (
	"errors"
	"fmt"
)

var (
	// Goal errors
	ErrGoalNotFound        = errors.New("goal not found")
	ErrGoalTitleConflict   = errors.New("goal with this title already exists")
	ErrInsufficientBalance = errors.New("insufficient goal balance")

	ErrCurrencyMismatch = errors.New("currency mismatch")

	// Collection errors
	ErrDuplicateItem = errors.New("item with this id already exists")
	ErrItemNotFound  = errors.New("item not found")

	// Budget errors
	ErrBudgetNotFound = errors.New("budget not found")
)

// InsufficientBalanceError is returned when a withdrawal exceeds the goal balance.
type InsufficientBalanceError struct {
	Requested Money
	Available Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient goal balance: requested %s, available %s", e.Requested, e.Available)
}

// Unwrap allows errors.Is(err, ErrInsufficientBalance).
func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// CurrencyMismatchError reports arithmetic between two different currencies.
// It signals an integration bug rather than bad user input.
type CurrencyMismatchError struct {
	Left  Currency
	Right Currency
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

func (e *CurrencyMismatchError) Unwrap() error {
	return ErrCurrencyMismatch
}
