package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrValidation is the parent of every input validation failure.
var ErrValidation = errors.New("validation failed")

// Validation errors
var (
	ErrInvalidGoalTitle    = fmt.Errorf("%w: invalid goal title", ErrValidation)
	ErrInvalidDescription  = fmt.Errorf("%w: invalid description", ErrValidation)
	ErrInvalidTargetAmount = fmt.Errorf("%w: target amount must be positive", ErrValidation)
	ErrInvalidDueDate      = fmt.Errorf("%w: due date must be in the future", ErrValidation)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidCurrency     = fmt.Errorf("%w: invalid currency code", ErrValidation)
	ErrAmountTooLarge      = fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	ErrInvalidEntryName    = fmt.Errorf("%w: invalid entry name", ErrValidation)
	ErrInvalidRecurrence   = fmt.Errorf("%w: invalid recurrence interval", ErrValidation)
	ErrInvalidUserID       = fmt.Errorf("%w: missing user id", ErrValidation)
)

// Validation constants
const (
	MaxGoalTitleLength   = 255
	MaxDescriptionLength = 1024
	MaxEntryNameLength   = 255
	MaxRecurrenceDays    = 3660
	MaxMovementAmount    = "1000000000000000" // VND amounts run large
	MaxAmountScale       = 8                  // NUMERIC(30, 8) columns

	DefaultContributionName = "Contribution"
	DefaultWithdrawalName   = "Withdrawal"
)

var validCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyVND: true,
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !validCurrencies[c] {
		return "", fmt.Errorf("%w: %q is not supported", ErrInvalidCurrency, code)
	}
	return c, nil
}

// ValidateGoalTitle validates a goal title.
func ValidateGoalTitle(title string) error {
	title = strings.TrimSpace(title)

	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidGoalTitle)
	}

	if utf8.RuneCountInString(title) > MaxGoalTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidGoalTitle, MaxGoalTitleLength)
	}

	return nil
}

// ValidateDescription validates an optional description.
func ValidateDescription(description *string) error {
	if description == nil {
		return nil
	}
	if utf8.RuneCountInString(*description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}
	return nil
}

// ValidateTargetAmount validates an optional goal target.
func ValidateTargetAmount(target *Money) error {
	if target == nil {
		return nil
	}
	if !target.IsPositive() {
		return ErrInvalidTargetAmount
	}
	if !fitsAmountScale(target.Amount) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidTargetAmount, MaxAmountScale)
	}
	if !validCurrencies[target.Currency] {
		return fmt.Errorf("%w: %q is not supported", ErrInvalidCurrency, target.Currency)
	}
	return nil
}

// ValidateDueDate checks that an optional due date lies strictly after now.
func ValidateDueDate(dueDate *time.Time, now time.Time) error {
	if dueDate == nil {
		return nil
	}
	if !dueDate.After(now) {
		return fmt.Errorf("%w: got %s", ErrInvalidDueDate, dueDate.Format(time.RFC3339))
	}
	return nil
}

// ValidateAmount validates a contribution/withdrawal amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !fitsAmountScale(amount) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MaxAmountScale)
	}

	maxAmount := decimal.RequireFromString(MaxMovementAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxMovementAmount)
	}

	return nil
}

// fitsAmountScale reports whether d is stored without rounding.
func fitsAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MaxAmountScale))
}

// ValidateEntryName validates a ledger entry name.
func ValidateEntryName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidEntryName)
	}

	if utf8.RuneCountInString(name) > MaxEntryNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidEntryName, MaxEntryNameLength)
	}

	return nil
}

// ValidateRecurrence validates a recurrence interval in days (0 = one-time).
func ValidateRecurrence(days int) error {
	if days < 0 || days > MaxRecurrenceDays {
		return fmt.Errorf("%w: must be between 0 and %d days", ErrInvalidRecurrence, MaxRecurrenceDays)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
