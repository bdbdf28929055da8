package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GoalAggregate is a goal together with its contribution/withdrawal ledger.
// It is loaded and saved as one unit; CurrentAmount only changes through its
// methods, which keep it equal to the net of the ledger.
type GoalAggregate struct {
	Goal          *Goal
	Contributions *TrackedCollection[LedgerEntry]
}

// NewGoalAggregate wraps a goal and its persisted ledger entries.
func NewGoalAggregate(goal *Goal, entries []LedgerEntry) (*GoalAggregate, error) {
	contributions, err := NewTrackedCollection(entries)
	if err != nil {
		return nil, err
	}

	return &GoalAggregate{Goal: goal, Contributions: contributions}, nil
}

// ID returns the goal id.
func (a *GoalAggregate) ID() string {
	return a.Goal.ID
}

// ResolveGoalCurrency picks the currency for new money movements: the target's
// currency when a target exists, otherwise the balance's currency.
func ResolveGoalCurrency(g *Goal) Currency {
	if g.TargetAmount != nil {
		return g.TargetAmount.Currency
	}
	return g.CurrentAmount.Currency
}

// MoneyMovement describes a contribution or withdrawal request.
type MoneyMovement struct {
	EntryID                string
	Amount                 decimal.Decimal
	Name                   *string
	Description            *string
	RecurrenceIntervalDays int
}

// Contribute adds money to the goal. Contributions past the target are allowed.
func (a *GoalAggregate) Contribute(m MoneyMovement, now time.Time) (LedgerEntry, error) {
	money := NewMoney(m.Amount, ResolveGoalCurrency(a.Goal))

	entry, err := a.newEntry(m, money, EntryKindContribution, DefaultContributionName, now)
	if err != nil {
		return LedgerEntry{}, err
	}

	balance, err := a.Goal.CurrentAmount.Add(money)
	if err != nil {
		return LedgerEntry{}, err
	}

	if err := a.Contributions.Add(entry); err != nil {
		return LedgerEntry{}, err
	}

	a.Goal.CurrentAmount = balance
	a.Goal.UpdatedAt = now

	return entry, nil
}

// Withdraw takes money out of the goal. A withdrawal larger than the balance
// fails with *InsufficientBalanceError and leaves the aggregate untouched.
func (a *GoalAggregate) Withdraw(m MoneyMovement, now time.Time) (LedgerEntry, error) {
	money := NewMoney(m.Amount, ResolveGoalCurrency(a.Goal))

	entry, err := a.newEntry(m, money, EntryKindWithdrawal, DefaultWithdrawalName, now)
	if err != nil {
		return LedgerEntry{}, err
	}

	exceeds, err := money.GreaterThan(a.Goal.CurrentAmount)
	if err != nil {
		return LedgerEntry{}, err
	}
	if exceeds {
		return LedgerEntry{}, &InsufficientBalanceError{Requested: money, Available: a.Goal.CurrentAmount}
	}

	balance, err := a.Goal.CurrentAmount.Subtract(money)
	if err != nil {
		return LedgerEntry{}, err
	}

	if err := a.Contributions.Add(entry); err != nil {
		return LedgerEntry{}, err
	}

	a.Goal.CurrentAmount = balance
	a.Goal.UpdatedAt = now

	return entry, nil
}

// UpdateDetails applies a detail update. The goal's currency is fixed once it
// has any ledger entry, even when the entries net to zero.
func (a *GoalAggregate) UpdateDetails(u GoalDetailsUpdate, now time.Time) error {
	if u.TargetAmount != nil && u.TargetAmount.Currency != a.Goal.CurrentAmount.Currency && a.Contributions.Len() > 0 {
		return fmt.Errorf("%w: target must be in %s while the goal has ledger entries", ErrInvalidCurrency, a.Goal.CurrentAmount.Currency)
	}
	return a.Goal.UpdateDetails(u, now)
}

// CorrectEntry amends an existing entry and moves the balance by the difference.
func (a *GoalAggregate) CorrectEntry(entryID string, c EntryCorrection, now time.Time) (LedgerEntry, error) {
	current, ok := a.Contributions.Get(entryID)
	if !ok {
		return LedgerEntry{}, fmt.Errorf("%w: entry %s", ErrItemNotFound, entryID)
	}

	corrected, err := current.Corrected(c, now)
	if err != nil {
		return LedgerEntry{}, err
	}

	delta, err := corrected.SignedAmount().Subtract(current.SignedAmount())
	if err != nil {
		return LedgerEntry{}, err
	}

	balance, err := a.applyDelta(delta)
	if err != nil {
		return LedgerEntry{}, err
	}

	if err := a.Contributions.Update(corrected); err != nil {
		return LedgerEntry{}, err
	}

	a.Goal.CurrentAmount = balance
	a.Goal.UpdatedAt = now

	return corrected, nil
}

// RemoveEntry deletes an entry and reverses its effect on the balance.
func (a *GoalAggregate) RemoveEntry(entryID string, now time.Time) (LedgerEntry, error) {
	current, ok := a.Contributions.Get(entryID)
	if !ok {
		return LedgerEntry{}, fmt.Errorf("%w: entry %s", ErrItemNotFound, entryID)
	}

	balance, err := a.applyDelta(current.SignedAmount().Neg())
	if err != nil {
		return LedgerEntry{}, err
	}

	if err := a.Contributions.Remove(entryID); err != nil {
		return LedgerEntry{}, err
	}

	a.Goal.CurrentAmount = balance
	a.Goal.UpdatedAt = now

	return current, nil
}

// LedgerBalance recomputes the net of all current entries.
func (a *GoalAggregate) LedgerBalance() (Money, error) {
	total := ZeroMoney(a.Goal.CurrentAmount.Currency)
	for _, entry := range a.Contributions.Items() {
		var err error
		total, err = total.Add(entry.SignedAmount())
		if err != nil {
			return Money{}, err
		}
	}
	return total, nil
}

func (a *GoalAggregate) applyDelta(delta Money) (Money, error) {
	balance, err := a.Goal.CurrentAmount.Add(delta)
	if err != nil {
		return Money{}, err
	}
	if balance.IsNegative() {
		return Money{}, &InsufficientBalanceError{Requested: delta.Neg(), Available: a.Goal.CurrentAmount}
	}
	return balance, nil
}

func (a *GoalAggregate) newEntry(m MoneyMovement, money Money, kind EntryKind, defaultName string, now time.Time) (LedgerEntry, error) {
	name := defaultName
	if m.Name != nil {
		name = *m.Name
	}

	return NewLedgerEntry(NewLedgerEntryParams{
		ID:                     m.EntryID,
		OwnerUserID:            a.Goal.UserID,
		Amount:                 money,
		Kind:                   kind,
		Name:                   name,
		Description:            m.Description,
		RecurrenceIntervalDays: m.RecurrenceIntervalDays,
	}, now)
}
