package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryKindContribution EntryKind = "contribution"
	EntryKindWithdrawal   EntryKind = "withdrawal"
	EntryKindIncome       EntryKind = "income"
	EntryKindSpend        EntryKind = "spend"
)

// IsValid checks if the kind is known.
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindContribution, EntryKindWithdrawal, EntryKindIncome, EntryKindSpend:
		return true
	}
	return false
}

// Sign is +1 for money flowing in and -1 for money flowing out.
func (k EntryKind) Sign() int {
	switch k {
	case EntryKindWithdrawal, EntryKindSpend:
		return -1
	default:
		return 1
	}
}

// LedgerEntry records one movement of money. ID, Kind and OwnerUserID never change
// after creation; amount, name and description may be corrected.
type LedgerEntry struct {
	ID                     string
	OwnerUserID            string
	Amount                 Money
	Kind                   EntryKind
	Name                   string
	Description            *string
	RecurrenceIntervalDays int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewLedgerEntryParams holds the data for a new entry.
type NewLedgerEntryParams struct {
	ID                     string
	OwnerUserID            string
	Amount                 Money
	Kind                   EntryKind
	Name                   string
	Description            *string
	RecurrenceIntervalDays int
}

// NewLedgerEntry validates params and builds an entry stamped with now.
func NewLedgerEntry(p NewLedgerEntryParams, now time.Time) (LedgerEntry, error) {
	if !p.Kind.IsValid() {
		return LedgerEntry{}, fmt.Errorf("%w: unknown entry kind %q", ErrValidation, p.Kind)
	}
	if err := ValidateAmount(p.Amount.Amount); err != nil {
		return LedgerEntry{}, err
	}
	if err := ValidateEntryName(p.Name); err != nil {
		return LedgerEntry{}, err
	}
	if err := ValidateDescription(p.Description); err != nil {
		return LedgerEntry{}, err
	}
	if err := ValidateRecurrence(p.RecurrenceIntervalDays); err != nil {
		return LedgerEntry{}, err
	}

	return LedgerEntry{
		ID:                     p.ID,
		OwnerUserID:            p.OwnerUserID,
		Amount:                 p.Amount,
		Kind:                   p.Kind,
		Name:                   strings.TrimSpace(p.Name),
		Description:            p.Description,
		RecurrenceIntervalDays: p.RecurrenceIntervalDays,
		CreatedAt:              now,
		UpdatedAt:              now,
	}, nil
}

// Identity implements Identifiable.
func (e LedgerEntry) Identity() string {
	return e.ID
}

// Equal compares every persisted field.
func (e LedgerEntry) Equal(other LedgerEntry) bool {
	return e.ID == other.ID &&
		e.OwnerUserID == other.OwnerUserID &&
		e.Amount.Equal(other.Amount) &&
		e.Kind == other.Kind &&
		e.Name == other.Name &&
		equalStringPtr(e.Description, other.Description) &&
		e.RecurrenceIntervalDays == other.RecurrenceIntervalDays &&
		e.CreatedAt.Equal(other.CreatedAt) &&
		e.UpdatedAt.Equal(other.UpdatedAt)
}

// SignedAmount is the entry's effect on a running balance.
func (e LedgerEntry) SignedAmount() Money {
	if e.Kind.Sign() < 0 {
		return e.Amount.Neg()
	}
	return e.Amount
}

// EntryCorrection lists the mutable fields of an entry; nil means unchanged.
type EntryCorrection struct {
	Amount      *Money
	Name        *string
	Description *string
}

// Corrected returns a copy of e with the correction applied.
func (e LedgerEntry) Corrected(c EntryCorrection, now time.Time) (LedgerEntry, error) {
	out := e

	if c.Amount != nil {
		if c.Amount.Currency != e.Amount.Currency {
			return LedgerEntry{}, &CurrencyMismatchError{Left: e.Amount.Currency, Right: c.Amount.Currency}
		}
		if err := ValidateAmount(c.Amount.Amount); err != nil {
			return LedgerEntry{}, err
		}
		out.Amount = *c.Amount
	}

	if c.Name != nil {
		if err := ValidateEntryName(*c.Name); err != nil {
			return LedgerEntry{}, err
		}
		out.Name = strings.TrimSpace(*c.Name)
	}

	if c.Description != nil {
		if err := ValidateDescription(c.Description); err != nil {
			return LedgerEntry{}, err
		}
		d := *c.Description
		out.Description = &d
	}

	out.UpdatedAt = now

	return out, nil
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
