package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNewLedgerEntry(t *testing.T) {
	longName := make([]rune, MaxEntryNameLength+1)
	for i := range longName {
		longName[i] = 'x'
	}

	tests := []struct {
		name    string
		params  NewLedgerEntryParams
		wantErr error
	}{
		{
			name:   "valid contribution",
			params: NewLedgerEntryParams{ID: "e1", Amount: usd("10"), Kind: EntryKindContribution, Name: " Salary "},
		},
		{
			name:    "unknown kind",
			params:  NewLedgerEntryParams{ID: "e1", Amount: usd("10"), Kind: "gift", Name: "x"},
			wantErr: ErrValidation,
		},
		{
			name:    "zero amount",
			params:  NewLedgerEntryParams{ID: "e1", Amount: usd("0"), Kind: EntryKindContribution, Name: "x"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "too large",
			params:  NewLedgerEntryParams{ID: "e1", Amount: usd("1000000000000001"), Kind: EntryKindSpend, Name: "x"},
			wantErr: ErrAmountTooLarge,
		},
		{
			name:    "blank name",
			params:  NewLedgerEntryParams{ID: "e1", Amount: usd("1"), Kind: EntryKindIncome, Name: "  "},
			wantErr: ErrInvalidEntryName,
		},
		{
			name:    "name too long",
			params:  NewLedgerEntryParams{ID: "e1", Amount: usd("1"), Kind: EntryKindIncome, Name: string(longName)},
			wantErr: ErrInvalidEntryName,
		},
		{
			name:    "negative recurrence",
			params:  NewLedgerEntryParams{ID: "e1", Amount: usd("1"), Kind: EntryKindIncome, Name: "x", RecurrenceIntervalDays: -1},
			wantErr: ErrInvalidRecurrence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := NewLedgerEntry(tt.params, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Salary", entry.Name)
			assert.True(t, entry.CreatedAt.Equal(testNow))
		})
	}
}

func TestLedgerEntry_SignedAmount(t *testing.T) {
	for kind, want := range map[EntryKind]string{
		EntryKindContribution: "5",
		EntryKindIncome:       "5",
		EntryKindWithdrawal:   "-5",
		EntryKindSpend:        "-5",
	} {
		e := LedgerEntry{Amount: usd("5"), Kind: kind}
		assert.True(t, e.SignedAmount().Equal(usd(want)), "kind %s", kind)
	}
}

func TestLedgerEntry_Corrected(t *testing.T) {
	entry, err := NewLedgerEntry(NewLedgerEntryParams{ID: "e1", Amount: usd("10"), Kind: EntryKindContribution, Name: "Salary"}, testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	amount := usd("12")
	name := "Bonus"

	corrected, err := entry.Corrected(EntryCorrection{Amount: &amount, Name: &name}, later)
	require.NoError(t, err)
	assert.True(t, corrected.Amount.Equal(amount))
	assert.Equal(t, "Bonus", corrected.Name)
	assert.Equal(t, entry.ID, corrected.ID)
	assert.Equal(t, entry.Kind, corrected.Kind)
	assert.True(t, corrected.UpdatedAt.Equal(later))
	assert.False(t, corrected.Equal(entry))

	other := NewMoney(amount.Amount, CurrencyVND)
	_, err = entry.Corrected(EntryCorrection{Amount: &other}, later)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}
