package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(s string) Money {
	return NewMoney(decimal.RequireFromString(s), CurrencyUSD)
}

func TestMoney_Arithmetic(t *testing.T) {
	sum, err := usd("10.50").Add(usd("0.25"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(usd("10.75")))

	diff, err := usd("1").Subtract(usd("2.5"))
	require.NoError(t, err)
	assert.True(t, diff.Equal(usd("-1.5")))
	assert.True(t, diff.IsNegative())

	gt, err := usd("3").GreaterThan(usd("2.99"))
	require.NoError(t, err)
	assert.True(t, gt)
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	eur := NewMoney(decimal.NewFromInt(1), CurrencyEUR)

	_, err := usd("1").Add(eur)
	var mismatch *CurrencyMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, CurrencyUSD, mismatch.Left)
	assert.Equal(t, CurrencyEUR, mismatch.Right)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd("1").Subtract(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd("1").Cmp(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoney_Equal(t *testing.T) {
	assert.True(t, usd("1.0").Equal(usd("1.00")))
	assert.False(t, usd("1").Equal(NewMoney(decimal.NewFromInt(1), CurrencyVND)))
	assert.Equal(t, "12.5 USD", usd("12.50").String())
}
