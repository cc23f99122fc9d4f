package money_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veltris/banking/pkg/money"
)

func TestNew_RoundsToCents(t *testing.T) {
	m, err := money.New(19.999)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), m.Cents())

	m, err = money.New(0.005)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Cents())
}

func TestNew_RejectsNaNAndInf(t *testing.T) {
	_, err := money.New(math.NaN())
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.New(math.Inf(1))
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestSub_NegativeResult(t *testing.T) {
	a := money.FromCents(100)
	b := money.FromCents(150)
	_, err := a.Sub(b)
	assert.ErrorIs(t, err, money.ErrNegativeResult)

	got, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Cents())
}

func TestAdd_Overflow(t *testing.T) {
	a := money.FromCents(math.MaxInt64)
	_, err := a.Add(money.FromCents(1))
	assert.ErrorIs(t, err, money.ErrAmountExceedsMaxSafeInt)
}

func TestMulPercent_FlatInterest(t *testing.T) {
	principal := money.FromCents(100_000) // 1000.00
	interest := principal.MulPercent(5)
	assert.Equal(t, "50.00", interest.String())

	total, err := principal.Add(interest)
	require.NoError(t, err)
	assert.Equal(t, "1050.00", total.String())
}

func TestString(t *testing.T) {
	assert.Equal(t, "0.00", money.Zero().String())
	assert.Equal(t, "12.30", money.FromCents(1230).String())
}
