// Package money provides a value object for monetary amounts.
//
// Invariants:
//   - Amount is always stored in the smallest currency unit (cents).
//   - Arithmetic never silently overflows.
//
// The core is single-currency (USD); the Currency field exists so callers
// never confuse raw cents with formatted amounts.
package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAmount is returned when an amount cannot be represented.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountExceedsMaxSafeInt is returned when an amount overflows int64 cents.
	ErrAmountExceedsMaxSafeInt = errors.New("amount exceeds maximum safe integer value")

	// ErrNegativeResult is returned when a subtraction would produce a negative amount.
	ErrNegativeResult = errors.New("amount would be negative")
)

// Amount is a monetary amount in the smallest currency unit (cents).
type Amount = int64

// Currency is the ISO 4217 code of the core's single supported currency.
const Currency = "USD"

const decimals = 2

// Money represents a monetary value in cents.
type Money struct {
	amount Amount
}

// New creates Money from a major-unit float (e.g. 19.99), rounding to the
// nearest cent. NaN, infinities and values outside the int64 cent range are
// rejected.
func New(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrInvalidAmount
	}
	cents := math.Round(f * math.Pow10(decimals))
	if cents > math.MaxInt64 || cents < math.MinInt64 {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: Amount(cents)}, nil
}

// FromCents creates Money directly from an amount in cents. Used for
// hydrating persisted balances.
func FromCents(cents Amount) Money {
	return Money{amount: cents}
}

// Zero is the zero monetary value.
func Zero() Money { return Money{} }

// Cents returns the amount in cents.
func (m Money) Cents() Amount { return m.amount }

// Float returns the amount in major units. Only for display and DTOs;
// arithmetic stays in cents.
func (m Money) Float() float64 {
	return float64(m.amount) / math.Pow10(decimals)
}

// String formats the amount with two decimal places, e.g. "1050.00".
func (m Money) String() string {
	return fmt.Sprintf("%.2f", m.Float())
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// Equals reports whether two amounts are equal.
func (m Money) Equals(o Money) bool { return m.amount == o.amount }

// GreaterThan reports whether m > o.
func (m Money) GreaterThan(o Money) bool { return m.amount > o.amount }

// GreaterThanOrEqual reports whether m >= o.
func (m Money) GreaterThanOrEqual(o Money) bool { return m.amount >= o.amount }

// LessThan reports whether m < o.
func (m Money) LessThan(o Money) bool { return m.amount < o.amount }

// Add returns m + o, guarding against overflow.
func (m Money) Add(o Money) (Money, error) {
	if (o.amount > 0 && m.amount > math.MaxInt64-o.amount) ||
		(o.amount < 0 && m.amount < math.MinInt64-o.amount) {
		return Money{}, ErrAmountExceedsMaxSafeInt
	}
	return Money{amount: m.amount + o.amount}, nil
}

// Sub returns m - o. Balances can never go negative, so a negative result
// is an error rather than a valid value.
func (m Money) Sub(o Money) (Money, error) {
	if o.amount > m.amount {
		return Money{}, ErrNegativeResult
	}
	return Money{amount: m.amount - o.amount}, nil
}

// MulPercent returns pct percent of m, rounded half away from zero.
// Used for flat interest computation.
func (m Money) MulPercent(pct int64) Money {
	product := m.amount * pct
	if product >= 0 {
		return Money{amount: (product + 50) / 100}
	}
	return Money{amount: (product - 50) / 100}
}
