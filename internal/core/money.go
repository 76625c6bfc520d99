// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Decimal text is parsed with
// shopspring/decimal and rounded half-up to two places.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds any single amount (100 billion units) so that sums over
// a realistic ledger stay far from int64 overflow.
const MaxCents int64 = 1e13

var maxCents = decimal.NewFromInt(MaxCents)

// ParseAmount converts user-entered decimal text into a strictly positive Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up on the third decimal place.
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents
//	ParseAmount("0")      -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	cents, err := decimalToCents(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Cents: cents}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func decimalToCents(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	m, err := FromDecimal(d)
	return m.Cents, err
}

// FromDecimal converts d into cents, rounding half-up. Values beyond
// MaxCents in either direction are ErrInvalidAmount.
func FromDecimal(d decimal.Decimal) (Money, error) {
	shifted := d.Round(2).Shift(2)
	if shifted.Abs().GreaterThan(maxCents) {
		return Money{}, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return Money{Cents: shifted.IntPart()}, nil
}

// Decimal returns the amount as an exact decimal with two fractional places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }
