// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals. Nothing is rounded while values accumulate;
// rounding to cents only happens when an amount is rendered or parsed from
// user input.
package core

import (
	"errors"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used by Format when no currency is given.
const DefaultCurrency = money.USD

// Money is an exact monetary amount in major units.
// The zero value is a valid zero amount.
type Money struct {
	value decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money { return Money{value: d} }

// MoneyFromInt returns an amount of whole major units.
func MoneyFromInt(units int64) Money { return Money{value: decimal.NewFromInt(units)} }

// MoneyFromCents returns an amount expressed in minor units.
func MoneyFromCents(cents int64) Money { return Money{value: decimal.New(cents, -2)} }

// ParseMoney parses a signed decimal string. Both "12.34" and "12,34" are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{value: d}, nil
}

// MustMoney is like ParseMoney but panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

// ParseAmount converts user input to a strictly positive amount in cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Signs are rejected.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
//	ParseAmount("-1")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return Money{}, ErrInvalidAmount
			}
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return Money{value: d}, nil
}

func (m Money) Decimal() decimal.Decimal         { return m.value }
func (m Money) IsZero() bool                     { return m.value.IsZero() }
func (m Money) IsPositive() bool                 { return m.value.IsPositive() }
func (m Money) IsNegative() bool                 { return m.value.IsNegative() }
func (m Money) Equal(n Money) bool               { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int                  { return m.value.Cmp(n.value) }
func (m Money) LessThan(n Money) bool            { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool     { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool         { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool  { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Add(n Money) Money                { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money                { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money                       { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                       { return Money{value: m.value.Abs()} }
func (m Money) Mul(d decimal.Decimal) Money      { return Money{value: m.value.Mul(d)} }
func (m Money) Div(d decimal.Decimal) Money      { return Money{value: m.value.Div(d)} }
func (m Money) MulInt(n int64) Money             { return Money{value: m.value.Mul(decimal.NewFromInt(n))} }
func (m Money) DivInt(n int64) Money             { return Money{value: m.value.Div(decimal.NewFromInt(n))} }
func (m Money) Round(places int32) Money         { return Money{value: m.value.Round(places)} }
func (m Money) Ratio(n Money) decimal.Decimal    { return m.value.Div(n.value) }
func (m Money) InexactFloat64() float64          { return m.value.InexactFloat64() }

// Cents returns the amount rounded half away from zero to minor units.
func (m Money) Cents() int64 {
	return m.value.Round(2).Shift(2).IntPart()
}

// String renders the amount with two decimals and no currency symbol.
func (m Money) String() string {
	return m.value.StringFixed(2)
}

// Format renders the amount in the given ISO currency, e.g. "$1,234.50".
func (m Money) Format(currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	cur := money.New(0, currency).Currency()
	return cur.Formatter().Format(m.value.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// MarshalJSON encodes the amount as a bare JSON number with full precision.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts numbers, quoted numbers and null.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return errors.Join(ErrInvalidAmount, err)
	}
	m.value = d
	return nil
}

// MinMoney returns the smaller of a and b.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxMoney returns the larger of a and b.
func MaxMoney(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum adds up amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
