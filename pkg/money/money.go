// Package money converts between decimal amounts at the API boundary and
// the integer minor units (cents) the ledger stores.
package money

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits in one major unit.
const Scale = 2

// Exponent window checked before any rescale; an int64 of cents has at most
// 19 digits.
const (
	maxExponent = 18
	minExponent = -(Scale + 18)
)

var (
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")
	ErrOverflow   = errors.New("amount out of range")
)

// ToMinor converts a decimal amount to minor units. It rejects amounts that
// cannot be represented exactly in cents or do not fit in int64.
func ToMinor(d decimal.Decimal) (int64, error) {
	if d.Sign() == 0 {
		return 0, nil
	}
	exp := d.Exponent()
	if exp > maxExponent {
		return 0, ErrOverflow
	}
	if exp < minExponent {
		return 0, ErrTooPrecise
	}
	if !d.Equal(d.Truncate(Scale)) {
		return 0, ErrTooPrecise
	}
	bi := d.Shift(Scale).BigInt()
	if !bi.IsInt64() {
		return 0, ErrOverflow
	}
	return bi.Int64(), nil
}

// FromMinor converts minor units back to a decimal amount.
func FromMinor(cents int64) decimal.Decimal {
	return decimal.New(cents, -Scale)
}

// Number renders minor units as a JSON number with exactly two decimals,
// e.g. 12345 -> 123.45.
func Number(cents int64) json.Number {
	return json.Number(FromMinor(cents).StringFixed(Scale))
}

// Parse converts a decimal string such as "10.50" to minor units.
func Parse(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return ToMinor(d)
}
