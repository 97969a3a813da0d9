// Package fixedpoint implements the 18-decimal fixed-point arithmetic used
// for weights, indexes and reward amounts. Values are *big.Int holding the
// real value scaled by 10^18; Unit represents 1.0.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits carried by every value.
const Decimals = 18

// SecondsPerDay is the length of one emission day.
const SecondsPerDay = 86400

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// Unit returns a fresh copy of 1.0 (10^18).
func Unit() *big.Int { return new(big.Int).Set(unit) }

// Zero returns a fresh zero value.
func Zero() *big.Int { return new(big.Int) }

// IsUnit reports whether x equals exactly one unit.
func IsUnit(x *big.Int) bool { return x != nil && x.Cmp(unit) == 0 }

// FromInt returns n whole units.
func FromInt(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), unit)
}

// Mul returns a*b/10^18, truncated toward zero.
func Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Quo(r, unit)
}

// Div returns a*10^18/b, truncated toward zero. A zero denominator yields
// zero rather than a panic.
func Div(a, b *big.Int) *big.Int {
	if b == nil || b.Sign() == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Mul(a, unit)
	return r.Quo(r, b)
}

// MulDiv returns a*b/c truncated toward zero, or zero when c is zero.
func MulDiv(a, b, c *big.Int) *big.Int {
	if c == nil || c.Sign() == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Mul(a, b)
	return r.Quo(r, c)
}

// FromNative rescales an amount expressed with the given number of decimals
// to the 18-decimal representation. Precision beyond 18 digits is truncated.
func FromNative(amount *big.Int, decimals uint8) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	switch {
	case decimals == Decimals:
		return new(big.Int).Set(amount)
	case decimals < Decimals:
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(Decimals-decimals)), nil)
		return new(big.Int).Mul(amount, scale)
	default:
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-Decimals)), nil)
		return new(big.Int).Quo(amount, scale)
	}
}

// Parse converts a human decimal string such as "0.6" into its fixed-point
// value. More than 18 fractional digits is rejected instead of rounded.
func Parse(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDecimal, s, err)
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q", ErrTooPrecise, s)
	}
	return scaled.BigInt(), nil
}

// MustParse is Parse for constants and tests; it panics on error.
func MustParse(s string) *big.Int {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Format renders x as a decimal string with trailing zeros removed.
func Format(x *big.Int) string {
	if x == nil {
		return "0"
	}
	return decimal.NewFromBigInt(x, -Decimals).String()
}

// Encode serializes x for storage as big-endian magnitude bytes. Zero is a
// single zero byte so stored values are never empty. Negative values are
// not representable.
func Encode(x *big.Int) []byte {
	if x == nil || x.Sign() == 0 {
		return []byte{0}
	}
	return x.Bytes()
}

// Decode is the inverse of Encode. Empty input decodes to zero.
func Decode(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// ParseInt parses a base-10 integer already in fixed-point form.
func ParseInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEncoding, s)
	}
	return v, nil
}

// RequireNonNegative returns ErrNegative when x is below zero.
func RequireNonNegative(x *big.Int) error {
	if x != nil && x.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrNegative, x)
	}
	return nil
}
