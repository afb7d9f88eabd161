// Package amount converts between human readable decimal strings and
// integer base units of a token with a fixed number of decimals.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidFormat     = errors.New("invalid amount format")
	ErrPrecisionExceeded = errors.New("too many decimal places")
	ErrOutOfRange        = errors.New("amount out of range")
	ErrNegative          = errors.New("amount must not be negative")
)

var decimalRegexp = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Amount is a non-negative quantity of base units.
// The zero value is a valid zero amount.
type Amount struct {
	i sdkmath.Int
}

func Zero() Amount {
	return Amount{sdkmath.ZeroInt()}
}

func FromUint64(v uint64) Amount {
	return Amount{sdkmath.NewIntFromUint64(v)}
}

// FromInt wraps i, rejecting negative values.
func FromInt(i sdkmath.Int) (Amount, error) {
	if i.IsNil() {
		return Zero(), nil
	}
	if i.IsNegative() {
		return Amount{}, ErrNegative
	}
	return Amount{i}, nil
}

// FromBaseUnits parses a plain base-10 integer of base units, the shape
// used to persist amounts.
func FromBaseUnits(s string) (Amount, error) {
	return parseInt(strings.TrimSpace(s))
}

// Parse converts a decimal string like "12.5" into base units for a token
// with the given decimals. Surrounding whitespace is ignored. Signs,
// exponents, separators and a leading or trailing dot are rejected, as is
// a fractional part longer than decimals.
func Parse(s string, decimals uint32) (Amount, error) {
	s = strings.TrimSpace(s)
	if !decimalRegexp.MatchString(s) {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > int(decimals) {
		return Amount{}, fmt.Errorf(
			"%w: %q has %d, max is %d", ErrPrecisionExceeded, s, len(frac), decimals,
		)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	return parseInt(whole + frac)
}

// Format renders a as a decimal string with trailing fractional zeros and
// any trailing dot removed.
func Format(a Amount, decimals uint32) string {
	digits := a.Int().String()
	if decimals == 0 {
		return digits
	}

	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}

	whole := digits[:len(digits)-d]
	frac := strings.TrimRight(digits[len(digits)-d:], "0")
	if len(frac) == 0 {
		return whole
	}
	return whole + "." + frac
}

// Int returns the underlying base units.
func (a Amount) Int() sdkmath.Int {
	if a.i.IsNil() {
		return sdkmath.ZeroInt()
	}
	return a.i
}

func (a Amount) BigInt() *big.Int {
	return a.Int().BigInt()
}

func (a Amount) IsZero() bool {
	return a.Int().IsZero()
}

func (a Amount) IsPositive() bool {
	return a.Int().IsPositive()
}

func (a Amount) Cmp(b Amount) int {
	return a.BigInt().Cmp(b.BigInt())
}

func (a Amount) Equal(b Amount) bool {
	return a.Int().Equal(b.Int())
}

func (a Amount) Add(b Amount) Amount {
	return Amount{a.Int().Add(b.Int())}
}

// Sub returns a-b, failing if the result would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrNegative, a, b)
	}
	return Amount{a.Int().Sub(b.Int())}, nil
}

// Decimal returns a in whole token units.
func (a Amount) Decimal(decimals uint32) decimal.Decimal {
	return decimal.NewFromBigInt(a.BigInt(), -int32(decimals))
}

// String returns the base units in base 10.
func (a Amount) String() string {
	return a.Int().String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(buf []byte) error {
	s := strings.Trim(string(buf), `"`)
	if s == "" || s == "null" {
		*a = Zero()
		return nil
	}
	v, err := FromBaseUnits(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func parseInt(digits string) (Amount, error) {
	b, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidFormat, digits)
	}
	if b.Sign() < 0 {
		return Amount{}, ErrNegative
	}
	if b.BitLen() > sdkmath.MaxBitLen {
		return Amount{}, fmt.Errorf("%w: %s", ErrOutOfRange, digits)
	}
	return Amount{sdkmath.NewIntFromBigInt(b)}, nil
}
