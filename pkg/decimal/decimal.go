// Package decimal provides the exact decimal value used for every price,
// balance and fee in spark.
//
// A Value is coefficient / 10^scale with an unbounded integer coefficient and
// a non-negative scale. Values are immutable: every operation returns a new
// Value. Binary floating point is never involved, neither in construction nor
// in rendering.
package decimal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	sd "github.com/shopspring/decimal"
)

const (
	// WorkingPrecision is the number of fractional digits kept by Div.
	WorkingPrecision = 18

	// MaxDecimals is the largest per-asset decimal count accepted when
	// converting from scaled integers.
	MaxDecimals = 36
)

var (
	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrDivisionByZero      = errors.New("division by zero")
	ErrInvalidDecimals     = errors.New("invalid decimals")
)

// Value is an exact fixed-point decimal number.
// The zero value is 0.
type Value struct {
	d sd.Decimal
}

var (
	Zero = Value{d: sd.New(0, 0)}
	One  = Value{d: sd.New(1, 0)}
)

// wrap keeps the exponent non-positive so Scale() is always >= 0.
func wrap(d sd.Decimal) Value {
	if d.Exponent() > 0 {
		return Value{d: sd.NewFromBigInt(d.BigInt(), 0)}
	}
	return Value{d: d}
}

// New returns coef / 10^scale. Negative scales are treated as 0.
func New(coef int64, scale int) Value {
	if scale < 0 {
		scale = 0
	}
	return Value{d: sd.New(coef, -int32(scale))}
}

// FromScaledInteger returns raw / 10^decimals exactly.
// A nil raw is zero.
func FromScaledInteger(raw *big.Int, decimals int) (Value, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return Value{}, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidDecimals, decimals, MaxDecimals)
	}
	if raw == nil {
		return Zero, nil
	}
	return Value{d: sd.NewFromBigInt(raw, -int32(decimals))}, nil
}

// Parse converts text to a Value. The accepted grammar is
//
//	sign    ::= '+' | '-'
//	digits  ::= { '0' ... '9' }
//	number  ::= [sign] (digits '.' digits | '.' digits | digits '.' | digits)
//
// with at least one digit. Exponents, grouping separators, commas and
// whitespace are rejected with ErrInvalidNumberFormat; callers normalize
// ',' to '.' beforehand. The count of written fractional digits becomes the
// scale of the result.
func Parse(text string) (Value, error) {
	var (
		pos    int
		width  = len(text)
		neg    bool
		intEnd int
		frac   string
	)

	switch {
	case width == 0:
		return Value{}, fmt.Errorf("%w: empty string", ErrInvalidNumberFormat)
	case text[0] == '-':
		neg = true
		pos++
	case text[0] == '+':
		pos++
	}
	start := pos

	for pos < width && text[pos] >= '0' && text[pos] <= '9' {
		pos++
	}
	intEnd = pos

	if pos < width && text[pos] == '.' {
		pos++
		fracStart := pos
		for pos < width && text[pos] >= '0' && text[pos] <= '9' {
			pos++
		}
		frac = text[fracStart:pos]
	}

	if pos != width {
		return Value{}, fmt.Errorf("%w: invalid character %q in %q", ErrInvalidNumberFormat, text[pos], text)
	}
	digits := text[start:intEnd] + frac
	if digits == "" {
		return Value{}, fmt.Errorf("%w: no digits in %q", ErrInvalidNumberFormat, text)
	}

	coef, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidNumberFormat, text)
	}
	if neg {
		coef.Neg(coef)
	}
	return Value{d: sd.NewFromBigInt(coef, -int32(len(frac)))}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("MustParse(%q): %v", text, err))
	}
	return v
}

// Add returns v + e exactly.
func (v Value) Add(e Value) Value { return wrap(v.d.Add(e.d)) }

// Sub returns v - e exactly.
func (v Value) Sub(e Value) Value { return wrap(v.d.Sub(e.d)) }

// Mul returns v × e exactly.
func (v Value) Mul(e Value) Value { return wrap(v.d.Mul(e.d)) }

// Div returns v / e truncated toward zero at WorkingPrecision fractional
// digits. No rounding to nearest happens here: 2/3 is 0.666666666666666666.
func (v Value) Div(e Value) (Value, error) {
	if e.d.IsZero() {
		return Value{}, ErrDivisionByZero
	}
	q, _ := v.d.QuoRem(e.d, WorkingPrecision)
	return wrap(q), nil
}

// Neg returns -v.
func (v Value) Neg() Value { return wrap(v.d.Neg()) }

// Abs returns |v|.
func (v Value) Abs() Value { return wrap(v.d.Abs()) }

// Shift returns v × 10^n exactly. Negative n moves the point left.
func (v Value) Shift(n int) Value { return wrap(v.d.Shift(int32(n))) }

// Truncate drops fractional digits beyond n, toward zero.
func (v Value) Truncate(n int) Value {
	if n < 0 {
		n = 0
	}
	return wrap(v.d.Truncate(int32(n)))
}

// Comparisons use numeric value only, so 1.50 equals 1.5.

func (v Value) Cmp(e Value) int { return v.d.Cmp(e.d) }
func (v Value) Equal(e Value) bool { return v.d.Equal(e.d) }
func (v Value) LessThan(e Value) bool { return v.d.LessThan(e.d) }
func (v Value) LessOrEqual(e Value) bool { return v.d.LessThanOrEqual(e.d) }
func (v Value) GreaterThan(e Value) bool { return v.d.GreaterThan(e.d) }
func (v Value) GreaterOrEqual(e Value) bool { return v.d.GreaterThanOrEqual(e.d) }
func (v Value) IsZero() bool { return v.d.IsZero() }
func (v Value) IsNegative() bool { return v.d.Sign() < 0 }
func (v Value) IsInteger() bool { return v.d.IsInteger() }

// Sign returns -1, 0 or +1.
func (v Value) Sign() int { return v.d.Sign() }

// Scale returns the number of stored fractional digits.
func (v Value) Scale() int {
	if exp := v.d.Exponent(); exp < 0 {
		return int(-exp)
	}
	return 0
}

// Coefficient returns a copy of the unscaled integer.
func (v Value) Coefficient() *big.Int { return v.d.Coefficient() }

// BigInt returns the integer part, truncated toward zero.
func (v Value) BigInt() *big.Int { return v.d.BigInt() }

// ToFixed rounds half away from zero to exactly n fractional digits and pads
// with zeros. For n <= 0 the integer is rendered without a decimal point.
func (v Value) ToFixed(n int) string {
	if n < 0 {
		n = 0
	}
	return v.d.StringFixed(int32(n))
}

// ToSignificant renders v with n significant digits counted from the first
// nonzero digit, rounding half away from zero and trimming trailing zeros.
// Exponential notation is never used.
func (v Value) ToSignificant(n int) string {
	if n < 1 {
		n = 1
	}
	if v.d.IsZero() {
		return "0"
	}
	digits := len(new(big.Int).Abs(v.d.Coefficient()).String())
	// power of ten of the leading digit
	lead := digits - 1 - v.Scale()
	places := n - 1 - lead
	return wrap(v.d.Round(int32(places))).String()
}

// String returns the canonical form: no exponent, trailing fractional zeros
// trimmed. This is the form written to persistent state.
func (v Value) String() string { return v.d.String() }

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Parse.
func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON writes v as a JSON string, never a JSON number.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts only JSON strings; numbers are rejected so floats
// cannot leak into decoded state. null leaves v unchanged.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if !strings.HasPrefix(s, `"`) {
		return fmt.Errorf("%w: expected decimal string, got %s", ErrInvalidNumberFormat, s)
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNumberFormat, err)
	}
	return v.UnmarshalText([]byte(text))
}
