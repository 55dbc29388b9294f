// Package format renders decimal values as display strings.
//
// Ordinary magnitudes use significant-digit notation. Magnitudes below
// Threshold use subscript notation, where the run of leading fractional
// zeros is written as a small subscript count: 0.0000001234 → 0.0₅01234.
package format

import (
	"strings"

	"github.com/uhyunpark/spark/params"
	"github.com/uhyunpark/spark/pkg/decimal"
)

const (
	DefaultPrecision = 10
	DefaultDigits    = 6
)

// DefaultThreshold is 1e-6: values strictly below it by absolute value are
// rendered in subscript notation.
var DefaultThreshold = decimal.New(1, 6)

var subscriptDigits = [10]rune{'₀', '₁', '₂', '₃', '₄', '₅', '₆', '₇', '₈', '₉'}

type Formatter struct {
	Threshold decimal.Value
	Precision int
	Digits    int

	stable map[string]struct{}
}

// New builds a Formatter from config. Zero fields fall back to defaults.
func New(cfg params.Format) *Formatter {
	f := &Formatter{
		Threshold: DefaultThreshold,
		Precision: cfg.Precision,
		Digits:    cfg.Digits,
		stable:    make(map[string]struct{}, len(cfg.StableSymbols)),
	}
	if f.Precision <= 0 {
		f.Precision = DefaultPrecision
	}
	if f.Digits <= 0 {
		f.Digits = DefaultDigits
	}
	for _, sym := range cfg.StableSymbols {
		f.stable[strings.ToUpper(sym)] = struct{}{}
	}
	return f
}

// Default returns a Formatter using params.Default().Format.
func Default() *Formatter {
	return New(params.Default().Format)
}

// Parts is the decomposed subscript rendering of a small value.
type Parts struct {
	Int string
	// Zeros is the subscript count. It is one less than the index of the
	// first nonzero fractional digit, and Tail starts at that same index, so
	// one zero stays visible in the tail.
	Zeros int
	Tail  string
	// Collapsed is set when no nonzero digit exists within Precision
	// fractional digits; the value displays as zero.
	Collapsed bool
}

func (p Parts) String() string {
	if p.Collapsed {
		return p.Int + ".0"
	}
	return p.Int + ".0" + Subscript(p.Zeros) + p.Tail
}

// Subscript writes n using Unicode subscript digits.
func Subscript(n int) string {
	if n < 0 {
		n = 0
	}
	var digits []rune
	for {
		digits = append(digits, subscriptDigits[n%10])
		n /= 10
		if n == 0 {
			break
		}
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// IsSmall reports whether v renders in subscript notation.
func (f *Formatter) IsSmall(v decimal.Value) bool {
	return v.Abs().LessThan(f.Threshold)
}

// Small decomposes v.ToFixed(Precision) into subscript parts. It does not
// check the threshold; Price does.
func (f *Formatter) Small(v decimal.Value) Parts {
	s := v.ToFixed(f.Precision)
	intPart, fracPart, _ := strings.Cut(s, ".")

	first := strings.IndexFunc(fracPart, func(r rune) bool { return r != '0' })
	if first < 0 {
		return Parts{Int: intPart, Collapsed: true}
	}
	zeros := max(first-1, 0)
	return Parts{
		Int:   intPart,
		Zeros: zeros,
		Tail:  fracPart[zeros:],
	}
}

// Price renders v for display with the given significant digits. digits <= 0
// uses the formatter's default.
func (f *Formatter) Price(v decimal.Value, digits int) string {
	if digits <= 0 {
		digits = f.Digits
	}
	if f.IsSmall(v) {
		return f.Small(v).String()
	}
	return v.ToSignificant(digits)
}

// Fixed renders v with exactly n fractional digits.
func (f *Formatter) Fixed(v decimal.Value, n int) string {
	return v.ToFixed(n)
}

// IsStable reports whether symbol is rendered with a "$" prefix.
func (f *Formatter) IsStable(symbol string) bool {
	_, ok := f.stable[strings.ToUpper(symbol)]
	return ok
}

// WithSymbol places the unit marker: "$" prefix for stable symbols,
// " SYMBOL" suffix otherwise.
func (f *Formatter) WithSymbol(text, symbol string) string {
	switch {
	case symbol == "":
		return text
	case f.IsStable(symbol):
		return "$" + text
	default:
		return text + " " + symbol
	}
}

// Amount renders v with its unit marker.
func (f *Formatter) Amount(v decimal.Value, symbol string, digits int) string {
	return f.WithSymbol(f.Price(v, digits), symbol)
}
