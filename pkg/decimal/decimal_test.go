package decimal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		scale int
	}{
		{"0", "0", 0},
		{"1", "1", 0},
		{"-1", "-1", 0},
		{"+2.5", "2.5", 1},
		{"1.50", "1.5", 2},
		{".5", "0.5", 1},
		{"5.", "5", 0},
		{"000123.4500", "123.45", 4},
		{"-0.000000000000000001", "-0.000000000000000001", 18},
		{"123456789012345678901234567890.123456789", "123456789012345678901234567890.123456789", 9},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := v.Scale(); got != tt.scale {
				t.Errorf("Scale() = %d, want %d", got, tt.scale)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"", "-", "+", ".", "-.", "1.2.3", "1,5", "1e5", "1E-2", " 1", "1 ",
		"abc", "12a", "0x10", "1_000", "--1", "+-1", "١",
	}

	for _, in := range inputs {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			_, err := Parse(in)
			if !errors.Is(err, ErrInvalidNumberFormat) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidNumberFormat", in, err)
			}
		})
	}
}

func TestFromScaledInteger(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1500000000000000000", 10)
	huge, _ := new(big.Int).SetString("123456789012345678901234567890123456789", 10)

	tests := []struct {
		name     string
		raw      *big.Int
		decimals int
		want     string
	}{
		{"eth", oneEth, 18, "1.5"},
		{"usdc", big.NewInt(100000001), 6, "100.000001"},
		{"zero decimals", big.NewInt(42), 0, "42"},
		{"negative", big.NewInt(-5), 2, "-0.05"},
		{"max decimals", huge, 36, "123.456789012345678901234567890123456789"},
		{"nil raw", nil, 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromScaledInteger(tt.raw, tt.decimals)
			if err != nil {
				t.Fatalf("FromScaledInteger failed: %v", err)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}

	for _, d := range []int{-1, 37, 100} {
		if _, err := FromScaledInteger(big.NewInt(1), d); !errors.Is(err, ErrInvalidDecimals) {
			t.Errorf("decimals=%d: error = %v, want ErrInvalidDecimals", d, err)
		}
	}
}

func TestFromScaledInteger_DoesNotAlias(t *testing.T) {
	raw := big.NewInt(12345)
	v, err := FromScaledInteger(raw, 2)
	if err != nil {
		t.Fatal(err)
	}
	raw.SetInt64(1)
	if got := v.String(); got != "123.45" {
		t.Errorf("value changed with caller's big.Int: %q", got)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		a, b          string
		add, sub, mul string
	}{
		{"0.1", "0.2", "0.3", "-0.1", "0.02"},
		{"1.5", "-2.25", "-0.75", "3.75", "-3.375"},
		{"100.000001", "0.000001", "100.000002", "100", "0.000100000001"},
		{"0.000000000000000001", "0.000000000000000001", "0.000000000000000002", "0", "0.000000000000000000000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := a.Add(b).String(); got != tt.add {
				t.Errorf("Add = %s, want %s", got, tt.add)
			}
			if got := a.Sub(b).String(); got != tt.sub {
				t.Errorf("Sub = %s, want %s", got, tt.sub)
			}
			if got := a.Mul(b).String(); got != tt.mul {
				t.Errorf("Mul = %s, want %s", got, tt.mul)
			}
		})
	}
}

func TestImmutability(t *testing.T) {
	a := MustParse("1.25")
	b := MustParse("2")
	_ = a.Add(b)
	_ = a.Mul(b)
	_ = a.Neg()
	_, _ = a.Div(b)
	if a.String() != "1.25" || b.String() != "2" {
		t.Errorf("operands changed: a=%s b=%s", a, b)
	}
	if !Zero.IsZero() || !One.Equal(New(1, 0)) {
		t.Errorf("shared constants changed: Zero=%s One=%s", Zero, One)
	}
}

func TestDiv_TruncatesTowardZero(t *testing.T) {
	tests := []struct {
		a, b  string
		want  string
		fixed string
	}{
		// truncated internally, then ToFixed(5) rounds the truncated value
		{"1", "3", "0.333333333333333333", "0.33333"},
		{"2", "3", "0.666666666666666666", "0.66667"},
		{"-2", "3", "-0.666666666666666666", "-0.66667"},
		{"1", "-3", "-0.333333333333333333", "-0.33333"},
		{"10", "4", "2.5", "2.50000"},
		{"0.000000000000000001", "2", "0", "0.00000"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			q, err := MustParse(tt.a).Div(MustParse(tt.b))
			if err != nil {
				t.Fatalf("Div failed: %v", err)
			}
			if got := q.String(); got != tt.want {
				t.Errorf("quotient = %s, want %s", got, tt.want)
			}
			if got := q.ToFixed(5); got != tt.fixed {
				t.Errorf("ToFixed(5) = %s, want %s", got, tt.fixed)
			}
		})
	}
}

func TestDiv_ByZero(t *testing.T) {
	for _, zero := range []Value{Zero, MustParse("0.000"), {}} {
		if _, err := One.Div(zero); !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("Div(%s) error = %v, want ErrDivisionByZero", zero, err)
		}
	}
}

func TestCompare_IgnoresTrailingZeros(t *testing.T) {
	a := MustParse("1.5")
	b := MustParse("1.50000")
	c := MustParse("1.5000001")

	if !a.Equal(b) || a.Cmp(b) != 0 {
		t.Errorf("1.5 and 1.50000 should be equal")
	}
	if !a.LessThan(c) || !a.LessOrEqual(b) || !c.GreaterThan(b) || !b.GreaterOrEqual(a) {
		t.Errorf("ordering broken for %s, %s, %s", a, b, c)
	}
	if MustParse("-0.1").GreaterThan(Zero) {
		t.Errorf("-0.1 > 0")
	}
}

func TestSign(t *testing.T) {
	tests := []struct {
		in   string
		sign int
	}{
		{"-3", -1},
		{"0", 0},
		{"-0.00", 0},
		{"0.0001", 1},
	}
	for _, tt := range tests {
		v := MustParse(tt.in)
		if v.Sign() != tt.sign {
			t.Errorf("Sign(%s) = %d, want %d", tt.in, v.Sign(), tt.sign)
		}
		if v.IsZero() != (tt.sign == 0) {
			t.Errorf("IsZero(%s) = %v", tt.in, v.IsZero())
		}
		if v.IsNegative() != (tt.sign < 0) {
			t.Errorf("IsNegative(%s) = %v", tt.in, v.IsNegative())
		}
	}
	var zero Value
	if !zero.IsZero() || zero.String() != "0" {
		t.Errorf("zero value = %q", zero.String())
	}
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"1.005", 2, "1.01"},
		{"-1.005", 2, "-1.01"},
		{"1.004", 2, "1.00"},
		{"2.5", 0, "3"},
		{"-2.5", 0, "-3"},
		{"2.4", 0, "2"},
		{"1", 3, "1.000"},
		{"0.0000001234", 10, "0.0000001234"},
		{"-0.001", 2, "0.00"},
		{"999.995", 2, "1000.00"},
		{"1.5", -1, "2"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d", tt.in, tt.n), func(t *testing.T) {
			if got := MustParse(tt.in).ToFixed(tt.n); got != tt.want {
				t.Errorf("ToFixed(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

// referenceFixed rounds s half away from zero using big.Rat arithmetic.
func referenceFixed(s string, k int) string {
	r, _ := new(big.Rat).SetString(s)
	neg := r.Sign() < 0
	r.Abs(r)
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(k)), nil)))

	q, rem := new(big.Int).QuoRem(scaled.Num(), scaled.Denom(), new(big.Int))
	if new(big.Int).Lsh(rem, 1).Cmp(scaled.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	digits := q.String()
	if k > 0 {
		if len(digits) <= k {
			digits = strings.Repeat("0", k-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-k] + "." + digits[len(digits)-k:]
	}
	if neg && q.Sign() != 0 {
		digits = "-" + digits
	}
	return digits
}

func TestToFixed_MatchesExactRounding(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randDigits := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(byte('0' + rng.Intn(10)))
		}
		return b.String()
	}

	for i := 0; i < 500; i++ {
		s := randDigits(1+rng.Intn(12)) + "." + randDigits(1+rng.Intn(18))
		if rng.Intn(2) == 0 {
			s = "-" + s
		}
		v := MustParse(s)
		for k := 0; k <= 18; k++ {
			want := referenceFixed(s, k)
			if got := v.ToFixed(k); got != want {
				t.Fatalf("Parse(%q).ToFixed(%d) = %q, want %q", s, k, got, want)
			}
		}
	}
}

func TestToSignificant(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"1234.5678", 6, "1234.57"},
		{"1234.5678", 2, "1200"},
		{"0.00012345", 3, "0.000123"},
		{"0.00012355", 4, "0.0001236"},
		{"1.5000", 5, "1.5"},
		{"9.99", 2, "10"},
		{"-0.045", 1, "-0.05"},
		{"123456789", 3, "123000000"},
		{"0", 4, "0"},
		{"42", 0, "40"},
		{"0.1", 18, "0.1"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%d", tt.in, tt.n), func(t *testing.T) {
			got := MustParse(tt.in).ToSignificant(tt.n)
			if got != tt.want {
				t.Errorf("ToSignificant(%d) = %q, want %q", tt.n, got, tt.want)
			}
			if strings.ContainsAny(got, "eE") {
				t.Errorf("exponential notation in %q", got)
			}
		})
	}
}

func TestShiftTruncate(t *testing.T) {
	v := MustParse("1.23456")
	if got := v.Shift(3).String(); got != "1234.56" {
		t.Errorf("Shift(3) = %s", got)
	}
	if got := v.Shift(-2).String(); got != "0.0123456" {
		t.Errorf("Shift(-2) = %s", got)
	}
	if got := MustParse("5").Shift(4); got.String() != "50000" || got.Scale() != 0 {
		t.Errorf("Shift(4) = %s scale %d", got, got.Scale())
	}
	if got := v.Truncate(2).String(); got != "1.23" {
		t.Errorf("Truncate(2) = %s", got)
	}
	if got := MustParse("-1.99").Truncate(0).String(); got != "-1" {
		t.Errorf("Truncate toward zero = %s", got)
	}
	if got := MustParse("-7.9").BigInt().String(); got != "-7" {
		t.Errorf("BigInt = %s", got)
	}
}

func TestJSON(t *testing.T) {
	type doc struct {
		Price Value `json:"price"`
	}

	data, err := json.Marshal(doc{Price: MustParse("100.000001")})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"price":"100.000001"}` {
		t.Errorf("Marshal = %s", data)
	}

	var out doc
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !out.Price.Equal(MustParse("100.000001")) {
		t.Errorf("round trip = %s", out.Price)
	}

	if err := json.Unmarshal([]byte(`{"price":1.5}`), &out); !errors.Is(err, ErrInvalidNumberFormat) {
		t.Errorf("JSON number error = %v, want ErrInvalidNumberFormat", err)
	}
	if err := json.Unmarshal([]byte(`{"price":"1e3"}`), &out); !errors.Is(err, ErrInvalidNumberFormat) {
		t.Errorf("exponent string error = %v, want ErrInvalidNumberFormat", err)
	}
}
