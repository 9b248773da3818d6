package vm

import (
	"math"
	"math/big"
	"strings"
)

// Exact decimal formatting for Number.prototype.toFixed, toPrecision and
// toExponential. All rounding is done on the exact binary value with
// math/big, ties away from zero.

var bigTen = big.NewInt(10)

func pow10Int(n int) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// roundRat rounds a non-negative rational to the nearest integer, ties up.
func roundRat(r *big.Rat) *big.Int {
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	m.Mul(m, big.NewInt(2))
	if m.Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// scaled returns x * 10^shift as an exact rational (shift may be negative).
func scaled(x float64, shift int) *big.Rat {
	r := new(big.Rat).SetFloat64(x)
	if shift >= 0 {
		return r.Mul(r, new(big.Rat).SetInt(pow10Int(shift)))
	}
	return r.Quo(r, new(big.Rat).SetInt(pow10Int(-shift)))
}

// decimalExponent returns e such that 10^e <= x < 10^(e+1), for x > 0.
func decimalExponent(x float64) int {
	e := int(math.Floor(math.Log10(x)))
	r := new(big.Rat).SetFloat64(x)
	for scaledCmp(r, e) < 0 {
		e--
	}
	for scaledCmp(r, e+1) >= 0 {
		e++
	}
	return e
}

// scaledCmp compares r with 10^e.
func scaledCmp(r *big.Rat, e int) int {
	p := new(big.Rat)
	if e >= 0 {
		p.SetInt(pow10Int(e))
	} else {
		p.SetFrac(big.NewInt(1), pow10Int(-e))
	}
	return r.Cmp(p)
}

// significantDigits returns exactly p digits of x (x > 0) rounded, and the
// decimal exponent of the leading digit.
func significantDigits(x float64, p int) (string, int) {
	e := decimalExponent(x)
	n := roundRat(scaled(x, p-1-e))
	if n.Cmp(pow10Int(p)) >= 0 {
		e++
		n = roundRat(scaled(x, p-1-e))
	}
	return n.String(), e
}

func nonFinite(x float64) (string, bool) {
	switch {
	case math.IsNaN(x):
		return "NaN", true
	case math.IsInf(x, 1):
		return "Infinity", true
	case math.IsInf(x, -1):
		return "-Infinity", true
	}
	return "", false
}

// FormatFixed renders x with d digits after the decimal point.
func FormatFixed(x float64, d int) string {
	if s, ok := nonFinite(x); ok {
		return s
	}
	if math.Abs(x) >= 1e21 {
		return numberToString(x)
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	s := roundRat(scaled(x, d)).String()
	if d == 0 {
		return sign + s
	}
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	return sign + s[:len(s)-d] + "." + s[len(s)-d:]
}

// FormatPrecision renders x with p significant digits.
func FormatPrecision(x float64, p int) string {
	if s, ok := nonFinite(x); ok {
		return s
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	var digits string
	var e int
	if x == 0 {
		// Zero keeps all p digits in the integer part.
		digits, e = strings.Repeat("0", p), p-1
	} else {
		digits, e = significantDigits(x, p)
	}
	if x != 0 && (e < -6 || e >= p) {
		return sign + formatExponent(digits, e)
	}
	switch {
	case e >= 0:
		if e+1 >= p {
			return sign + digits
		}
		return sign + digits[:e+1] + "." + digits[e+1:]
	default:
		return sign + "0." + strings.Repeat("0", -(e+1)) + digits
	}
}

// FormatExponential renders x in exponential notation with d fraction
// digits, or with the shortest round-trip digits when hasDigits is false.
func FormatExponential(x float64, d int, hasDigits bool) string {
	if s, ok := nonFinite(x); ok {
		return s
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	var digits string
	var e int
	switch {
	case x == 0:
		digits, e = strings.Repeat("0", d+1), 0
		if !hasDigits {
			digits = "0"
		}
	case !hasDigits:
		var n int
		digits, n = shortestDigits(x)
		e = n - 1
	default:
		digits, e = significantDigits(x, d+1)
	}
	return sign + formatExponent(digits, e)
}

// ToFixed validates the digit count and formats x.
func (vm *VM) ToFixed(x float64, d float64) (string, error) {
	d = ToInteger(d)
	if d < 0 || d > 20 {
		return "", vm.NewRangeError("toFixed() digits argument must be between 0 and 20")
	}
	return FormatFixed(x, int(d)), nil
}

// ToPrecision validates the precision and formats x.
func (vm *VM) ToPrecision(x float64, p float64) (string, error) {
	if s, ok := nonFinite(x); ok {
		return s, nil
	}
	p = ToInteger(p)
	if p < 1 || p > 21 {
		return "", vm.NewRangeError("toPrecision() argument must be between 1 and 21")
	}
	return FormatPrecision(x, int(p)), nil
}

// ToExponential validates the digit count and formats x.
func (vm *VM) ToExponential(x float64, d float64, hasDigits bool) (string, error) {
	if s, ok := nonFinite(x); ok {
		return s, nil
	}
	d = ToInteger(d)
	if hasDigits && (d < 0 || d > 20) {
		return "", vm.NewRangeError("toExponential() argument must be between 0 and 20")
	}
	return FormatExponential(x, int(d), hasDigits), nil
}
