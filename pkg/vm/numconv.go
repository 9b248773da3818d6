package vm

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// numberToString renders f the way the Number-to-String conversion does:
// the shortest digit string that round-trips, in plain notation for
// exponents in [-6, 21) and exponential notation otherwise.
func numberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		return "0"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f < 0:
		return "-" + numberToString(-f)
	}

	digits, n := shortestDigits(f)
	k := len(digits)
	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}
	return formatExponent(digits, n-1)
}

// shortestDigits returns the significant digits of f (f > 0) and the decimal
// exponent n such that f = 0.digits * 10^n.
func shortestDigits(f float64) (string, int) {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	e, _ := strconv.Atoi(exp)
	digits := strings.Replace(mant, ".", "", 1)
	digits = strings.TrimRight(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return digits, e + 1
}

// formatExponent renders d.ddd e±x from a digit string and its exponent.
func formatExponent(digits string, e int) string {
	var b strings.Builder
	b.WriteByte(digits[0])
	if len(digits) > 1 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	b.WriteByte('e')
	if e >= 0 {
		b.WriteByte('+')
	} else {
		b.WriteByte('-')
		e = -e
	}
	b.WriteString(strconv.Itoa(e))
	return b.String()
}

// IsWhitespace reports whether r is white space or a line terminator in
// the script grammar.
func IsWhitespace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', '\u00A0', '\uFEFF':
		return true
	case '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// parseStringToNumber implements ToNumber applied to the String type.
func parseStringToNumber(s string) float64 {
	s = strings.TrimFunc(s, IsWhitespace)
	if s == "" {
		return 0
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digits := s[2:]
		if strings.TrimLeft(digits, "0123456789abcdefABCDEF") != "" {
			return math.NaN()
		}
		n, ok := new(big.Int).SetString(digits, 16)
		if !ok {
			return math.NaN()
		}
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if !isDecimalLiteral(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// isDecimalLiteral matches StrDecimalLiteral: [+-] (digits [. digits] | . digits) [e [+-] digits].
// strconv.ParseFloat alone accepts forms such as "inf", "0x1p3" and underscores.
func isDecimalLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			fracDigits++
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(s)
}

// FormatRadix renders f in the given radix (2..36).
func FormatRadix(f float64, radix int) string { return numberToRadixString(f, radix) }

// numberToRadixString renders f in the given radix (2..36).
func numberToRadixString(f float64, radix int) string {
	if radix == 10 || math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return numberToString(f)
	}
	neg := f < 0
	if neg {
		f = -f
	}
	intPart := math.Floor(f)
	frac := f - intPart

	var s string
	if intPart < 1<<53 {
		s = strconv.FormatInt(int64(intPart), radix)
	} else {
		bi, _ := new(big.Float).SetFloat64(intPart).Int(nil)
		s = bi.Text(radix)
	}
	if frac > 0 {
		var b strings.Builder
		b.WriteString(s)
		b.WriteByte('.')
		for i := 0; i < 52 && frac > 0; i++ {
			frac *= float64(radix)
			d := int(frac)
			frac -= float64(d)
			b.WriteByte(strconv.FormatInt(int64(d), radix)[0])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// arrayIndex reports whether name is a canonical array index
// (an integer in [0, 2^32-2] with no leading zeros).
func arrayIndex(name string) (uint32, bool) {
	if name == "" || len(name) > 10 {
		return 0, false
	}
	if name[0] == '0' && len(name) > 1 {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
	}
	if n >= math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

// IndexKey renders an index as a property name.
func IndexKey(i uint32) string {
	return strconv.FormatUint(uint64(i), 10)
}
