package builtins

import (
	"math"
	"strconv"
	"strings"

	"jscore/pkg/vm"
)

// GlobalsInitializer implements the value properties and functions of the
// global object
type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string {
	return "Globals"
}

func (g *GlobalsInitializer) Priority() int {
	return PriorityGlobals
}

func (g *GlobalsInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	global := ctx.Realm.GlobalObject

	defineConstant(global, "NaN", vm.NaN)
	defineConstant(global, "Infinity", vm.Infinity)
	defineConstant(global, "undefined", vm.Undefined)

	defineMethod(vmInstance, global, "isNaN", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		n, err := vmInstance.ToNumber(argAt(args, 0))
		return vm.BooleanValue(math.IsNaN(n)), err
	})

	defineMethod(vmInstance, global, "isFinite", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		n, err := vmInstance.ToNumber(argAt(args, 0))
		return vm.BooleanValue(!math.IsNaN(n) && !math.IsInf(n, 0)), err
	})

	defineMethod(vmInstance, global, "parseFloat", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(ParseFloat(s)), nil
	})

	defineMethod(vmInstance, global, "parseInt", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		s, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		radix, err := vmInstance.ToNumber(argAt(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(ParseInt(s, vm.ToInt32(radix))), nil
	})

	return nil
}

// ParseFloat parses the longest decimal literal prefix of s after leading
// whitespace. It returns NaN when there is none.
func ParseFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, vm.IsWhitespace)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := func() int {
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		return i - start
	}
	mantissa := digits()
	if i < len(s) && s[i] == '.' {
		i++
		mantissa += digits()
		if mantissa == 0 {
			return math.NaN()
		}
	}
	if mantissa == 0 {
		return math.NaN()
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if digits() > 0 {
			end = i
		}
	}

	// The prefix is a valid literal; overflow still yields ±Inf
	f, _ := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	return f
}

// ParseInt implements the global parseInt. A radix of 0 means 10, or 16
// when the digits carry a 0x prefix.
func ParseInt(s string, radix int32) float64 {
	s = strings.TrimLeftFunc(s, vm.IsWhitespace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	stripPrefix := true
	if radix != 0 {
		if radix < 2 || radix > 36 {
			return math.NaN()
		}
		if radix != 16 {
			stripPrefix = false
		}
	} else {
		radix = 10
	}
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		radix = 16
	}

	end := 0
	for end < len(s) && digitValue(s[end]) < int(radix) {
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	if radix == 10 {
		// Decimal digits round correctly through ParseFloat
		f, _ := strconv.ParseFloat(s[:end], 64)
		return sign * f
	}
	value := 0.0
	for _, c := range []byte(s[:end]) {
		value = value*float64(radix) + float64(digitValue(c))
	}
	return sign * value
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}
