package builtins

import (
	"math"
	"testing"

	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

func TestNumberPrototypeFormatting(t *testing.T) {
	machine := newRealmVM(t)
	tests := []struct {
		x      float64
		method string
		args   []vm.Value
		want   string
	}{
		{255, "toString", nil, "255"},
		{255, "toString", []vm.Value{num(16)}, "ff"},
		{255, "toString", []vm.Value{num(2)}, "11111111"},
		{-255, "toString", []vm.Value{num(36)}, "-73"},
		{123.456, "toFixed", []vm.Value{num(2)}, "123.46"},
		{2.5, "toFixed", []vm.Value{num(0)}, "3"},
		{1.005, "toFixed", []vm.Value{num(2)}, "1.00"},
		{1e21, "toFixed", []vm.Value{num(2)}, "1e+21"},
		{123.456, "toPrecision", []vm.Value{num(4)}, "123.5"},
		{123.456, "toPrecision", nil, "123.456"},
		{123456, "toExponential", nil, "1.23456e+5"},
		{123456, "toExponential", []vm.Value{num(2)}, "1.23e+5"},
		{0.00015, "toExponential", []vm.Value{num(1)}, "1.5e-4"},
		{12, "toLocaleString", nil, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			expectString(t, mustInvoke(t, machine, num(tt.x), tt.method, tt.args...), tt.want)
		})
	}
}

func TestNumberPrototypeRangeErrors(t *testing.T) {
	machine := newRealmVM(t)
	tests := []struct {
		method string
		arg    float64
	}{
		{"toString", 1},
		{"toString", 37},
		{"toFixed", 101},
		{"toFixed", -1},
		{"toPrecision", 0},
		{"toPrecision", 101},
		{"toExponential", 101},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			_, err := machine.Invoke(num(1), tt.method, num(tt.arg))
			expectKind(t, err, errors.KindRangeError)
		})
	}
}

func TestNumberConstructor(t *testing.T) {
	machine := newRealmVM(t)

	expectNumber(t, mustCall(t, machine, "Number", str("  12 ")), 12)
	expectNumber(t, mustCall(t, machine, "Number"), 0)
	expectNumber(t, mustCall(t, machine, "Number", str("0x10")), 16)
	expectNumber(t, mustCall(t, machine, "Number", str("abc")), math.NaN())

	boxed := mustConstruct(t, machine, "Number", num(5))
	if boxed.AsObject() == nil || boxed.AsObject().Class() != vm.ClassNumber {
		t.Fatalf("new Number(5) = %s", boxed.Inspect())
	}
	expectNumber(t, mustInvoke(t, machine, boxed, "valueOf"), 5)
	expectString(t, mustInvoke(t, machine, boxed, "toFixed", num(1)), "5.0")

	_, err := callPath(machine, "Number.prototype.valueOf.call", str("5"))
	expectKind(t, err, errors.KindTypeError)

	expectNumber(t, lookup(t, machine, "Number.MAX_VALUE"), math.MaxFloat64)
	expectNumber(t, lookup(t, machine, "Number.MIN_VALUE"), 5e-324)
	expectNumber(t, lookup(t, machine, "Number.NEGATIVE_INFINITY"), math.Inf(-1))
	expectNumber(t, lookup(t, machine, "Number.NaN"), math.NaN())
}

func TestNumberPredicates(t *testing.T) {
	machine := newRealmVM(t)
	tests := []struct {
		fn   string
		arg  vm.Value
		want bool
	}{
		{"Number.isNaN", num(math.NaN()), true},
		{"Number.isNaN", str("NaN"), false},
		{"isNaN", str("NaN"), true},
		{"isNaN", str("12"), false},
		{"Number.isFinite", num(1), true},
		{"Number.isFinite", str("1"), false},
		{"Number.isFinite", num(math.Inf(1)), false},
		{"isFinite", str("1"), true},
		{"isFinite", num(math.NaN()), false},
	}
	for _, tt := range tests {
		t.Run(tt.fn, func(t *testing.T) {
			got := mustCall(t, machine, tt.fn, tt.arg)
			if !got.IsBoolean() || got.AsBoolean() != tt.want {
				t.Errorf("%s(%s) = %s, want %v", tt.fn, tt.arg.Inspect(), got.Inspect(), tt.want)
			}
		})
	}
}

func TestBoolean(t *testing.T) {
	machine := newRealmVM(t)

	if v := mustCall(t, machine, "Boolean", str("")); !v.IsBoolean() || v.AsBoolean() {
		t.Errorf("Boolean('') = %s", v.Inspect())
	}
	if v := mustCall(t, machine, "Boolean", vm.ObjectValue(machine.NewPlainObject())); !v.AsBoolean() {
		t.Errorf("Boolean({}) = %s", v.Inspect())
	}

	boxed := mustConstruct(t, machine, "Boolean", vm.False)
	if boxed.AsObject() == nil || boxed.AsObject().Class() != vm.ClassBoolean {
		t.Fatalf("new Boolean(false) = %s", boxed.Inspect())
	}
	// The wrapper is an object, so it is truthy
	if !boxed.ToBoolean() {
		t.Error("new Boolean(false) should be truthy")
	}
	expectString(t, mustInvoke(t, machine, boxed, "toString"), "false")
	if v := mustInvoke(t, machine, boxed, "valueOf"); !v.IsBoolean() || v.AsBoolean() {
		t.Errorf("valueOf = %s", v.Inspect())
	}

	_, err := callPath(machine, "Boolean.prototype.toString.call", num(1))
	expectKind(t, err, errors.KindTypeError)
}
