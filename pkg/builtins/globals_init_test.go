package builtins

import (
	"math"
	"testing"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		in    string
		radix int32
		want  float64
	}{
		{"42px", 0, 42},
		{"  -7", 0, -7},
		{"+15", 10, 15},
		{"0x1A", 0, 26},
		{"0X1a", 16, 26},
		{"ff", 16, 255},
		{"0x1A", 10, 0},
		{"101", 2, 5},
		{"z", 36, 35},
		{"12", 1, math.NaN()},
		{"12", 37, math.NaN()},
		{"", 0, math.NaN()},
		{"-", 0, math.NaN()},
		{"0x", 0, math.NaN()},
		{"9", 8, math.NaN()},
		{"123456789012345678901234567890", 10, 1.2345678901234568e29},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseInt(tt.in, tt.radix)
			if math.IsNaN(tt.want) {
				if !math.IsNaN(got) {
					t.Errorf("ParseInt(%q, %d) = %v, want NaN", tt.in, tt.radix, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseInt(%q, %d) = %v, want %v", tt.in, tt.radix, got, tt.want)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3.14abc", 3.14},
		{".5", 0.5},
		{"5.", 5},
		{"-.5e3x", -500},
		{"1e", 1},
		{"1e+", 1},
		{"+7", 7},
		{"  12", 12},
		{" \n8", 8},
		{"Infinityx", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e1000", math.Inf(1)},
		{"abc", math.NaN()},
		{".", math.NaN()},
		{"", math.NaN()},
		{"0x10", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseFloat(tt.in)
			if math.IsNaN(tt.want) {
				if !math.IsNaN(got) {
					t.Errorf("ParseFloat(%q) = %v, want NaN", tt.in, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGlobalFunctions(t *testing.T) {
	machine := newRealmVM(t)

	expectNumber(t, mustCall(t, machine, "parseInt", str("0x10")), 16)
	expectNumber(t, mustCall(t, machine, "parseInt", str("10"), num(2)), 2)
	expectNumber(t, mustCall(t, machine, "parseFloat", str("2.5e1kg")), 25)

	for _, name := range []string{"NaN", "Infinity", "undefined"} {
		d, ok := machine.GetOwnProperty(machine.GlobalObject(), name)
		if !ok {
			t.Fatalf("%s is not defined", name)
		}
		if d.Writable || d.Enumerable || d.Configurable {
			t.Errorf("%s attributes = %+v, want read-only", name, d)
		}
	}
	if v, _ := machine.GetGlobal("undefined"); !v.IsUndefined() {
		t.Errorf("undefined = %s", v.Inspect())
	}
	// Writing a read-only global is a silent no-op outside strict mode
	if err := machine.Put(machine.GlobalObject(), "NaN", num(1), false); err != nil {
		t.Fatal(err)
	}
	expectNumber(t, lookup(t, machine, "NaN"), math.NaN())
	if err := machine.Put(machine.GlobalObject(), "NaN", num(1), true); err == nil {
		t.Error("strict write to NaN should fail")
	}
}
