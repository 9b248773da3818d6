package vm

import (
	"sort"
	"testing"

	"jscore/pkg/errors"
)

type mapHost struct {
	values   map[string]Value
	readOnly bool
}

func (h *mapHost) HostGet(name string) (Value, bool) {
	v, ok := h.values[name]
	return v, ok
}

func (h *mapHost) HostPut(name string, v Value) bool {
	if h.readOnly {
		return false
	}
	h.values[name] = v
	return true
}

func (h *mapHost) HostKeys() []string {
	keys := make([]string, 0, len(h.values))
	for k := range h.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestHostObject(t *testing.T) {
	vm := newTestVM(t)
	h := &mapHost{values: map[string]Value{"a": IntegerValue(1)}}
	o := vm.NewHostObject(h)

	if got := mustGet(t, vm, o, "a").ToFloat(); got != 1 {
		t.Errorf("a = %v", got)
	}
	if err := vm.Put(o, "b", NewString("two"), true); err != nil {
		t.Fatal(err)
	}
	if h.values["b"].ToString() != "two" {
		t.Error("Put should reach HostPut")
	}
	if got := o.OwnKeys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("OwnKeys = %v", got)
	}
	_, err := vm.DefineOwnProperty(o, "a", PropertyFragment{}.WithWritable(false), true)
	expectKind(t, err, errors.KindTypeError)
	_, err = vm.Delete(o, "a", true)
	expectKind(t, err, errors.KindTypeError)

	h.readOnly = true
	expectKind(t, vm.Put(o, "c", True, true), errors.KindTypeError)
	if err := vm.Put(o, "c", True, false); err != nil {
		t.Errorf("sloppy rejected put should be silent, got %v", err)
	}
}

func TestToValue(t *testing.T) {
	vm := newTestVM(t)
	type point struct{ X int }

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, "null"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"uint8", uint8(7), "7"},
		{"float", 1.5, "1.5"},
		{"string", "hi", "hi"},
		{"slice", []int{1, 2}, "[1, 2]"},
		{"map", map[string]interface{}{"b": 1, "a": "x"}, `{ a: "x", b: 1 }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := vm.ToValue(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := v.Inspect(); got != tt.want {
				t.Errorf("Inspect = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := vm.ToValue(point{X: 1}); err == nil {
		t.Error("structs have no script representation")
	}

	fn, err := vm.ToValue(func(args ...Value) Value { return IntegerValue(int64(len(args))) })
	if err != nil {
		t.Fatal(err)
	}
	res, err := vm.Call(fn, Undefined, []Value{True, False})
	if err != nil || res.ToFloat() != 2 {
		t.Errorf("wrapped Go func returned %v, %v", res.Inspect(), err)
	}
}

func TestExport(t *testing.T) {
	vm := newTestVM(t)
	o := vm.NewPlainObject()
	o.SetOwn("n", IntegerValue(3))
	o.SetOwn("list", ObjectValue(vm.NewArray(True, NewString("s"), Null)))
	o.SetOwn("self", ObjectValue(o))

	out, ok := vm.Export(ObjectValue(o)).(map[string]interface{})
	if !ok {
		t.Fatalf("Export returned %T", vm.Export(ObjectValue(o)))
	}
	if out["n"] != float64(3) {
		t.Errorf("n = %#v", out["n"])
	}
	list, ok := out["list"].([]interface{})
	if !ok || len(list) != 3 || list[0] != true || list[1] != "s" || list[2] != nil {
		t.Errorf("list = %#v", out["list"])
	}
	if self, ok := out["self"].(map[string]interface{}); !ok || self["n"] != float64(3) {
		t.Error("a cycle should map back to the same Go map")
	}

	double := vm.NewNativeFunction("double", 1, func(vm *VM, this Value, args []Value) (Value, error) {
		return NumberValue(args[0].ToFloat() * 2), nil
	})
	call, ok := vm.Export(ObjectValue(double)).(func(this interface{}, args ...interface{}) (interface{}, error))
	if !ok {
		t.Fatal("functions export as Go funcs")
	}
	got, err := call(nil, 21)
	if err != nil || got != float64(42) {
		t.Errorf("call = %v, %v", got, err)
	}
}
