package builtins

import (
	"jscore/pkg/vm"
)

// argAt returns args[i], or Undefined when the caller passed fewer arguments.
func argAt(args []vm.Value, i int) vm.Value {
	if i < len(args) {
		return args[i]
	}
	return vm.Undefined
}

// restArgs returns args[i:], or nil.
func restArgs(args []vm.Value, i int) []vm.Value {
	if i < len(args) {
		return args[i:]
	}
	return nil
}

// defineMethod installs a native method as a non-enumerable property.
func defineMethod(machine *vm.VM, o *vm.Object, name string, arity int, fn vm.NativeFunc) *vm.Object {
	f := machine.NewNativeFunction(name, arity, fn)
	o.SetInternal(name, vm.ObjectValue(f))
	return f
}

// defineConstant installs a read-only, non-enumerable, non-configurable value.
func defineConstant(o *vm.Object, name string, v vm.Value) {
	o.DefineDirect(name, vm.NewDataDescriptor(v, vm.AttrNone))
}

// thisObject applies ToObject to a method receiver, naming the method in
// the TypeError raised for undefined and null.
func thisObject(machine *vm.VM, this vm.Value, method string) (*vm.Object, error) {
	if this.IsNullish() {
		return nil, machine.NewTypeError("%s called on null or undefined", method)
	}
	return machine.ToObject(this)
}

// requireObject rejects non-object arguments, as the ES5 Object functions do.
func requireObject(machine *vm.VM, v vm.Value, method string) (*vm.Object, error) {
	o := v.AsObject()
	if o == nil {
		return nil, machine.NewTypeError("%s called on non-object", method)
	}
	return o, nil
}

// integerArg converts args[i] with ToNumber then ToInteger.
func integerArg(machine *vm.VM, args []vm.Value, i int) (float64, error) {
	n, err := machine.ToNumber(argAt(args, i))
	if err != nil {
		return 0, err
	}
	return vm.ToInteger(n), nil
}

// relativeIndex clamps a relative position the way slice and friends do:
// negative values count from the end.
func relativeIndex(rel float64, length int) int {
	if rel < 0 {
		if r := float64(length) + rel; r > 0 {
			return int(r)
		}
		return 0
	}
	if rel > float64(length) {
		return length
	}
	return int(rel)
}

// clampIndex clamps pos into [0, length].
func clampIndex(pos float64, length int) int {
	switch {
	case pos < 0:
		return 0
	case pos > float64(length):
		return length
	}
	return int(pos)
}

// stringArgs converts every argument with ToString.
func stringArgs(machine *vm.VM, args []vm.Value) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := machine.ToString(a)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// newStringArray builds an array of strings.
func newStringArray(machine *vm.VM, items []string) *vm.Object {
	values := make([]vm.Value, len(items))
	for i, s := range items {
		values[i] = vm.NewString(s)
	}
	return machine.NewArray(values...)
}
