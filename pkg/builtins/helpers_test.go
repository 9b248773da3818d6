package builtins

import (
	"math"
	"strings"
	"testing"

	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

func newRealmVM(t *testing.T) *vm.VM {
	t.Helper()
	machine := vm.NewVM(vm.Options{})
	if err := Install(machine); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	return machine
}

// lookup resolves a dotted path such as "Object.prototype.toString" from
// the global object.
func lookup(t *testing.T, machine *vm.VM, path string) vm.Value {
	t.Helper()
	parts := strings.Split(path, ".")
	v, ok := machine.GetGlobal(parts[0])
	if !ok {
		t.Fatalf("global %q is not defined", parts[0])
	}
	for _, p := range parts[1:] {
		next, err := machine.GetValue(v, p)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		v = next
	}
	return v
}

// callPath calls the function at path with its holder as this.
func callPath(machine *vm.VM, path string, args ...vm.Value) (vm.Value, error) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		fn, _ := machine.GetGlobal(path)
		return machine.Call(fn, vm.Undefined, args)
	}
	holder, err := resolvePath(machine, path[:i])
	if err != nil {
		return vm.Undefined, err
	}
	return machine.Invoke(holder, path[i+1:], args...)
}

func resolvePath(machine *vm.VM, path string) (vm.Value, error) {
	parts := strings.Split(path, ".")
	v, _ := machine.GetGlobal(parts[0])
	for _, p := range parts[1:] {
		next, err := machine.GetValue(v, p)
		if err != nil {
			return vm.Undefined, err
		}
		v = next
	}
	return v, nil
}

func mustCall(t *testing.T, machine *vm.VM, path string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := callPath(machine, path, args...)
	if err != nil {
		t.Fatalf("%s failed: %v", path, err)
	}
	return v
}

func mustInvoke(t *testing.T, machine *vm.VM, base vm.Value, method string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := machine.Invoke(base, method, args...)
	if err != nil {
		t.Fatalf("%s(%v) on %s failed: %v", method, args, base.Inspect(), err)
	}
	return v
}

func mustConstruct(t *testing.T, machine *vm.VM, ctor string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := machine.Construct(lookup(t, machine, ctor), args)
	if err != nil {
		t.Fatalf("new %s failed: %v", ctor, err)
	}
	return v
}

func expectKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil error", kind)
	}
	ex, ok := vm.AsException(err)
	if !ok {
		t.Fatalf("expected a script exception, got %T: %v", err, err)
	}
	if ex.Kind() != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, ex.Kind(), err)
	}
}

func expectString(t *testing.T, got vm.Value, want string) {
	t.Helper()
	if !got.IsString() || got.AsString() != want {
		t.Errorf("got %s, want %q", got.Inspect(), want)
	}
}

func expectNumber(t *testing.T, got vm.Value, want float64) {
	t.Helper()
	if !got.IsNumber() {
		t.Errorf("got %s, want number %v", got.Inspect(), want)
		return
	}
	f := got.AsFloat()
	if math.IsNaN(want) {
		if !math.IsNaN(f) {
			t.Errorf("got %v, want NaN", f)
		}
		return
	}
	if f != want {
		t.Errorf("got %v, want %v", f, want)
	}
}

// elements renders an array's elements; undefined shows as "<undefined>".
func elements(t *testing.T, machine *vm.VM, v vm.Value) []string {
	t.Helper()
	obj := v.AsObject()
	if obj == nil {
		t.Fatalf("expected an array, got %s", v.Inspect())
	}
	n, err := machine.LengthOf(obj)
	if err != nil {
		t.Fatalf("length: %v", err)
	}
	out := make([]string, n)
	for i := range out {
		e, err := machine.Get(obj, vm.IndexKey(uint32(i)))
		if err != nil {
			t.Fatalf("element %d: %v", i, err)
		}
		if e.IsUndefined() {
			out[i] = "<undefined>"
			continue
		}
		out[i] = e.ToString()
	}
	return out
}

func expectElements(t *testing.T, machine *vm.VM, v vm.Value, want ...string) {
	t.Helper()
	got := elements(t, machine, v)
	if strings.Join(got, "|") != strings.Join(want, "|") || len(got) != len(want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func str(s string) vm.Value { return vm.NewString(s) }
func num(f float64) vm.Value { return vm.NumberValue(f) }

// nativeFn wraps a Go closure as a script function.
func nativeFn(machine *vm.VM, fn func(args []vm.Value) vm.Value) vm.Value {
	return vm.ObjectValue(machine.NewNativeFunction("", 0, func(machine *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		return fn(args), nil
	}))
}
