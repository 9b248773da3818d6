package vm

import (
	"testing"

	"jscore/pkg/errors"
)

// bodyFunc stands in for an evaluator-owned function body in tests.
type bodyFunc func(vm *VM, scope *Scope, this Value) (Value, error)

type closureEvaluator struct{}

func (closureEvaluator) EvalFunctionBody(vm *VM, fn *SourceFunction, activation *Scope, this Value) (Value, error) {
	return fn.Body.(bodyFunc)(vm, activation, this)
}

func newTestVM(t *testing.T) *VM {
	t.Helper()
	vm := NewVM(Options{})
	vm.SetEvaluator(closureEvaluator{})
	return vm
}

func expectKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil error", kind)
	}
	ex, ok := AsException(err)
	if !ok {
		t.Fatalf("expected a script exception, got %T: %v", err, err)
	}
	if ex.Kind() != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, ex.Kind(), err)
	}
}

func mustGet(t *testing.T, vm *VM, o *Object, name string) Value {
	t.Helper()
	v, err := vm.Get(o, name)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", name, err)
	}
	return v
}

func mustDefine(t *testing.T, vm *VM, o *Object, name string, f PropertyFragment) {
	t.Helper()
	ok, err := vm.DefineOwnProperty(o, name, f, true)
	if err != nil || !ok {
		t.Fatalf("DefineOwnProperty(%q) = %v, %v", name, ok, err)
	}
}
