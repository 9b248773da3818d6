package vm

import (
	"testing"

	"jscore/pkg/errors"
)

func TestResolveIdentifier(t *testing.T) {
	vm := newTestVM(t)
	global := vm.Realm().GlobalScope
	if err := vm.DeclareVar(global, "g", IntegerValue(1)); err != nil {
		t.Fatal(err)
	}
	inner := NewDeclarativeScope(global)
	inner.Slots().Define("local", NewString("x"))

	if v, err := vm.ResolveIdentifier(inner, "g"); err != nil || v.ToFloat() != 1 {
		t.Errorf("g = %v, %v", v.Inspect(), err)
	}
	if v, err := vm.ResolveIdentifier(inner, "local"); err != nil || v.ToString() != "x" {
		t.Errorf("local = %v, %v", v.Inspect(), err)
	}
	_, err := vm.ResolveIdentifier(inner, "missing")
	expectKind(t, err, errors.KindReferenceError)
	if _, err := vm.ResolveIdentifier(global, "local"); err == nil {
		t.Error("inner bindings must not leak outward")
	}
}

func TestAssignIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		target  string
		wantErr errors.Kind
		global  bool
	}{
		{name: "sloppy unresolvable creates a global", target: "fresh", global: true},
		{name: "strict unresolvable is a ReferenceError", strict: true, target: "fresh", wantErr: errors.KindReferenceError},
		{name: "strict write to immutable binding", strict: true, target: "frozen", wantErr: errors.KindTypeError},
		{name: "sloppy write to immutable binding is ignored", target: "frozen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := newTestVM(t)
			scope := NewDeclarativeScope(vm.Realm().GlobalScope)
			idx := scope.Slots().Define("frozen", IntegerValue(1))
			scope.Slots().MarkImmutable(idx)

			err := vm.AssignIdentifier(scope, tt.target, IntegerValue(2), tt.strict)
			if tt.wantErr != "" {
				expectKind(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.global {
				if v, ok := vm.GetGlobal(tt.target); !ok || v.ToFloat() != 2 {
					t.Errorf("global %s = %v, %v", tt.target, v.Inspect(), ok)
				}
			}
			if v, _ := scope.Slots().Get(idx); v.ToFloat() != 1 {
				t.Errorf("immutable binding changed to %v", v.Inspect())
			}
		})
	}
}

func TestObjectScope(t *testing.T) {
	vm := newTestVM(t)
	target := vm.NewPlainObject()
	target.SetOwn("x", IntegerValue(10))
	with := NewObjectScope(target, vm.Realm().GlobalScope, true)

	v, where, found, err := vm.LookupIdentifier(with, "x")
	if err != nil || !found || v.ToFloat() != 10 {
		t.Fatalf("lookup x = %v, %v, %v", v.Inspect(), found, err)
	}
	if this := where.ImplicitThis(); this.AsObject() != target {
		t.Error("a with scope should provide its object as implicit this")
	}
	if this := vm.Realm().GlobalScope.ImplicitThis(); !this.IsUndefined() {
		t.Error("the global scope does not provide an implicit this")
	}

	if err := vm.AssignIdentifier(with, "x", IntegerValue(11), true); err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, vm, target, "x").ToFloat(); got != 11 {
		t.Errorf("x = %v after assignment through the with scope", got)
	}

	deleted, err := vm.DeleteIdentifier(with, "x")
	if err != nil || !deleted || target.HasOwnProperty("x") {
		t.Errorf("DeleteIdentifier = %v, %v", deleted, err)
	}
}

func TestDeclarations(t *testing.T) {
	vm := newTestVM(t)
	global := vm.Realm().GlobalScope
	if err := vm.DeclareVar(global, "v", IntegerValue(1)); err != nil {
		t.Fatal(err)
	}
	if err := vm.DeclareVar(global, "v", IntegerValue(2)); err != nil {
		t.Fatal(err)
	}
	if v, _ := vm.GetGlobal("v"); v.ToFloat() != 1 {
		t.Errorf("redeclaring a var must keep its value, got %v", v.Inspect())
	}
	if deleted, _ := vm.DeleteIdentifier(global, "v"); deleted {
		t.Error("var bindings are not deletable")
	}

	fn := vm.NewNativeFunction("fn", 0, func(vm *VM, this Value, args []Value) (Value, error) {
		return Undefined, nil
	})
	if err := vm.DeclareFunction(global, "v", fn); err != nil {
		t.Fatal(err)
	}
	if v, _ := vm.GetGlobal("v"); v.AsObject() != fn {
		t.Error("function declarations overwrite existing bindings")
	}

	local := NewDeclarativeScope(global)
	if err := vm.DeclareVar(local, "a", True); err != nil {
		t.Fatal(err)
	}
	if deleted, _ := vm.DeleteIdentifier(local, "a"); deleted {
		t.Error("declarative bindings are not deletable")
	}
	if deleted, _ := vm.DeleteIdentifier(local, "nothing"); !deleted {
		t.Error("deleting an unresolvable name succeeds")
	}
}
