package vm

import (
	goerrors "errors"
	"testing"

	"jscore/pkg/errors"
)

func sourceFunc(vm *VM, name string, params []string, strict bool, body bodyFunc) *Object {
	return vm.NewSourceFunction(&SourceFunction{
		Name:   name,
		Params: params,
		Body:   body,
		Scope:  vm.Realm().GlobalScope,
		Strict: strict,
	})
}

func TestBindArityAndPoisonPills(t *testing.T) {
	vm := newTestVM(t)
	target := sourceFunc(vm, "f", []string{"a", "b", "c"}, false, func(vm *VM, scope *Scope, this Value) (Value, error) {
		return Undefined, nil
	})

	tests := []struct {
		bound int
		want  float64
	}{
		{0, 3},
		{2, 1},
		{3, 0},
		{5, 0},
	}
	for _, tt := range tests {
		args := make([]Value, tt.bound)
		bound, err := vm.Bind(ObjectValue(target), Undefined, args)
		if err != nil {
			t.Fatal(err)
		}
		if got := mustGet(t, vm, bound, "length").ToFloat(); got != tt.want {
			t.Errorf("bind with %d args: length = %v, want %v", tt.bound, got, tt.want)
		}
	}

	bound, _ := vm.Bind(ObjectValue(target), Undefined, nil)
	for _, name := range []string{"length", "caller", "arguments"} {
		if !bound.HasOwnProperty(name) {
			t.Errorf("bound function should report own %q", name)
		}
	}
	if bound.HasOwnProperty("prototype") {
		t.Error("bound function must not have a prototype property")
	}
	if got := mustGet(t, vm, bound, "name").ToString(); got != "bound f" {
		t.Errorf("name = %q", got)
	}
	for _, name := range []string{"caller", "arguments"} {
		_, err := vm.Get(bound, name)
		expectKind(t, err, errors.KindTypeError)
		expectKind(t, vm.Put(bound, name, True, false), errors.KindTypeError)
	}

	_, err := vm.Bind(IntegerValue(1), Undefined, nil)
	expectKind(t, err, errors.KindTypeError)
}

func TestBoundCallAndConstruct(t *testing.T) {
	vm := newTestVM(t)
	var gotThis Value
	var gotArgs []Value
	target := sourceFunc(vm, "Point", []string{"x", "y"}, true, func(vm *VM, scope *Scope, this Value) (Value, error) {
		gotThis = this
		x, _ := vm.ResolveIdentifier(scope, "x")
		y, _ := vm.ResolveIdentifier(scope, "y")
		gotArgs = []Value{x, y}
		if o := this.AsObject(); o != nil {
			o.SetOwn("x", x)
		}
		return Undefined, nil
	})
	boundThis := NewString("fixed")
	bound, err := vm.Bind(ObjectValue(target), boundThis, []Value{IntegerValue(1)})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := vm.Call(ObjectValue(bound), NewString("ignored"), []Value{IntegerValue(2)}); err != nil {
		t.Fatal(err)
	}
	if !gotThis.StrictlyEquals(boundThis) {
		t.Errorf("this = %v, want bound this", gotThis.Inspect())
	}
	if gotArgs[0].ToFloat() != 1 || gotArgs[1].ToFloat() != 2 {
		t.Errorf("args = %v, %v", gotArgs[0].Inspect(), gotArgs[1].Inspect())
	}

	res, err := vm.Construct(ObjectValue(bound), []Value{IntegerValue(9)})
	if err != nil {
		t.Fatal(err)
	}
	obj := res.AsObject()
	if obj == nil || gotThis.AsObject() != obj {
		t.Fatal("construct should run the target with the fresh object as this")
	}
	protoVal := mustGet(t, vm, target, "prototype")
	if obj.Prototype() != protoVal.AsObject() {
		t.Error("constructed object should inherit from the target's prototype")
	}
	if ok, _ := vm.InstanceOf(res, ObjectValue(bound)); !ok {
		t.Error("instanceof through a bound function should consult the target")
	}
}

func TestConstructResultSubstitution(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		vm := NewVM(Options{ConstructReturnsObject: enabled})
		vm.SetEvaluator(closureEvaluator{})
		other := vm.NewPlainObject()
		ctor := sourceFunc(vm, "C", nil, false, func(vm *VM, scope *Scope, this Value) (Value, error) {
			return ObjectValue(other), nil
		})
		res, err := vm.Construct(ObjectValue(ctor), nil)
		if err != nil {
			t.Fatal(err)
		}
		if substituted := res.AsObject() == other; substituted != enabled {
			t.Errorf("ConstructReturnsObject=%v: substituted=%v", enabled, substituted)
		}
	}
}

func TestConstructUsesDefaultPrototypeForNonObject(t *testing.T) {
	vm := newTestVM(t)
	ctor := sourceFunc(vm, "C", nil, false, func(vm *VM, scope *Scope, this Value) (Value, error) {
		return Undefined, nil
	})
	if err := vm.Put(ctor, "prototype", IntegerValue(3), true); err != nil {
		t.Fatal(err)
	}
	res, err := vm.Construct(ObjectValue(ctor), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.AsObject().Prototype() != vm.Realm().ObjectPrototype {
		t.Error("non-object prototype should fall back to Object.prototype")
	}
}

func TestArgumentsAliasing(t *testing.T) {
	vm := newTestVM(t)

	// function f(a){ arguments[0] = 5; return a; }
	f := sourceFunc(vm, "f", []string{"a"}, false, func(vm *VM, scope *Scope, this Value) (Value, error) {
		args, err := vm.ResolveIdentifier(scope, "arguments")
		if err != nil {
			return Undefined, err
		}
		if err := vm.Put(args.AsObject(), "0", IntegerValue(5), false); err != nil {
			return Undefined, err
		}
		return vm.ResolveIdentifier(scope, "a")
	})
	res, err := vm.Call(ObjectValue(f), Undefined, []Value{IntegerValue(1)})
	if err != nil {
		t.Fatal(err)
	}
	if res.ToFloat() != 5 {
		t.Errorf("f(1) = %v, want 5", res.Inspect())
	}

	tests := []struct {
		name   string
		strict bool
		argc   int
		mutate func(vm *VM, scope *Scope, args *Object) error
		// wantParam is the value of the parameter after mutate; wantArg is arguments[0].
		wantParam, wantArg float64
	}{
		{
			name: "parameter write is visible through arguments",
			argc: 1,
			mutate: func(vm *VM, scope *Scope, args *Object) error {
				return vm.AssignIdentifier(scope, "a", IntegerValue(7), false)
			},
			wantParam: 7, wantArg: 7,
		},
		{
			name: "delete breaks the mapping",
			argc: 1,
			mutate: func(vm *VM, scope *Scope, args *Object) error {
				if _, err := vm.Delete(args, "0", false); err != nil {
					return err
				}
				if err := vm.Put(args, "0", IntegerValue(9), false); err != nil {
					return err
				}
				return nil
			},
			wantParam: 1, wantArg: 9,
		},
		{
			name: "writable false freezes the mapping at the current value",
			argc: 1,
			mutate: func(vm *VM, scope *Scope, args *Object) error {
				if _, err := vm.DefineOwnProperty(args, "0", PropertyFragment{}.WithWritable(false), true); err != nil {
					return err
				}
				return vm.AssignIdentifier(scope, "a", IntegerValue(3), false)
			},
			wantParam: 3, wantArg: 1,
		},
		{
			name: "defineProperty value writes through to the parameter",
			argc: 1,
			mutate: func(vm *VM, scope *Scope, args *Object) error {
				_, err := vm.DefineOwnProperty(args, "0", PropertyFragment{}.WithValue(IntegerValue(8)), true)
				return err
			},
			wantParam: 8, wantArg: 8,
		},
		{
			name:   "strict arguments are independent",
			strict: true,
			argc:   1,
			mutate: func(vm *VM, scope *Scope, args *Object) error {
				return vm.Put(args, "0", IntegerValue(4), true)
			},
			wantParam: 1, wantArg: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var param, arg Value
			fn := sourceFunc(vm, "g", []string{"a"}, tt.strict, func(vm *VM, scope *Scope, this Value) (Value, error) {
				args, _ := vm.ResolveIdentifier(scope, "arguments")
				if err := tt.mutate(vm, scope, args.AsObject()); err != nil {
					return Undefined, err
				}
				param, _ = vm.ResolveIdentifier(scope, "a")
				arg, _ = vm.Get(args.AsObject(), "0")
				return Undefined, nil
			})
			callArgs := make([]Value, tt.argc)
			for i := range callArgs {
				callArgs[i] = IntegerValue(1)
			}
			if _, err := vm.Call(ObjectValue(fn), Undefined, callArgs); err != nil {
				t.Fatal(err)
			}
			if param.ToFloat() != tt.wantParam || arg.ToFloat() != tt.wantArg {
				t.Errorf("param=%v arg=%v, want %v and %v", param.Inspect(), arg.Inspect(), tt.wantParam, tt.wantArg)
			}
		})
	}
}

func TestArgumentsObjectShape(t *testing.T) {
	vm := newTestVM(t)
	var args *Object
	fn := sourceFunc(vm, "h", []string{"a", "b"}, false, func(vm *VM, scope *Scope, this Value) (Value, error) {
		v, _ := vm.ResolveIdentifier(scope, "arguments")
		args = v.AsObject()
		return Undefined, nil
	})
	if _, err := vm.Call(ObjectValue(fn), Undefined, []Value{True}); err != nil {
		t.Fatal(err)
	}
	if args.Class() != ClassArguments {
		t.Errorf("class = %s", args.Class())
	}
	if got := mustGet(t, vm, args, "length").ToFloat(); got != 1 {
		t.Errorf("length = %v", got)
	}
	if callee := mustGet(t, vm, args, "callee"); callee.AsObject() != fn {
		t.Error("callee should point back at the function")
	}
	if !args.IsMappedArgument(0) || args.IsMappedArgument(1) {
		t.Error("only indices below min(params, argc) are mapped")
	}

	strict := sourceFunc(vm, "s", nil, true, func(vm *VM, scope *Scope, this Value) (Value, error) {
		v, _ := vm.ResolveIdentifier(scope, "arguments")
		_, err := vm.Get(v.AsObject(), "callee")
		return Undefined, err
	})
	_, err := vm.Call(ObjectValue(strict), Undefined, nil)
	expectKind(t, err, errors.KindTypeError)
}

func TestNonStrictThisCoercion(t *testing.T) {
	vm := newTestVM(t)
	var seen Value
	body := func(vm *VM, scope *Scope, this Value) (Value, error) {
		seen = this
		return Undefined, nil
	}
	sloppy := sourceFunc(vm, "sloppy", nil, false, body)
	strict := sourceFunc(vm, "strict", nil, true, body)

	vm.Call(ObjectValue(sloppy), Undefined, nil)
	if seen.AsObject() != vm.GlobalObject() {
		t.Error("sloppy undefined this should become the global object")
	}
	vm.Call(ObjectValue(sloppy), IntegerValue(1), nil)
	if o := seen.AsObject(); o == nil || o.Class() != ClassNumber {
		t.Errorf("sloppy primitive this should be boxed, got %v", seen.Inspect())
	}
	vm.Call(ObjectValue(strict), Undefined, nil)
	if !seen.IsUndefined() {
		t.Error("strict this should stay undefined")
	}
}

func TestCallErrors(t *testing.T) {
	vm := newTestVM(t)
	_, err := vm.Call(IntegerValue(1), Undefined, nil)
	expectKind(t, err, errors.KindTypeError)

	native := vm.NewNativeFunction("plain", 0, func(vm *VM, this Value, args []Value) (Value, error) {
		return Undefined, nil
	})
	_, err = vm.Construct(ObjectValue(native), nil)
	expectKind(t, err, errors.KindTypeError)

	noEval := NewVM(Options{})
	fn := sourceFunc(noEval, "f", nil, false, nil)
	if _, err := noEval.Call(ObjectValue(fn), Undefined, nil); !goerrors.Is(err, ErrNoEvaluator) {
		t.Errorf("expected ErrNoEvaluator, got %v", err)
	}
}

func TestInterrupt(t *testing.T) {
	vm := newTestVM(t)
	calls := 0
	fn := vm.NewNativeFunction("tick", 0, func(vm *VM, this Value, args []Value) (Value, error) {
		calls++
		return Undefined, nil
	})
	vm.Interrupt()
	if _, err := vm.Call(ObjectValue(fn), Undefined, nil); !goerrors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if calls != 0 {
		t.Error("interrupted call still ran")
	}
	vm.ClearInterrupt()
	if _, err := vm.Call(ObjectValue(fn), Undefined, nil); err != nil || calls != 1 {
		t.Errorf("call after ClearInterrupt: err=%v calls=%d", err, calls)
	}
}

func TestCallDepthLimit(t *testing.T) {
	vm := newTestVM(t)
	var recurse *Object
	recurse = vm.NewNativeFunction("recurse", 0, func(vm *VM, this Value, args []Value) (Value, error) {
		return vm.Call(ObjectValue(recurse), Undefined, nil)
	})
	_, err := vm.Call(ObjectValue(recurse), Undefined, nil)
	expectKind(t, err, errors.KindRangeError)
}
