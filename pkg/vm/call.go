package vm

import "fmt"

// MaxCallDepth bounds nested Call/Construct before a RangeError is thrown.
const MaxCallDepth = 10000

// Call invokes fn with an explicit this and argument list.
func (vm *VM) Call(fn Value, this Value, args []Value) (Value, error) {
	if err := vm.checkInterrupt(); err != nil {
		return Undefined, err
	}
	o := fn.AsObject()
	if !o.IsCallable() {
		return Undefined, vm.NewTypeError("%s is not a function", fn.Inspect())
	}
	if vm.callDepth >= MaxCallDepth {
		return Undefined, vm.NewRangeError("Maximum call stack size exceeded")
	}
	vm.callDepth++
	defer func() { vm.callDepth-- }()
	if debugVM {
		fmt.Printf("[VM] call %s with %d args\n", fn.Inspect(), len(args))
	}
	return o.fn.call(vm, o, this, args)
}

// Construct invokes fn as a constructor.
func (vm *VM) Construct(fn Value, args []Value) (Value, error) {
	if err := vm.checkInterrupt(); err != nil {
		return Undefined, err
	}
	o := fn.AsObject()
	if !o.IsConstructor() {
		return Undefined, vm.NewTypeError("%s is not a constructor", fn.Inspect())
	}
	if vm.callDepth >= MaxCallDepth {
		return Undefined, vm.NewRangeError("Maximum call stack size exceeded")
	}
	vm.callDepth++
	defer func() { vm.callDepth-- }()
	return o.fn.construct(vm, o, args)
}

// Invoke looks up a method on base (which may be a primitive) and calls it
// with base as this.
func (vm *VM) Invoke(base Value, method string, args ...Value) (Value, error) {
	fn, err := vm.GetValue(base, method)
	if err != nil {
		return Undefined, err
	}
	if !fn.IsCallable() {
		return Undefined, vm.NewTypeError("%s.%s is not a function", base.TypeOf(), method)
	}
	return vm.Call(fn, base, args)
}

// newActivation builds the declarative scope a source function body runs
// in: parameters first (a later duplicate name wins), then the arguments
// object unless a parameter shadows it, then the remaining locals.
func (vm *VM) newActivation(fnObj *Object, f *SourceFunction, args []Value) *Scope {
	scope := NewDeclarativeScope(f.Scope)
	for i, p := range f.Params {
		v := Undefined
		if i < len(args) {
			v = args[i]
		}
		scope.slots.Define(p, v)
	}
	if !scope.slots.Has("arguments") {
		argsObj := vm.newArgumentsObject(fnObj, f, scope.slots, args)
		idx := scope.slots.Define("arguments", ObjectValue(argsObj))
		if f.Strict {
			scope.slots.MarkImmutable(idx)
		}
	}
	for _, name := range f.LocalNames {
		if !scope.slots.Has(name) {
			scope.slots.Define(name, Undefined)
		}
	}
	return scope
}
