package vm

// NativeFunc is the Go signature of a builtin's call behaviour.
type NativeFunc func(vm *VM, this Value, args []Value) (Value, error)

// NativeConstructorFunc is the Go signature of a builtin's construct behaviour.
type NativeConstructorFunc func(vm *VM, args []Value) (Value, error)

// callable is implemented by every function flavour.
type callable interface {
	call(vm *VM, fnObj *Object, this Value, args []Value) (Value, error)
	construct(vm *VM, fnObj *Object, args []Value) (Value, error)
	isConstructor() bool
}

// NativeFunction is a function implemented in Go.
type NativeFunction struct {
	Name  string
	Arity int
	Fn    NativeFunc
	Ctor  NativeConstructorFunc
}

func (f *NativeFunction) call(vm *VM, fnObj *Object, this Value, args []Value) (Value, error) {
	return f.Fn(vm, this, args)
}

func (f *NativeFunction) construct(vm *VM, fnObj *Object, args []Value) (Value, error) {
	if f.Ctor == nil {
		return Undefined, vm.NewTypeError("%s is not a constructor", displayName(f.Name))
	}
	return f.Ctor(vm, args)
}

func (f *NativeFunction) isConstructor() bool { return f.Ctor != nil }

// SourceFunction is a function whose body belongs to the Evaluator. Body is
// opaque to the core.
type SourceFunction struct {
	Name       string
	Params     []string
	LocalNames []string
	Body       interface{}
	Scope      *Scope
	Strict     bool
}

// Evaluator runs source function bodies. activation already holds the
// parameters, the arguments object and the declared locals.
type Evaluator interface {
	EvalFunctionBody(vm *VM, fn *SourceFunction, activation *Scope, this Value) (Value, error)
}

// FunctionCompiler turns parameter and body source text into a closure over
// the global scope. It backs the Function constructor.
type FunctionCompiler interface {
	CompileFunction(vm *VM, params []string, body string) (*SourceFunction, error)
}

func (f *SourceFunction) call(vm *VM, fnObj *Object, this Value, args []Value) (Value, error) {
	if vm.evaluator == nil {
		return Undefined, ErrNoEvaluator
	}
	if !f.Strict {
		switch {
		case this.IsNullish():
			this = ObjectValue(vm.realm.GlobalObject)
		case this.IsPrimitive():
			o, err := vm.ToObject(this)
			if err != nil {
				return Undefined, err
			}
			this = ObjectValue(o)
		}
	}
	activation := vm.newActivation(fnObj, f, args)
	return vm.evaluator.EvalFunctionBody(vm, f, activation, this)
}

func (f *SourceFunction) construct(vm *VM, fnObj *Object, args []Value) (Value, error) {
	protoVal, err := vm.Get(fnObj, "prototype")
	if err != nil {
		return Undefined, err
	}
	proto := vm.realm.ObjectPrototype
	if p := protoVal.AsObject(); p != nil {
		proto = p
	}
	obj := NewObject(proto)
	result, err := f.call(vm, fnObj, ObjectValue(obj), args)
	if err != nil {
		return Undefined, err
	}
	if vm.opts.ConstructReturnsObject && result.IsObject() {
		return result, nil
	}
	return ObjectValue(obj), nil
}

func (f *SourceFunction) isConstructor() bool { return true }

// BoundFunction forwards to Target with a fixed this and leading arguments.
type BoundFunction struct {
	Target    *Object
	BoundThis Value
	BoundArgs []Value
}

func (f *BoundFunction) fullArgs(args []Value) []Value {
	all := make([]Value, 0, len(f.BoundArgs)+len(args))
	all = append(all, f.BoundArgs...)
	return append(all, args...)
}

func (f *BoundFunction) call(vm *VM, fnObj *Object, this Value, args []Value) (Value, error) {
	return vm.Call(ObjectValue(f.Target), f.BoundThis, f.fullArgs(args))
}

func (f *BoundFunction) construct(vm *VM, fnObj *Object, args []Value) (Value, error) {
	return vm.Construct(ObjectValue(f.Target), f.fullArgs(args))
}

func (f *BoundFunction) isConstructor() bool { return f.Target.IsConstructor() }

// FunctionKind exposes which flavour a function object is, for builtins
// such as Function.prototype.toString.
func (o *Object) FunctionKind() interface{} { return o.fn }

func displayName(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

func (vm *VM) newFunctionObject(fn callable, name string, length int) *Object {
	o := newObjectOfClass(ClassFunction, vm.realm.FunctionPrototype)
	o.fn = fn
	o.DefineDirect("length", NewDataDescriptor(IntegerValue(int64(length)), AttrNone))
	o.DefineDirect("name", NewDataDescriptor(NewString(name), AttrConfigurable))
	return o
}

// NewNativeFunction wraps a Go function as a callable, non-constructible
// function object.
func (vm *VM) NewNativeFunction(name string, arity int, fn NativeFunc) *Object {
	return vm.newFunctionObject(&NativeFunction{Name: name, Arity: arity, Fn: fn}, name, arity)
}

// NewNativeConstructor creates a builtin constructor whose "prototype" is
// proto. proto.constructor points back at the new function.
func (vm *VM) NewNativeConstructor(name string, arity int, fn NativeFunc, ctor NativeConstructorFunc, proto *Object) *Object {
	o := vm.newFunctionObject(&NativeFunction{Name: name, Arity: arity, Fn: fn, Ctor: ctor}, name, arity)
	if proto != nil {
		o.DefineDirect("prototype", NewDataDescriptor(ObjectValue(proto), AttrNone))
		proto.SetInternal("constructor", ObjectValue(o))
	}
	return o
}

// NewSourceFunction creates a function object for an Evaluator-owned body.
// It receives a fresh prototype object, and strict functions get poison-pill
// caller/arguments accessors.
func (vm *VM) NewSourceFunction(f *SourceFunction) *Object {
	o := vm.newFunctionObject(f, f.Name, len(f.Params))
	proto := NewObject(vm.realm.ObjectPrototype)
	proto.SetInternal("constructor", ObjectValue(o))
	o.DefineDirect("prototype", NewDataDescriptor(ObjectValue(proto), AttrWritable))
	if f.Strict {
		vm.poison(o, "caller")
		vm.poison(o, "arguments")
	}
	return o
}

func (vm *VM) poison(o *Object, name string) {
	thrower := vm.realm.ThrowTypeError
	o.DefineDirect(name, NewAccessorDescriptor(thrower, thrower, AttrNone))
}

// Bind implements Function.prototype.bind.
func (vm *VM) Bind(target Value, boundThis Value, boundArgs []Value) (*Object, error) {
	t := target.AsObject()
	if !t.IsCallable() {
		return nil, vm.NewTypeError("Bind must be called on a function")
	}
	length := 0
	if t.Class() == ClassFunction {
		lv, err := vm.Get(t, "length")
		if err != nil {
			return nil, err
		}
		if lv.IsNumber() {
			if l := int(ToInteger(lv.num)) - len(boundArgs); l > 0 {
				length = l
			}
		}
	}
	name := ""
	if nv, err := vm.Get(t, "name"); err != nil {
		return nil, err
	} else if nv.IsString() {
		name = nv.str
	}
	args := make([]Value, len(boundArgs))
	copy(args, boundArgs)
	o := vm.newFunctionObject(&BoundFunction{Target: t, BoundThis: boundThis, BoundArgs: args}, "bound "+name, length)
	vm.poison(o, "caller")
	vm.poison(o, "arguments")
	return o, nil
}
