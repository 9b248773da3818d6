package vm

import "jscore/pkg/errors"

// Realm bundles the intrinsic objects of one global environment. The builtins
// package fills in constructors and methods; the realm itself only creates
// the bare prototypes the core algorithms need to allocate objects.
type Realm struct {
	GlobalObject *Object
	GlobalScope  *Scope

	ObjectPrototype   *Object
	FunctionPrototype *Object
	ArrayPrototype    *Object
	StringPrototype   *Object
	NumberPrototype   *Object
	BooleanPrototype  *Object
	RegExpPrototype   *Object
	ErrorPrototype    *Object

	// ErrorPrototypes maps every error kind, including KindError, to its prototype.
	ErrorPrototypes map[errors.Kind]*Object

	// ThrowTypeError is the shared poison-pill accessor for caller/arguments.
	ThrowTypeError *Object

	constructors map[string]*Object
}

func newRealm(vm *VM) *Realm {
	r := &Realm{
		ErrorPrototypes: make(map[errors.Kind]*Object),
		constructors:    make(map[string]*Object),
	}
	vm.realm = r

	r.ObjectPrototype = NewObject(nil)

	r.FunctionPrototype = newObjectOfClass(ClassFunction, r.ObjectPrototype)
	r.FunctionPrototype.fn = &NativeFunction{
		Fn: func(vm *VM, this Value, args []Value) (Value, error) { return Undefined, nil },
	}
	r.FunctionPrototype.DefineDirect("length", NewDataDescriptor(IntegerValue(0), AttrNone))
	r.FunctionPrototype.DefineDirect("name", NewDataDescriptor(NewString(""), AttrConfigurable))

	r.ArrayPrototype = newArrayObject(r.ObjectPrototype)
	r.StringPrototype = newStringObject(r.ObjectPrototype, "")
	r.NumberPrototype = newPrimitiveObject(ClassNumber, r.ObjectPrototype, IntegerValue(0))
	r.BooleanPrototype = newPrimitiveObject(ClassBoolean, r.ObjectPrototype, False)
	r.RegExpPrototype = NewObject(r.ObjectPrototype)

	r.ErrorPrototype = newObjectOfClass(ClassError, r.ObjectPrototype)
	r.ErrorPrototype.SetInternal("name", NewString(string(errors.KindError)))
	r.ErrorPrototype.SetInternal("message", NewString(""))
	r.ErrorPrototypes[errors.KindError] = r.ErrorPrototype
	for _, kind := range errors.Kinds {
		if kind == errors.KindError {
			continue
		}
		proto := newObjectOfClass(ClassError, r.ErrorPrototype)
		proto.SetInternal("name", NewString(string(kind)))
		proto.SetInternal("message", NewString(""))
		r.ErrorPrototypes[kind] = proto
	}

	r.ThrowTypeError = vm.NewNativeFunction("", 0, func(vm *VM, this Value, args []Value) (Value, error) {
		return Undefined, vm.NewTypeError("'caller', 'callee', and 'arguments' properties may not be accessed on strict mode functions or the arguments objects for calls to them")
	})
	r.ThrowTypeError.extensible = false

	r.GlobalObject = NewObject(r.ObjectPrototype)
	r.GlobalScope = NewObjectScope(r.GlobalObject, nil, false)
	return r
}

// SetConstructor records a builtin constructor by its global name.
func (r *Realm) SetConstructor(name string, ctor *Object) {
	r.constructors[name] = ctor
}

// Constructor returns a builtin constructor recorded by SetConstructor.
func (r *Realm) Constructor(name string) *Object {
	return r.constructors[name]
}
