package builtins

import (
	"jscore/pkg/vm"
)

// ObjectInitializer implements the Object builtin
type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject // Must be first (base prototype)
}

func (o *ObjectInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	objectProto := ctx.Realm.ObjectPrototype

	// Add prototype methods
	defineMethod(vmInstance, objectProto, "hasOwnProperty", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		key, err := vmInstance.ToPropertyKey(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		obj, err := thisObject(vmInstance, this, "Object.prototype.hasOwnProperty")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(vmInstance.HasOwnProperty(obj, key)), nil
	})

	defineMethod(vmInstance, objectProto, "isPrototypeOf", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		target := argAt(args, 0).AsObject()
		if target == nil {
			return vm.False, nil
		}
		obj, err := thisObject(vmInstance, this, "Object.prototype.isPrototypeOf")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(vmInstance.IsPrototypeOf(obj, target)), nil
	})

	defineMethod(vmInstance, objectProto, "propertyIsEnumerable", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		key, err := vmInstance.ToPropertyKey(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		obj, err := thisObject(vmInstance, this, "Object.prototype.propertyIsEnumerable")
		if err != nil {
			return vm.Undefined, err
		}
		d, ok := vmInstance.GetOwnProperty(obj, key)
		return vm.BooleanValue(ok && d.Enumerable), nil
	})

	defineMethod(vmInstance, objectProto, "toString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.NewString(classString(vmInstance, this)), nil
	})

	defineMethod(vmInstance, objectProto, "toLocaleString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		if this.IsNullish() {
			return vm.Undefined, vmInstance.NewTypeError("Object.prototype.toLocaleString called on null or undefined")
		}
		return vmInstance.Invoke(this, "toString")
	})

	defineMethod(vmInstance, objectProto, "valueOf", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisObject(vmInstance, this, "Object.prototype.valueOf")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj), nil
	})

	// Object(value) and new Object(value) box primitives and pass objects through
	construct := func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
		value := argAt(args, 0)
		if value.IsNullish() {
			return vm.ObjectValue(vmInstance.NewPlainObject()), nil
		}
		obj, err := vmInstance.ToObject(value)
		return vm.ObjectValue(obj), err
	}
	objectCtor := vmInstance.NewNativeConstructor("Object", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		return construct(vmInstance, args)
	}, construct, objectProto)

	// Static methods
	defineMethod(vmInstance, objectCtor, "create", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		protoArg := argAt(args, 0)
		if !protoArg.IsObject() && !protoArg.IsNull() {
			return vm.Undefined, vmInstance.NewTypeError("Object prototype may only be an Object or null: %s", protoArg.Inspect())
		}
		obj := vmInstance.NewObjectWithProto(protoArg.AsObject())
		if props := argAt(args, 1); !props.IsUndefined() {
			if err := defineProperties(vmInstance, obj, props); err != nil {
				return vm.Undefined, err
			}
		}
		return vm.ObjectValue(obj), nil
	})

	defineMethod(vmInstance, objectCtor, "defineProperty", 3, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.defineProperty")
		if err != nil {
			return vm.Undefined, err
		}
		key, err := vmInstance.ToPropertyKey(argAt(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		frag, err := vmInstance.ToPropertyFragment(argAt(args, 2))
		if err != nil {
			return vm.Undefined, err
		}
		if _, err := vmInstance.DefineOwnProperty(obj, key, frag, true); err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj), nil
	})

	defineMethod(vmInstance, objectCtor, "defineProperties", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.defineProperties")
		if err != nil {
			return vm.Undefined, err
		}
		if err := defineProperties(vmInstance, obj, argAt(args, 1)); err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj), nil
	})

	defineMethod(vmInstance, objectCtor, "getOwnPropertyDescriptor", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.getOwnPropertyDescriptor")
		if err != nil {
			return vm.Undefined, err
		}
		key, err := vmInstance.ToPropertyKey(argAt(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		d, ok := vmInstance.GetOwnProperty(obj, key)
		if !ok {
			return vm.Undefined, nil
		}
		return vm.ObjectValue(vmInstance.FromPropertyDescriptor(d)), nil
	})

	defineMethod(vmInstance, objectCtor, "getOwnPropertyNames", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.getOwnPropertyNames")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(newStringArray(vmInstance, obj.OwnPropertyNames())), nil
	})

	defineMethod(vmInstance, objectCtor, "keys", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.keys")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(newStringArray(vmInstance, obj.OwnKeys())), nil
	})

	defineMethod(vmInstance, objectCtor, "getPrototypeOf", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.getPrototypeOf")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj.Prototype()), nil
	})

	defineMethod(vmInstance, objectCtor, "setPrototypeOf", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		target, protoArg := argAt(args, 0), argAt(args, 1)
		if target.IsNullish() {
			return vm.Undefined, vmInstance.NewTypeError("Object.setPrototypeOf called on null or undefined")
		}
		if !protoArg.IsObject() && !protoArg.IsNull() {
			return vm.Undefined, vmInstance.NewTypeError("Object prototype may only be an Object or null: %s", protoArg.Inspect())
		}
		obj := target.AsObject()
		if obj == nil {
			return target, nil
		}
		if !vmInstance.SetPrototype(obj, protoArg.AsObject()) {
			if !obj.Extensible() {
				return vm.Undefined, vmInstance.NewTypeError("%s is not extensible", target.Inspect())
			}
			return vm.Undefined, vmInstance.NewTypeError("Cyclic __proto__ value")
		}
		return target, nil
	})

	defineMethod(vmInstance, objectCtor, "preventExtensions", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.preventExtensions")
		if err != nil {
			return vm.Undefined, err
		}
		vmInstance.PreventExtensions(obj)
		return vm.ObjectValue(obj), nil
	})

	defineMethod(vmInstance, objectCtor, "seal", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.seal")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj), vmInstance.Seal(obj)
	})

	defineMethod(vmInstance, objectCtor, "freeze", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := requireObject(vmInstance, argAt(args, 0), "Object.freeze")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj), vmInstance.Freeze(obj)
	})

	predicates := []struct {
		name string
		test func(o *vm.Object) bool
	}{
		{"isExtensible", vmInstance.IsExtensible},
		{"isSealed", vmInstance.IsSealed},
		{"isFrozen", vmInstance.IsFrozen},
	}
	for _, p := range predicates {
		p := p
		defineMethod(vmInstance, objectCtor, p.name, 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
			obj, err := requireObject(vmInstance, argAt(args, 0), "Object."+p.name)
			if err != nil {
				return vm.Undefined, err
			}
			return vm.BooleanValue(p.test(obj)), nil
		})
	}

	ctx.Realm.SetConstructor("Object", objectCtor)
	return ctx.DefineGlobal("Object", vm.ObjectValue(objectCtor))
}

// classString renders "[object Class]" for Object.prototype.toString.
func classString(vmInstance *vm.VM, this vm.Value) string {
	switch {
	case this.IsUndefined():
		return "[object Undefined]"
	case this.IsNull():
		return "[object Null]"
	}
	obj, _ := vmInstance.ToObject(this)
	return "[object " + string(obj.Class()) + "]"
}

// defineProperties implements the shared part of Object.defineProperties and
// Object.create: every descriptor is converted before any is applied.
func defineProperties(vmInstance *vm.VM, obj *vm.Object, props vm.Value) error {
	src, err := vmInstance.ToObject(props)
	if err != nil {
		return err
	}
	keys := src.OwnKeys()
	frags := make([]vm.PropertyFragment, len(keys))
	for i, k := range keys {
		descVal, err := vmInstance.Get(src, k)
		if err != nil {
			return err
		}
		if frags[i], err = vmInstance.ToPropertyFragment(descVal); err != nil {
			return err
		}
	}
	for i, k := range keys {
		if _, err := vmInstance.DefineOwnProperty(obj, k, frags[i], true); err != nil {
			return err
		}
	}
	return nil
}
