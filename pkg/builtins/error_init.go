package builtins

import (
	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

// ErrorInitializer implements Error and the native error constructors
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string {
	return "Error"
}

func (e *ErrorInitializer) Priority() int {
	return PriorityError
}

func (e *ErrorInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	defineMethod(vmInstance, ctx.Realm.ErrorPrototype, "toString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj := this.AsObject()
		if obj == nil {
			return vm.Undefined, vmInstance.NewTypeError("Error.prototype.toString called on non-object %s", this.Inspect())
		}
		name, err := stringProperty(vmInstance, obj, "name", "Error")
		if err != nil {
			return vm.Undefined, err
		}
		msg, err := stringProperty(vmInstance, obj, "message", "")
		if err != nil {
			return vm.Undefined, err
		}
		switch {
		case name == "":
			return vm.NewString(msg), nil
		case msg == "":
			return vm.NewString(name), nil
		}
		return vm.NewString(name + ": " + msg), nil
	})

	for _, kind := range errors.Kinds {
		kind := kind
		proto := ctx.Realm.ErrorPrototypes[kind]

		// Error(msg) and new Error(msg) both create a fresh error object
		construct := func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
			obj := vmInstance.NewErrorObject(kind, "")
			if msg := argAt(args, 0); !msg.IsUndefined() {
				s, err := vmInstance.ToString(msg)
				if err != nil {
					return vm.Undefined, err
				}
				obj.SetInternal("message", vm.NewString(s))
			}
			return vm.ObjectValue(obj), nil
		}
		ctor := vmInstance.NewNativeConstructor(string(kind), 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
			return construct(vmInstance, args)
		}, construct, proto)

		ctx.Realm.SetConstructor(string(kind), ctor)
		if err := ctx.DefineGlobal(string(kind), vm.ObjectValue(ctor)); err != nil {
			return err
		}
	}
	return nil
}

// stringProperty reads a property with ToString, substituting fallback for undefined.
func stringProperty(vmInstance *vm.VM, obj *vm.Object, name, fallback string) (string, error) {
	v, err := vmInstance.Get(obj, name)
	if err != nil {
		return "", err
	}
	if v.IsUndefined() {
		return fallback, nil
	}
	return vmInstance.ToString(v)
}
