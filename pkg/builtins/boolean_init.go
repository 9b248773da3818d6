package builtins

import (
	"jscore/pkg/vm"
)

type BooleanInitializer struct{}

func (b *BooleanInitializer) Name() string {
	return "Boolean"
}

func (b *BooleanInitializer) Priority() int {
	return PriorityBoolean
}

func (b *BooleanInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	booleanProto := ctx.Realm.BooleanPrototype

	defineMethod(vmInstance, booleanProto, "toString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		v, err := thisBoolean(vmInstance, this, "toString")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(vm.BooleanValue(v).ToString()), nil
	})

	defineMethod(vmInstance, booleanProto, "valueOf", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		v, err := thisBoolean(vmInstance, this, "valueOf")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(v), nil
	})

	// Boolean(value) converts; new Boolean(value) boxes the conversion
	booleanCtor := vmInstance.NewNativeConstructor("Boolean", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.BooleanValue(argAt(args, 0).ToBoolean()), nil
	}, func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
		obj, err := vmInstance.ToObject(vm.BooleanValue(argAt(args, 0).ToBoolean()))
		return vm.ObjectValue(obj), err
	}, booleanProto)

	ctx.Realm.SetConstructor("Boolean", booleanCtor)
	return ctx.DefineGlobal("Boolean", vm.ObjectValue(booleanCtor))
}

// thisBoolean unwraps a boolean receiver or a Boolean wrapper.
func thisBoolean(vmInstance *vm.VM, this vm.Value, method string) (bool, error) {
	if this.IsBoolean() {
		return this.AsBoolean(), nil
	}
	if obj := this.AsObject(); obj != nil && obj.Class() == vm.ClassBoolean {
		if p, ok := obj.PrimitiveValue(); ok {
			return p.AsBoolean(), nil
		}
	}
	return false, vmInstance.NewTypeError("Boolean.prototype.%s requires that 'this' be a Boolean", method)
}
