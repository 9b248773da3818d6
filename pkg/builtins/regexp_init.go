package builtins

import (
	"jscore/pkg/vm"
)

// RegExpInitializer implements the RegExp builtin
type RegExpInitializer struct{}

func (r *RegExpInitializer) Name() string {
	return "RegExp"
}

func (r *RegExpInitializer) Priority() int {
	return PriorityRegExp
}

func (r *RegExpInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	regexpProto := ctx.Realm.RegExpPrototype

	defineMethod(vmInstance, regexpProto, "exec", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisRegExp(vmInstance, this, "exec")
		if err != nil {
			return vm.Undefined, err
		}
		input, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vmInstance.RegExpExec(obj, input)
	})

	defineMethod(vmInstance, regexpProto, "test", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisRegExp(vmInstance, this, "test")
		if err != nil {
			return vm.Undefined, err
		}
		input, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		result, err := vmInstance.RegExpExec(obj, input)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(!result.IsNull()), nil
	})

	defineMethod(vmInstance, regexpProto, "toString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisRegExp(vmInstance, this, "toString")
		if err != nil {
			return vm.Undefined, err
		}
		re, _ := vm.RegExpData(obj)
		return vm.NewString(vm.RegExpString(re)), nil
	})

	// RegExp(re) returns re itself; new RegExp(re) copies it
	compile := func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
		pattern, flags := argAt(args, 0), argAt(args, 1)
		if re, ok := vm.RegExpData(pattern.AsObject()); ok {
			if !flags.IsUndefined() {
				return vm.Undefined, vmInstance.NewTypeError("Cannot supply flags when constructing one RegExp from another")
			}
			obj, err := vmInstance.NewRegExp(re.Source(), re.Flags())
			return vm.ObjectValue(obj), err
		}
		source, flagString := "", ""
		var err error
		if !pattern.IsUndefined() {
			if source, err = vmInstance.ToString(pattern); err != nil {
				return vm.Undefined, err
			}
		}
		if !flags.IsUndefined() {
			if flagString, err = vmInstance.ToString(flags); err != nil {
				return vm.Undefined, err
			}
		}
		obj, err := vmInstance.NewRegExp(source, flagString)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj), nil
	}
	regexpCtor := vmInstance.NewNativeConstructor("RegExp", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		if isRegExp(argAt(args, 0)) && argAt(args, 1).IsUndefined() {
			return args[0], nil
		}
		return compile(vmInstance, args)
	}, compile, regexpProto)

	ctx.Realm.SetConstructor("RegExp", regexpCtor)
	return ctx.DefineGlobal("RegExp", vm.ObjectValue(regexpCtor))
}

func thisRegExp(vmInstance *vm.VM, this vm.Value, method string) (*vm.Object, error) {
	obj := this.AsObject()
	if !isRegExp(this) {
		return nil, vmInstance.NewTypeError("RegExp.prototype.%s called on incompatible receiver %s", method, this.Inspect())
	}
	return obj, nil
}
