package builtins

import (
	"math"

	"jscore/pkg/vm"
)

// NumberInitializer implements the Number builtin
type NumberInitializer struct{}

func (n *NumberInitializer) Name() string {
	return "Number"
}

func (n *NumberInitializer) Priority() int {
	return PriorityNumber
}

func (n *NumberInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	numberProto := ctx.Realm.NumberPrototype

	defineMethod(vmInstance, numberProto, "toString", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(vmInstance, this, "toString")
		if err != nil {
			return vm.Undefined, err
		}
		radix := 10.0
		if r := argAt(args, 0); !r.IsUndefined() {
			if radix, err = integerArg(vmInstance, args, 0); err != nil {
				return vm.Undefined, err
			}
		}
		if radix < 2 || radix > 36 {
			return vm.Undefined, vmInstance.NewRangeError("toString() radix must be between 2 and 36")
		}
		return vm.NewString(vm.FormatRadix(x, int(radix))), nil
	})

	defineMethod(vmInstance, numberProto, "toLocaleString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(vmInstance, this, "toLocaleString")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(vm.NumberValue(x).ToString()), nil
	})

	defineMethod(vmInstance, numberProto, "valueOf", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(vmInstance, this, "valueOf")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(x), nil
	})

	defineMethod(vmInstance, numberProto, "toFixed", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		digits, err := vmInstance.ToNumber(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		x, err := thisNumber(vmInstance, this, "toFixed")
		if err != nil {
			return vm.Undefined, err
		}
		s, err := vmInstance.ToFixed(x, digits)
		return vm.NewString(s), err
	})

	defineMethod(vmInstance, numberProto, "toPrecision", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(vmInstance, this, "toPrecision")
		if err != nil {
			return vm.Undefined, err
		}
		if argAt(args, 0).IsUndefined() {
			return vm.NewString(vm.NumberValue(x).ToString()), nil
		}
		p, err := vmInstance.ToNumber(args[0])
		if err != nil {
			return vm.Undefined, err
		}
		s, err := vmInstance.ToPrecision(x, p)
		return vm.NewString(s), err
	})

	defineMethod(vmInstance, numberProto, "toExponential", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := thisNumber(vmInstance, this, "toExponential")
		if err != nil {
			return vm.Undefined, err
		}
		digitsArg := argAt(args, 0)
		digits, err := vmInstance.ToNumber(digitsArg)
		if err != nil {
			return vm.Undefined, err
		}
		s, err := vmInstance.ToExponential(x, digits, !digitsArg.IsUndefined())
		return vm.NewString(s), err
	})

	// Number(value) converts; new Number(value) boxes the conversion
	toNumber := func(vmInstance *vm.VM, args []vm.Value) (float64, error) {
		if len(args) == 0 {
			return 0, nil
		}
		return vmInstance.ToNumber(args[0])
	}
	numberCtor := vmInstance.NewNativeConstructor("Number", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		x, err := toNumber(vmInstance, args)
		return vm.NumberValue(x), err
	}, func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
		x, err := toNumber(vmInstance, args)
		if err != nil {
			return vm.Undefined, err
		}
		obj, err := vmInstance.ToObject(vm.NumberValue(x))
		return vm.ObjectValue(obj), err
	}, numberProto)

	defineConstant(numberCtor, "MAX_VALUE", vm.NumberValue(math.MaxFloat64))
	defineConstant(numberCtor, "MIN_VALUE", vm.NumberValue(math.SmallestNonzeroFloat64))
	defineConstant(numberCtor, "NaN", vm.NaN)
	defineConstant(numberCtor, "POSITIVE_INFINITY", vm.Infinity)
	defineConstant(numberCtor, "NEGATIVE_INFINITY", vm.NumberValue(math.Inf(-1)))

	// The static predicates never convert their argument
	defineMethod(vmInstance, numberCtor, "isNaN", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		v := argAt(args, 0)
		return vm.BooleanValue(v.IsNumber() && math.IsNaN(v.AsFloat())), nil
	})
	defineMethod(vmInstance, numberCtor, "isFinite", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		v := argAt(args, 0)
		return vm.BooleanValue(v.IsNumber() && !math.IsNaN(v.AsFloat()) && !math.IsInf(v.AsFloat(), 0)), nil
	})

	ctx.Realm.SetConstructor("Number", numberCtor)
	return ctx.DefineGlobal("Number", vm.ObjectValue(numberCtor))
}

// thisNumber unwraps a number receiver or a Number wrapper.
func thisNumber(vmInstance *vm.VM, this vm.Value, method string) (float64, error) {
	if this.IsNumber() {
		return this.AsFloat(), nil
	}
	if obj := this.AsObject(); obj != nil && obj.Class() == vm.ClassNumber {
		if p, ok := obj.PrimitiveValue(); ok {
			return p.AsFloat(), nil
		}
	}
	return 0, vmInstance.NewTypeError("Number.prototype.%s requires that 'this' be a Number", method)
}
