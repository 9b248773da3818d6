package builtins

import (
	"strings"

	"jscore/pkg/vm"
)

// ArrayInitializer implements the Array builtin
type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray
}

func (a *ArrayInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	arrayProto := ctx.Realm.ArrayPrototype

	defineMethod(vmInstance, arrayProto, "push", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisObject(vmInstance, this, "Array.prototype.push")
		if err != nil {
			return vm.Undefined, err
		}
		n, err := vmInstance.LengthOf(obj)
		if err != nil {
			return vm.Undefined, err
		}
		length := float64(n)
		for _, arg := range args {
			if err := vmInstance.Put(obj, vm.NumberValue(length).ToString(), arg, true); err != nil {
				return vm.Undefined, err
			}
			length++
		}
		if err := vmInstance.Put(obj, "length", vm.NumberValue(length), true); err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(length), nil
	})

	defineMethod(vmInstance, arrayProto, "pop", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisObject(vmInstance, this, "Array.prototype.pop")
		if err != nil {
			return vm.Undefined, err
		}
		n, err := vmInstance.LengthOf(obj)
		if err != nil {
			return vm.Undefined, err
		}
		if n == 0 {
			return vm.Undefined, vmInstance.Put(obj, "length", vm.IntegerValue(0), true)
		}
		key := vm.IndexKey(n - 1)
		element, err := vmInstance.Get(obj, key)
		if err != nil {
			return vm.Undefined, err
		}
		if _, err := vmInstance.Delete(obj, key, true); err != nil {
			return vm.Undefined, err
		}
		return element, vmInstance.Put(obj, "length", vm.IntegerValue(int64(n-1)), true)
	})

	join := func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisObject(vmInstance, this, "Array.prototype.join")
		if err != nil {
			return vm.Undefined, err
		}
		n, err := vmInstance.LengthOf(obj)
		if err != nil {
			return vm.Undefined, err
		}
		sep := ","
		if s := argAt(args, 0); !s.IsUndefined() {
			if sep, err = vmInstance.ToString(s); err != nil {
				return vm.Undefined, err
			}
		}
		var b strings.Builder
		for i := uint32(0); i < n; i++ {
			if i > 0 {
				b.WriteString(sep)
			}
			element, err := vmInstance.Get(obj, vm.IndexKey(i))
			if err != nil {
				return vm.Undefined, err
			}
			if element.IsNullish() {
				continue
			}
			s, err := vmInstance.ToString(element)
			if err != nil {
				return vm.Undefined, err
			}
			b.WriteString(s)
		}
		return vm.NewString(b.String()), nil
	}
	defineMethod(vmInstance, arrayProto, "join", 1, join)

	defineMethod(vmInstance, arrayProto, "toString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisObject(vmInstance, this, "Array.prototype.toString")
		if err != nil {
			return vm.Undefined, err
		}
		fn, err := vmInstance.Get(obj, "join")
		if err != nil {
			return vm.Undefined, err
		}
		if !fn.IsCallable() {
			return vm.NewString(classString(vmInstance, vm.ObjectValue(obj))), nil
		}
		return vmInstance.Call(fn, vm.ObjectValue(obj), nil)
	})

	defineMethod(vmInstance, arrayProto, "slice", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisObject(vmInstance, this, "Array.prototype.slice")
		if err != nil {
			return vm.Undefined, err
		}
		n, err := vmInstance.LengthOf(obj)
		if err != nil {
			return vm.Undefined, err
		}
		length := int(n)
		start, err := integerArg(vmInstance, args, 0)
		if err != nil {
			return vm.Undefined, err
		}
		end := float64(length)
		if e := argAt(args, 1); !e.IsUndefined() {
			if end, err = integerArg(vmInstance, args, 1); err != nil {
				return vm.Undefined, err
			}
		}
		from, to := relativeIndex(start, length), relativeIndex(end, length)

		result := vmInstance.NewArray()
		count := uint32(0)
		for k := from; k < to; k++ {
			key := vm.IndexKey(uint32(k))
			has, err := vmInstance.HasProperty(obj, key)
			if err != nil {
				return vm.Undefined, err
			}
			if has {
				element, err := vmInstance.Get(obj, key)
				if err != nil {
					return vm.Undefined, err
				}
				if _, err := vmInstance.DefineOwnProperty(result, vm.IndexKey(count), vm.DataFragment(element, vm.AttrAll), true); err != nil {
					return vm.Undefined, err
				}
			}
			count++
		}
		return vm.ObjectValue(result), vmInstance.Put(result, "length", vm.IntegerValue(int64(count)), true)
	})

	defineMethod(vmInstance, arrayProto, "indexOf", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, err := thisObject(vmInstance, this, "Array.prototype.indexOf")
		if err != nil {
			return vm.Undefined, err
		}
		n, err := vmInstance.LengthOf(obj)
		if err != nil {
			return vm.Undefined, err
		}
		length := int(n)
		if length == 0 {
			return vm.IntegerValue(-1), nil
		}
		from, err := integerArg(vmInstance, args, 1)
		if err != nil {
			return vm.Undefined, err
		}
		if from >= float64(length) {
			return vm.IntegerValue(-1), nil
		}
		search := argAt(args, 0)
		for k := relativeIndex(from, length); k < length; k++ {
			key := vm.IndexKey(uint32(k))
			has, err := vmInstance.HasProperty(obj, key)
			if err != nil {
				return vm.Undefined, err
			}
			if !has {
				continue
			}
			element, err := vmInstance.Get(obj, key)
			if err != nil {
				return vm.Undefined, err
			}
			if element.StrictlyEquals(search) {
				return vm.IntegerValue(int64(k)), nil
			}
		}
		return vm.IntegerValue(-1), nil
	})

	defineMethod(vmInstance, arrayProto, "forEach", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, n, err := arrayLike(vmInstance, this, "Array.prototype.forEach")
		if err != nil {
			return vm.Undefined, err
		}
		return vm.Undefined, eachElement(vmInstance, obj, n, args, func(k uint32, result vm.Value) error {
			return nil
		})
	})

	defineMethod(vmInstance, arrayProto, "map", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		obj, n, err := arrayLike(vmInstance, this, "Array.prototype.map")
		if err != nil {
			return vm.Undefined, err
		}
		out := vmInstance.NewArrayWithLength(n)
		err = eachElement(vmInstance, obj, n, args, func(k uint32, result vm.Value) error {
			_, err := vmInstance.DefineOwnProperty(out, vm.IndexKey(k), vm.DataFragment(result, vm.AttrAll), true)
			return err
		})
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(out), nil
	})

	// Array(len) and Array(a, b, ...)
	construct := func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			n := args[0].AsFloat()
			if float64(vm.ToUint32(n)) != n {
				return vm.Undefined, vmInstance.NewRangeError("Invalid array length")
			}
			return vm.ObjectValue(vmInstance.NewArrayWithLength(vm.ToUint32(n))), nil
		}
		return vm.ObjectValue(vmInstance.NewArray(args...)), nil
	}
	arrayCtor := vmInstance.NewNativeConstructor("Array", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		return construct(vmInstance, args)
	}, construct, arrayProto)

	defineMethod(vmInstance, arrayCtor, "isArray", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.BooleanValue(vm.IsArray(argAt(args, 0))), nil
	})

	ctx.Realm.SetConstructor("Array", arrayCtor)
	return ctx.DefineGlobal("Array", vm.ObjectValue(arrayCtor))
}

// arrayLike applies ToObject to the receiver and reads its length.
func arrayLike(vmInstance *vm.VM, this vm.Value, method string) (*vm.Object, uint32, error) {
	obj, err := thisObject(vmInstance, this, method)
	if err != nil {
		return nil, 0, err
	}
	n, err := vmInstance.LengthOf(obj)
	return obj, n, err
}

// eachElement drives forEach-style iteration: the callback runs for every
// present index below n and visit receives its result.
func eachElement(vmInstance *vm.VM, obj *vm.Object, n uint32, args []vm.Value, visit func(k uint32, result vm.Value) error) error {
	callback := argAt(args, 0)
	if !callback.IsCallable() {
		return vmInstance.NewTypeError("%s is not a function", callback.Inspect())
	}
	thisArg := argAt(args, 1)
	for k := uint32(0); k < n; k++ {
		key := vm.IndexKey(k)
		has, err := vmInstance.HasProperty(obj, key)
		if err != nil {
			return err
		}
		if !has {
			continue
		}
		element, err := vmInstance.Get(obj, key)
		if err != nil {
			return err
		}
		result, err := vmInstance.Call(callback, thisArg, []vm.Value{element, vm.IntegerValue(int64(k)), vm.ObjectValue(obj)})
		if err != nil {
			return err
		}
		if err := visit(k, result); err != nil {
			return err
		}
	}
	return nil
}
