package builtins

import (
	"strings"

	"jscore/pkg/vm"
)

// FunctionInitializer implements the Function builtin
type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string {
	return "Function"
}

func (f *FunctionInitializer) Priority() int {
	return PriorityFunction
}

func (f *FunctionInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM
	functionProto := ctx.Realm.FunctionPrototype

	defineMethod(vmInstance, functionProto, "call", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsCallable() {
			return vm.Undefined, vmInstance.NewTypeError("Function.prototype.call called on non-function %s", this.Inspect())
		}
		return vmInstance.Call(this, argAt(args, 0), restArgs(args, 1))
	})

	defineMethod(vmInstance, functionProto, "apply", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		if !this.IsCallable() {
			return vm.Undefined, vmInstance.NewTypeError("Function.prototype.apply called on non-function %s", this.Inspect())
		}
		callArgs, err := listFromArrayLike(vmInstance, argAt(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		return vmInstance.Call(this, argAt(args, 0), callArgs)
	})

	defineMethod(vmInstance, functionProto, "bind", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		bound, err := vmInstance.Bind(this, argAt(args, 0), restArgs(args, 1))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(bound), nil
	})

	defineMethod(vmInstance, functionProto, "toString", 0, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		fn := this.AsObject()
		if !fn.IsCallable() {
			return vm.Undefined, vmInstance.NewTypeError("Function.prototype.toString requires that 'this' be a Function")
		}
		return vm.NewString(functionSource(vmInstance, fn)), nil
	})

	// Function(p1, ..., body) compiles through the evaluator's FunctionCompiler
	construct := func(vmInstance *vm.VM, args []vm.Value) (vm.Value, error) {
		compiler := vmInstance.FunctionCompiler()
		if compiler == nil {
			return vm.Undefined, vmInstance.NewTypeError("Function constructor is not supported: no function compiler is configured")
		}
		parts, err := stringArgs(vmInstance, args)
		if err != nil {
			return vm.Undefined, err
		}
		body := ""
		if len(parts) > 0 {
			body = parts[len(parts)-1]
			parts = parts[:len(parts)-1]
		}
		var params []string
		for _, p := range parts {
			for _, name := range strings.Split(p, ",") {
				if name = strings.TrimFunc(name, vm.IsWhitespace); name != "" {
					params = append(params, name)
				}
			}
		}
		compiled, err := compiler.CompileFunction(vmInstance, params, body)
		if err != nil {
			return vm.Undefined, vmInstance.ToException(err)
		}
		return vm.ObjectValue(vmInstance.NewSourceFunction(compiled)), nil
	}
	functionCtor := vmInstance.NewNativeConstructor("Function", 1, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		return construct(vmInstance, args)
	}, construct, functionProto)

	ctx.Realm.SetConstructor("Function", functionCtor)
	return ctx.DefineGlobal("Function", vm.ObjectValue(functionCtor))
}

// listFromArrayLike reads the elements of an apply-style argument array.
func listFromArrayLike(vmInstance *vm.VM, v vm.Value) ([]vm.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	obj := v.AsObject()
	if obj == nil {
		return nil, vmInstance.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := vmInstance.LengthOf(obj)
	if err != nil {
		return nil, err
	}
	out := make([]vm.Value, n)
	for i := range out {
		if out[i], err = vmInstance.Get(obj, vm.IndexKey(uint32(i))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func functionSource(vmInstance *vm.VM, fn *vm.Object) string {
	name := ""
	if nv, err := vmInstance.Get(fn, "name"); err == nil && nv.IsString() {
		name = nv.AsString()
	}
	if src, ok := fn.FunctionKind().(*vm.SourceFunction); ok {
		return "function " + name + "(" + strings.Join(src.Params, ", ") + ") { [source code] }"
	}
	return "function " + name + "() { [native code] }"
}
