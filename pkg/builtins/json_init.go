package builtins

import (
	"jscore/pkg/vm"
)

// JSONInitializer implements the JSON object
type JSONInitializer struct{}

func (j *JSONInitializer) Name() string {
	return "JSON"
}

func (j *JSONInitializer) Priority() int {
	return PriorityJSON
}

func (j *JSONInitializer) InitRuntime(ctx *RuntimeContext) error {
	vmInstance := ctx.VM

	jsonObj := vm.NewObjectOfClass(vm.ClassJSON, ctx.Realm.ObjectPrototype)

	defineMethod(vmInstance, jsonObj, "parse", 2, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		text, err := vmInstance.ToString(argAt(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		val, err := ParseJSONText(vmInstance, text)
		if err != nil {
			return vm.Undefined, err
		}
		if reviver := argAt(args, 1); reviver.IsCallable() {
			return Revive(vmInstance, val, reviver)
		}
		return val, nil
	})

	defineMethod(vmInstance, jsonObj, "stringify", 3, func(vmInstance *vm.VM, this vm.Value, args []vm.Value) (vm.Value, error) {
		out, ok, err := Stringify(vmInstance, argAt(args, 0), argAt(args, 1), argAt(args, 2))
		if err != nil || !ok {
			return vm.Undefined, err
		}
		return vm.NewString(out), nil
	})

	return ctx.DefineGlobal("JSON", vm.ObjectValue(jsonObj))
}
