package driver

import (
	goerrors "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"jscore/pkg/builtins"
	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// Options configures a Runtime.
type Options struct {
	VM vm.Options
	// Evaluator runs source function bodies. When it also implements
	// vm.FunctionCompiler it backs the Function constructor as well.
	Evaluator vm.Evaluator
}

// Runtime is an embedder session: one VM with the standard builtins
// installed. Every method serializes access to the VM, except Interrupt,
// which may be called from any goroutine.
type Runtime struct {
	mu         sync.Mutex
	vmInstance *vm.VM
}

// NewRuntime creates a Runtime with a fresh realm.
func NewRuntime(opts Options) (*Runtime, error) {
	vmInstance := vm.NewVM(opts.VM)
	if opts.Evaluator != nil {
		vmInstance.SetEvaluator(opts.Evaluator)
		if compiler, ok := opts.Evaluator.(vm.FunctionCompiler); ok {
			vmInstance.SetFunctionCompiler(compiler)
		}
	}
	if err := builtins.Install(vmInstance); err != nil {
		return nil, fmt.Errorf("driver: installing builtins: %w", err)
	}
	debugPrintf("// [Driver] runtime ready (strict=%v)\n", opts.VM.Strict)
	return &Runtime{vmInstance: vmInstance}, nil
}

// Do runs fn with exclusive access to the VM. A pending interrupt is cleared
// once fn returns, including one that arrived after fn's last call boundary,
// so it never leaks into the next Do.
func (r *Runtime) Do(fn func(machine *vm.VM) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := fn(r.vmInstance)
	if r.vmInstance.Interrupted() {
		debugPrintf("// [Driver] clearing pending interrupt (err=%v)\n", err)
		r.vmInstance.ClearInterrupt()
	}
	return err
}

// Interrupt stops the running script at its next call boundary.
func (r *Runtime) Interrupt() {
	r.vmInstance.Interrupt()
}

// ParseJSON parses text into the realm. A callable reviver is applied to the
// result the way JSON.parse does.
func (r *Runtime) ParseJSON(text string, reviver vm.Value) (vm.Value, error) {
	var result vm.Value
	err := r.Do(func(machine *vm.VM) error {
		v, err := builtins.ParseJSONText(machine, text)
		if err != nil {
			return err
		}
		if reviver.IsCallable() {
			v, err = builtins.Revive(machine, v, reviver)
		}
		result = v
		return err
	})
	return result, err
}

// StringifyJSON serializes v. ok is false when v has no JSON form, such as
// undefined or a function.
func (r *Runtime) StringifyJSON(v vm.Value, indent string) (text string, ok bool, err error) {
	err = r.Do(func(machine *vm.VM) error {
		space := vm.Undefined
		if indent != "" {
			space = vm.NewString(indent)
		}
		text, ok, err = builtins.Stringify(machine, v, vm.Undefined, space)
		return err
	})
	return text, ok, err
}

// Global reads a global binding without running getters.
func (r *Runtime) Global(name string) (vm.Value, bool) {
	var v vm.Value
	var ok bool
	r.Do(func(machine *vm.VM) error {
		v, ok = machine.GetGlobal(name)
		return nil
	})
	return v, ok
}

// Set converts a Go value and stores it as a global.
func (r *Runtime) Set(name string, value interface{}) error {
	return r.Do(func(machine *vm.VM) error {
		v, err := machine.ToValue(value)
		if err != nil {
			return fmt.Errorf("driver: setting %s: %w", name, err)
		}
		return machine.SetGlobal(name, v)
	})
}

// Get reads a global and exports it to Go. Missing globals report false.
func (r *Runtime) Get(name string) (interface{}, bool) {
	var out interface{}
	var ok bool
	r.Do(func(machine *vm.VM) error {
		var v vm.Value
		if v, ok = machine.GetGlobal(name); ok {
			out = machine.Export(v)
		}
		return nil
	})
	return out, ok
}

// Call invokes the global function name with Go arguments converted through
// ToValue. this is undefined.
func (r *Runtime) Call(name string, args ...interface{}) (vm.Value, error) {
	var result vm.Value
	err := r.Do(func(machine *vm.VM) error {
		fn, ok := machine.GetGlobal(name)
		if !ok {
			return machine.NewReferenceError("%s is not defined", name)
		}
		callArgs := make([]vm.Value, len(args))
		for i, a := range args {
			v, err := machine.ToValue(a)
			if err != nil {
				return fmt.Errorf("driver: argument %d of %s: %w", i, name, err)
			}
			callArgs[i] = v
		}
		v, err := machine.Call(fn, vm.Undefined, callArgs)
		result = v
		return err
	})
	return result, err
}

// DisplayResult prints the value to stdout or the error to stderr. It
// reports whether there was no error.
func (r *Runtime) DisplayResult(source string, value vm.Value, err error) bool {
	return r.FprintResult(os.Stdout, os.Stderr, source, value, err)
}

// FprintResult is DisplayResult with explicit destinations.
func (r *Runtime) FprintResult(out, errOut io.Writer, source string, value vm.Value, err error) bool {
	if err != nil {
		errors.FprintErrors(errOut, source, []errors.CoreError{AsCoreError(err)})
		return false
	}
	// Only print non-undefined results in REPL-like contexts
	if !value.IsUndefined() {
		fmt.Fprintln(out, value.Inspect())
	}
	return true
}

// AsCoreError converts any error returned by the runtime into the reporting
// shape. Script exceptions keep their kind; Go-side failures become Error.
func AsCoreError(err error) errors.CoreError {
	if ex, ok := vm.AsException(err); ok {
		return ex.ScriptError()
	}
	var core errors.CoreError
	if goerrors.As(err, &core) {
		return core
	}
	return errors.New(errors.KindError, "%s", err.Error()).CausedBy(err)
}
