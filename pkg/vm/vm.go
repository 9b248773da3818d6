package vm

import (
	goerrors "errors"
	"fmt"
	"sync/atomic"
)

const debugVM = false

// DefaultMaxPrototypeDepth bounds every prototype-chain walk.
const DefaultMaxPrototypeDepth = 10000

// ErrInterrupted is returned from Call and Construct once Interrupt has been
// requested.
var ErrInterrupted = goerrors.New("vm: execution interrupted")

// ErrNoEvaluator is returned when a source function is invoked on a VM that
// has no Evaluator configured.
var ErrNoEvaluator = goerrors.New("vm: no evaluator configured for source functions")

// Options configures a VM.
type Options struct {
	// Strict makes host-initiated property writes throw on rejection.
	Strict bool
	// ConstructReturnsObject lets a constructor replace the freshly allocated
	// object by returning a different object.
	ConstructReturnsObject bool
	// MaxPrototypeDepth caps prototype-chain walks. Zero means DefaultMaxPrototypeDepth.
	MaxPrototypeDepth int
}

// VM owns one realm and the services every core operation needs: error
// construction, call dispatch and the evaluator bridge. A VM is not safe for
// concurrent use; Interrupt may be called from any goroutine.
type VM struct {
	realm     *Realm
	opts      Options
	evaluator Evaluator
	compiler  FunctionCompiler

	interrupted atomic.Bool
	callDepth   int
}

// NewVM creates a VM with a fresh realm holding the bare intrinsic prototypes.
// Builtin methods are installed on top by the builtins package.
func NewVM(opts Options) *VM {
	if opts.MaxPrototypeDepth <= 0 {
		opts.MaxPrototypeDepth = DefaultMaxPrototypeDepth
	}
	vm := &VM{opts: opts}
	vm.realm = newRealm(vm)
	return vm
}

func (vm *VM) Realm() *Realm { return vm.realm }
func (vm *VM) Options() Options { return vm.opts }
func (vm *VM) Strict() bool { return vm.opts.Strict }
func (vm *VM) Evaluator() Evaluator { return vm.evaluator }

// SetEvaluator installs the collaborator that runs source function bodies.
func (vm *VM) SetEvaluator(e Evaluator) { vm.evaluator = e }

// SetFunctionCompiler installs the collaborator behind the Function constructor.
func (vm *VM) SetFunctionCompiler(c FunctionCompiler) { vm.compiler = c }

func (vm *VM) FunctionCompiler() FunctionCompiler { return vm.compiler }

// Interrupt asks the VM to stop at the next call boundary.
func (vm *VM) Interrupt() { vm.interrupted.Store(true) }

// ClearInterrupt re-arms a VM after an interrupt has been observed.
func (vm *VM) ClearInterrupt() { vm.interrupted.Store(false) }

// Interrupted reports whether an interrupt is pending.
func (vm *VM) Interrupted() bool { return vm.interrupted.Load() }

func (vm *VM) checkInterrupt() error {
	if vm.interrupted.Load() {
		return ErrInterrupted
	}
	return nil
}

// reject implements the "reject" step of the property algorithms: a TypeError
// when throw is set, otherwise a silent false.
func (vm *VM) reject(throw bool, format string, args ...interface{}) (bool, error) {
	if debugVM {
		fmt.Printf("[VM] reject (throw=%v): %s\n", throw, fmt.Sprintf(format, args...))
	}
	if throw {
		return false, vm.NewTypeError(format, args...)
	}
	return false, nil
}

// GlobalObject returns the realm's global object.
func (vm *VM) GlobalObject() *Object { return vm.realm.GlobalObject }

// GetGlobal reads a global binding.
func (vm *VM) GetGlobal(name string) (Value, bool) {
	d, ok := vm.realm.GlobalObject.GetOwnProperty(name)
	if !ok || d.IsAccessor() {
		return Undefined, ok
	}
	return d.Value, true
}

// SetGlobal creates or overwrites a global binding with the attributes of a
// script var declaration.
func (vm *VM) SetGlobal(name string, v Value) error {
	_, err := vm.DefineOwnProperty(vm.realm.GlobalObject, name, DataFragment(v, AttrWritable|AttrEnumerable|AttrConfigurable), true)
	return err
}
