package builtins

import "jscore/pkg/vm"

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Array", "String", "JSON")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// InitRuntime installs the module's constructors and methods into the realm
	InitRuntime(ctx *RuntimeContext) error
}

// RuntimeContext provides everything needed for runtime initialization
type RuntimeContext struct {
	// The VM instance
	VM *vm.VM

	// The realm whose bare prototypes the initializers fill in
	Realm *vm.Realm

	// Define a global value (writable, configurable, not enumerable)
	DefineGlobal func(name string, value vm.Value) error
}

// Priority constants for initialization order
const (
	PriorityObject   = 0   // Object must be first (base prototype)
	PriorityFunction = 1   // Function second (inherits from Object)
	PriorityArray    = 3   // Array third (inherits from Object)
	PriorityError    = 5   // Error family, used by everything that throws
	PriorityString   = 10  // String primitives
	PriorityNumber   = 11  // Number primitives
	PriorityBoolean  = 12  // Boolean primitives
	PriorityRegExp   = 13  // RegExp constructor
	PriorityJSON     = 101 // JSON object
	PriorityGlobals  = 200 // Global constants and functions
)
